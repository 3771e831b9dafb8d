package localcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitStore_Allow(t *testing.T) {
	store := NewRateLimitStore()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		result, err := store.Allow(ctx, "id:alice:transfers", 5, time.Minute)
		require.NoError(t, err)
		assert.True(t, result.Allowed, "request %d should be allowed", i+1)
		assert.Equal(t, int64(5), result.Limit)
		assert.Equal(t, int64(4-i), result.Remaining)
		assert.Greater(t, result.ResetAt, time.Now().Unix())
	}

	result, err := store.Allow(ctx, "id:alice:transfers", 5, time.Minute)
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, int64(0), result.Remaining)
}

func TestRateLimitStore_KeysAreIndependent(t *testing.T) {
	store := NewRateLimitStore()
	ctx := context.Background()

	result, err := store.Allow(ctx, "id:alice:registry", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, result.Allowed)

	result, err = store.Allow(ctx, "id:alice:registry", 1, time.Minute)
	require.NoError(t, err)
	assert.False(t, result.Allowed)

	result, err = store.Allow(ctx, "id:bob:registry", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestRateLimitStore_Refills(t *testing.T) {
	store := NewRateLimitStore()
	ctx := context.Background()

	result, err := store.Allow(ctx, "k", 2, 40*time.Millisecond)
	require.NoError(t, err)
	require.True(t, result.Allowed)
	result, err = store.Allow(ctx, "k", 2, 40*time.Millisecond)
	require.NoError(t, err)
	require.True(t, result.Allowed)

	result, err = store.Allow(ctx, "k", 2, 40*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, result.Allowed)

	time.Sleep(60 * time.Millisecond)

	result, err = store.Allow(ctx, "k", 2, 40*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}
