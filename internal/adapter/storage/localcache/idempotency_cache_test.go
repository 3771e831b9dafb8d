package localcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdempotencyCache_GetMissing(t *testing.T) {
	c := NewIdempotencyCache()

	val, err := c.Get(context.Background(), "transfer:alice:order-1")
	require.NoError(t, err)
	assert.Nil(t, val)
}

func TestIdempotencyCache_SetThenGet(t *testing.T) {
	c := NewIdempotencyCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "transfer:alice:order-1", []byte(`{"amount":10}`), time.Hour))

	val, err := c.Get(ctx, "transfer:alice:order-1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"amount":10}`), val)
}

func TestIdempotencyCache_Expiry(t *testing.T) {
	c := NewIdempotencyCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 20*time.Millisecond))
	time.Sleep(40 * time.Millisecond)

	val, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, val)
}

func TestIdempotencyCache_ClaimIsExclusive(t *testing.T) {
	c := NewIdempotencyCache()
	ctx := context.Background()

	ok, err := c.Claim(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Claim(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Release(ctx, "k"))

	ok, err = c.Claim(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIdempotencyCache_ClaimDoesNotShadowResponse(t *testing.T) {
	c := NewIdempotencyCache()
	ctx := context.Background()

	ok, err := c.Claim(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	val, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, val)
}
