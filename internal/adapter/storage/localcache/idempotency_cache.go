// Package localcache holds the in-process idempotency cache and rate
// limiter used when Redis is disabled. State does not survive a restart and
// is not shared between instances.
package localcache

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	defaultExpiration = 24 * time.Hour
	cleanupInterval   = 10 * time.Minute
	claimPrefix       = "claim:"
)

// IdempotencyCache implements ports.IdempotencyCache on go-cache.
type IdempotencyCache struct {
	cache *cache.Cache
}

// NewIdempotencyCache creates an empty in-process cache.
func NewIdempotencyCache() *IdempotencyCache {
	return &IdempotencyCache{cache: cache.New(defaultExpiration, cleanupInterval)}
}

// Get returns the cached response for key, or nil when absent.
func (c *IdempotencyCache) Get(_ context.Context, key string) ([]byte, error) {
	obj, found := c.cache.Get(key)
	if !found {
		return nil, nil
	}
	value, _ := obj.([]byte)
	return value, nil
}

// Set stores value under key for ttl.
func (c *IdempotencyCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.cache.Set(key, value, ttl)
	return nil
}

// Claim marks key as in flight. Add fails when the claim already exists,
// which makes the check and the write a single step.
func (c *IdempotencyCache) Claim(_ context.Context, key string, ttl time.Duration) (bool, error) {
	if err := c.cache.Add(claimPrefix+key, struct{}{}, ttl); err != nil {
		return false, nil
	}
	return true, nil
}

// Release drops the in-flight claim on key.
func (c *IdempotencyCache) Release(_ context.Context, key string) error {
	c.cache.Delete(claimPrefix + key)
	return nil
}
