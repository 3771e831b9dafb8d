package localcache

import (
	"context"
	"sync"
	"time"

	"crosspay/internal/core/ports"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// RateLimitStore implements ports.RateLimitStore with one token bucket per
// key. A bucket refills limit tokens per window; idle buckets are full after
// one window, so they are evicted then.
type RateLimitStore struct {
	mu       sync.Mutex
	limiters *cache.Cache
}

// NewRateLimitStore creates an empty in-process limiter set.
func NewRateLimitStore() *RateLimitStore {
	return &RateLimitStore{limiters: cache.New(time.Hour, cleanupInterval)}
}

// Allow takes one token from key's bucket.
func (s *RateLimitStore) Allow(_ context.Context, key string, limit int64, window time.Duration) (*ports.RateLimitResult, error) {
	if limit < 1 {
		limit = 1
	}
	if window <= 0 {
		window = time.Second
	}
	interval := window / time.Duration(limit)
	if interval <= 0 {
		interval = time.Nanosecond
	}

	lim := s.limiter(key, limit, interval, window)
	now := time.Now()
	allowed := lim.AllowN(now, 1)

	remaining := int64(lim.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}

	return &ports.RateLimitResult{
		Allowed:   allowed,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   now.Add(interval).Unix() + 1,
	}, nil
}

func (s *RateLimitStore) limiter(key string, limit int64, interval, window time.Duration) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	var lim *rate.Limiter
	if obj, found := s.limiters.Get(key); found {
		lim = obj.(*rate.Limiter)
	} else {
		lim = rate.NewLimiter(rate.Every(interval), int(limit))
	}
	s.limiters.Set(key, lim, window)
	return lim
}
