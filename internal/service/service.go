package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"crosspay/internal/core/domain"
	"crosspay/internal/core/ports"
	"crosspay/pkg/apperror"

	"github.com/rs/zerolog"
)

const (
	// DefaultIdempotencyTTL is how long a cached create response is replayed.
	DefaultIdempotencyTTL = 24 * time.Hour
	// claimTTL bounds how long a crashed request can hold an idempotency key.
	claimTTL = 30 * time.Second
)

// storeError translates record store failures into API errors. AppErrors
// pass through unchanged.
func storeError(op string, err error) error {
	var appErr *apperror.AppError
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, ports.ErrStaleRecord):
		return apperror.ErrConcurrentUpdate(fmt.Errorf("%s: %w", op, err))
	case errors.Is(err, ports.ErrInsufficientCustody):
		return apperror.ErrInsufficientBalance()
	default:
		return apperror.InternalError(fmt.Errorf("%s: %w", op, err))
	}
}

// idempotency replays create responses. The cache is the fast path and is
// best-effort: a Redis failure degrades to "no cache" and is only logged. The
// durable log, written in the create transaction, is authoritative.
type idempotency struct {
	cache ports.IdempotencyCache      // nil disables cached replay
	logs  ports.IdempotencyRepository // nil disables the durable log
	ttl   time.Duration
	log   zerolog.Logger
}

func newIdempotency(cache ports.IdempotencyCache, logs ports.IdempotencyRepository, ttl time.Duration, log zerolog.Logger) idempotency {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	return idempotency{cache: cache, logs: logs, ttl: ttl, log: log}
}

func (i idempotency) enabled(key string) bool {
	return i.cache != nil && key != ""
}

// begin returns the cached response for key, or claims key for this request.
// The returned release func must be called once the request is done.
func (i idempotency) begin(ctx context.Context, key string) ([]byte, func(), error) {
	noop := func() {}
	if !i.enabled(key) {
		return nil, noop, nil
	}

	cached, err := i.cache.Get(ctx, key)
	if err != nil {
		i.log.Warn().Err(err).Str("key", key).Msg("redis idempotency check failed, continuing without cache")
		return nil, noop, nil
	}
	if cached != nil {
		return cached, noop, nil
	}

	claimed, err := i.cache.Claim(ctx, key, claimTTL)
	if err != nil {
		i.log.Warn().Err(err).Str("key", key).Msg("redis idempotency claim failed, continuing without claim")
		return nil, noop, nil
	}
	if !claimed {
		return nil, noop, apperror.ErrRequestInProgress()
	}

	release := func() {
		if err := i.cache.Release(context.WithoutCancel(ctx), key); err != nil {
			i.log.Warn().Err(err).Str("key", key).Msg("failed to release idempotency claim")
		}
	}

	// The previous holder may have stored its response and released the key
	// between Get and Claim.
	cached, err = i.cache.Get(ctx, key)
	if err != nil {
		i.log.Warn().Err(err).Str("key", key).Msg("redis idempotency recheck failed, relying on durable log")
		return nil, release, nil
	}
	if cached != nil {
		release()
		return cached, noop, nil
	}
	return nil, release, nil
}

// lookup returns the record address logged for key, or nil. It reads
// through tx so a key committed by an earlier transaction is always seen.
func (i idempotency) lookup(ctx context.Context, tx ports.Tx, key string) (*domain.Address, error) {
	if i.logs == nil || key == "" {
		return nil, nil
	}
	entry, err := i.logs.Get(ctx, tx, key)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get idempotency log: %w", err))
	}
	if entry == nil {
		return nil, nil
	}
	return &entry.RecordAddress, nil
}

// record logs key against addr inside tx. A concurrent transaction that
// logged the same key first wins; this one fails with RequestInProgress.
func (i idempotency) record(ctx context.Context, tx ports.Tx, key string, addr domain.Address, at time.Time) error {
	if i.logs == nil || key == "" {
		return nil
	}
	err := i.logs.Create(ctx, tx, &domain.IdempotencyLog{Key: key, RecordAddress: addr, CreatedAt: at})
	if errors.Is(err, ports.ErrAddressInUse) {
		return apperror.ErrRequestInProgress()
	}
	if err != nil {
		return storeError("create idempotency log", err)
	}
	return nil
}

// remember caches the committed response under key.
func (i idempotency) remember(ctx context.Context, key string, resp any) {
	if !i.enabled(key) {
		return
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		i.log.Warn().Err(err).Str("key", key).Msg("failed to encode idempotent response")
		return
	}
	if err := i.cache.Set(ctx, key, raw, i.ttl); err != nil {
		i.log.Warn().Err(err).Str("key", key).Msg("failed to cache idempotency in redis")
	}
}

func decodeCached[T any](raw []byte) (*T, error) {
	v := new(T)
	if err := json.Unmarshal(raw, v); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("unmarshal cached response: %w", err))
	}
	return v, nil
}
