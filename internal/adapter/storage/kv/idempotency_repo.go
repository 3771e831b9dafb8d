package kv

import (
	"context"

	"crosspay/internal/core/domain"
	"crosspay/internal/core/ports"
)

// IdempotencyRepo implements ports.IdempotencyRepository. Logs are keyed by
// the scoped idempotency key.
type IdempotencyRepo struct {
	store *Store
}

// NewIdempotencyRepo creates a new IdempotencyRepo.
func NewIdempotencyRepo(store *Store) *IdempotencyRepo {
	return &IdempotencyRepo{store: store}
}

func (r *IdempotencyRepo) Create(_ context.Context, tx ports.Tx, log *domain.IdempotencyLog) error {
	t, err := asKVTx(tx)
	if err != nil {
		return err
	}
	return t.insert(poolIdempotency.key([]byte(log.Key)), log)
}

func (r *IdempotencyRepo) Get(_ context.Context, tx ports.Tx, key string) (*domain.IdempotencyLog, error) {
	t, err := asKVTx(tx)
	if err != nil {
		return nil, err
	}
	return getRecord[domain.IdempotencyLog](t.tr, poolIdempotency.key([]byte(key)))
}
