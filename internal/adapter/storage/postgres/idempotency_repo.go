package postgres

import (
	"context"
	"errors"
	"fmt"

	"crosspay/internal/core/domain"
	"crosspay/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

// IdempotencyRepo implements ports.IdempotencyRepository.
type IdempotencyRepo struct{}

// NewIdempotencyRepo creates a new IdempotencyRepo.
func NewIdempotencyRepo() *IdempotencyRepo {
	return &IdempotencyRepo{}
}

// Create inserts an idempotency log within a database transaction. A
// concurrent insert of the same key blocks on the primary key until the
// other transaction ends, then fails with ports.ErrAddressInUse.
func (r *IdempotencyRepo) Create(ctx context.Context, tx ports.Tx, log *domain.IdempotencyLog) error {
	ptx, err := asPgxTx(tx)
	if err != nil {
		return err
	}

	query := `INSERT INTO idempotency_logs (key, record_address, created_at) VALUES ($1, $2, $3)`

	_, err = ptx.Exec(ctx, query, log.Key, log.RecordAddress.Bytes(), log.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ports.ErrAddressInUse
		}
		return fmt.Errorf("insert idempotency log: %w", err)
	}
	return nil
}

// Get fetches an idempotency log by key.
func (r *IdempotencyRepo) Get(ctx context.Context, tx ports.Tx, key string) (*domain.IdempotencyLog, error) {
	ptx, err := asPgxTx(tx)
	if err != nil {
		return nil, err
	}

	query := `SELECT key, record_address, created_at FROM idempotency_logs WHERE key = $1`

	var (
		log  domain.IdempotencyLog
		addr []byte
	)
	err = ptx.QueryRow(ctx, query, key).Scan(&log.Key, &addr, &log.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get idempotency log: %w", err)
	}
	if log.RecordAddress, err = domain.AddressFromBytes(addr); err != nil {
		return nil, fmt.Errorf("decode idempotency log address: %w", err)
	}
	return &log, nil
}
