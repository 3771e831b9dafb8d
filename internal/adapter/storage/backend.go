// Package storage selects the record store configured for the engine.
package storage

import (
	"context"
	"fmt"

	"crosspay/config"
	"crosspay/internal/adapter/storage/kv"
	"crosspay/internal/adapter/storage/postgres"
	"crosspay/internal/core/ports"

	"github.com/rs/zerolog"
)

// Ledger is the custody ledger plus the operator funding entry point.
type Ledger interface {
	ports.AssetCustody
	Credit(ctx context.Context, identity, asset string, amount uint64) error
}

// Backend bundles the repositories of one record store.
type Backend struct {
	Transactor  ports.DBTransactor
	Profiles    ports.ProfileRepository
	Transfers   ports.TransferRepository
	Withdrawals ports.WithdrawalRepository
	Providers   ports.ProviderRepository
	Idempotency ports.IdempotencyRepository
	Custody     Ledger
	Audit       ports.AuditRepository
	Health      ports.HealthChecker

	close func()
}

// Close releases the underlying connection pool or database handle.
func (b *Backend) Close() {
	if b.close != nil {
		b.close()
	}
}

// Open connects the store named by cfg.Store.Driver. The PostgreSQL schema
// is applied on open.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Backend, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Database, log)
		if err != nil {
			return nil, err
		}
		if err := postgres.ApplySchema(ctx, pool, log); err != nil {
			pool.Close()
			return nil, err
		}
		return &Backend{
			Transactor:  postgres.NewTransactor(pool),
			Profiles:    postgres.NewProfileRepo(pool),
			Transfers:   postgres.NewTransferRepo(pool),
			Withdrawals: postgres.NewWithdrawalRepo(pool),
			Providers:   postgres.NewProviderRepo(pool),
			Idempotency: postgres.NewIdempotencyRepo(),
			Custody:     postgres.NewCustodyLedger(pool),
			Audit:       postgres.NewAuditRepo(pool),
			Health:      postgres.NewHealthCheck(pool),
			close:       pool.Close,
		}, nil

	case config.StoreDriverLevelDB:
		store, err := kv.Open(cfg.Store.Path, log)
		if err != nil {
			return nil, err
		}
		return &Backend{
			Transactor:  store,
			Profiles:    kv.NewProfileRepo(store),
			Transfers:   kv.NewTransferRepo(store),
			Withdrawals: kv.NewWithdrawalRepo(store),
			Providers:   kv.NewProviderRepo(store),
			Idempotency: kv.NewIdempotencyRepo(store),
			Custody:     kv.NewCustodyLedger(store),
			Audit:       kv.NewAuditRepo(store),
			Health:      kv.NewHealthCheck(store),
			close: func() {
				if err := store.Close(); err != nil {
					log.Error().Err(err).Msg("closing leveldb store")
				}
			},
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}
