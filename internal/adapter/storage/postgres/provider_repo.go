package postgres

import (
	"context"
	"errors"
	"fmt"

	"crosspay/internal/core/domain"
	"crosspay/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

const providerColumns = `address, authority, location, exchange_rate, available_liquidity, reserved_liquidity,
		total_volume, completed_transactions, trust_score, is_active, created_at, version`

// ProviderRepo implements ports.ProviderRepository.
type ProviderRepo struct {
	pool Pool
}

// NewProviderRepo creates a new ProviderRepo.
func NewProviderRepo(pool Pool) *ProviderRepo {
	return &ProviderRepo{pool: pool}
}

// Create inserts a new provider within a database transaction.
func (r *ProviderRepo) Create(ctx context.Context, tx ports.Tx, p *domain.LiquidityProvider) error {
	ptx, err := asPgxTx(tx)
	if err != nil {
		return err
	}

	query := `INSERT INTO liquidity_providers (` + providerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err = ptx.Exec(ctx, query,
		p.Address.Bytes(), p.Authority, p.Location, numeric(p.ExchangeRate),
		numeric(p.AvailableLiquidity), numeric(p.ReservedLiquidity),
		numeric(p.TotalVolume), numeric(p.CompletedTransactions),
		int32(p.TrustScore), p.IsActive, p.CreatedAt, p.Version,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ports.ErrAddressInUse
		}
		return fmt.Errorf("insert provider: %w", err)
	}
	return nil
}

// GetByAddress fetches a provider (non-locking read).
func (r *ProviderRepo) GetByAddress(ctx context.Context, addr domain.Address) (*domain.LiquidityProvider, error) {
	query := `SELECT ` + providerColumns + ` FROM liquidity_providers WHERE address = $1`
	return scanProvider(r.pool.QueryRow(ctx, query, addr.Bytes()))
}

// GetByAddressForUpdate fetches a provider with pessimistic locking.
// This MUST be called within a transaction.
func (r *ProviderRepo) GetByAddressForUpdate(ctx context.Context, tx ports.Tx, addr domain.Address) (*domain.LiquidityProvider, error) {
	ptx, err := asPgxTx(tx)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + providerColumns + ` FROM liquidity_providers WHERE address = $1 FOR UPDATE`
	return scanProvider(ptx.QueryRow(ctx, query, addr.Bytes()))
}

// Update writes liquidity, counters and availability if the stored version
// still matches.
func (r *ProviderRepo) Update(ctx context.Context, tx ports.Tx, p *domain.LiquidityProvider) error {
	ptx, err := asPgxTx(tx)
	if err != nil {
		return err
	}

	query := `UPDATE liquidity_providers SET available_liquidity = $1, reserved_liquidity = $2,
		total_volume = $3, completed_transactions = $4, trust_score = $5, is_active = $6, version = version + 1
		WHERE address = $7 AND version = $8`

	tag, err := ptx.Exec(ctx, query,
		numeric(p.AvailableLiquidity), numeric(p.ReservedLiquidity),
		numeric(p.TotalVolume), numeric(p.CompletedTransactions),
		int32(p.TrustScore), p.IsActive, p.Address.Bytes(), p.Version,
	)
	if err != nil {
		return fmt.Errorf("update provider: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ports.ErrStaleRecord
	}
	p.Version++
	return nil
}

func scanProvider(row pgx.Row) (*domain.LiquidityProvider, error) {
	p := &domain.LiquidityProvider{}
	var trust int32
	err := row.Scan(
		&p.Address, &p.Authority, &p.Location, &u64{&p.ExchangeRate},
		&u64{&p.AvailableLiquidity}, &u64{&p.ReservedLiquidity},
		&u64{&p.TotalVolume}, &u64{&p.CompletedTransactions},
		&trust, &p.IsActive, &p.CreatedAt, &p.Version,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan provider: %w", err)
	}
	p.TrustScore = uint16(trust)
	return p, nil
}
