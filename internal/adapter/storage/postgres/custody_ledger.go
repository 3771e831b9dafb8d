package postgres

import (
	"context"
	"errors"
	"fmt"

	"crosspay/internal/core/ports"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// CustodyLedger implements ports.AssetCustody over the custody_balances table.
type CustodyLedger struct {
	pool Pool
}

// NewCustodyLedger creates a new CustodyLedger.
func NewCustodyLedger(pool Pool) *CustodyLedger {
	return &CustodyLedger{pool: pool}
}

// BalanceOf returns the identity's balance, locking the balance row for the
// rest of tx. A missing row is a zero balance.
func (l *CustodyLedger) BalanceOf(ctx context.Context, tx ports.Tx, identity, asset string) (uint64, error) {
	ptx, err := asPgxTx(tx)
	if err != nil {
		return 0, err
	}

	var balance uint64
	err = ptx.QueryRow(ctx,
		`SELECT amount FROM custody_balances WHERE identity = $1 AND asset = $2 FOR UPDATE`,
		identity, asset,
	).Scan(&u64{&balance})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("get custody balance: %w", err)
	}
	return balance, nil
}

// MoveCustody debits from and credits to within tx. The debit is guarded in
// SQL so a concurrent spender can never drive a balance negative.
func (l *CustodyLedger) MoveCustody(ctx context.Context, tx ports.Tx, from, to, asset string, amount uint64) error {
	ptx, err := asPgxTx(tx)
	if err != nil {
		return err
	}

	tag, err := ptx.Exec(ctx,
		`UPDATE custody_balances SET amount = amount - $3, updated_at = NOW()
		 WHERE identity = $1 AND asset = $2 AND amount >= $3`,
		from, asset, numeric(amount),
	)
	if err != nil {
		return fmt.Errorf("debit custody: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ports.ErrInsufficientCustody
	}

	if err := credit(ctx, ptx, to, asset, amount); err != nil {
		return err
	}
	return nil
}

// Credit adds amount to identity's balance outside any engine transaction.
// It is the operator funding path.
func (l *CustodyLedger) Credit(ctx context.Context, identity, asset string, amount uint64) error {
	return credit(ctx, l.pool, identity, asset, amount)
}

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

func credit(ctx context.Context, db execer, identity, asset string, amount uint64) error {
	_, err := db.Exec(ctx,
		`INSERT INTO custody_balances (identity, asset, amount, updated_at) VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (identity, asset) DO UPDATE SET amount = custody_balances.amount + EXCLUDED.amount, updated_at = NOW()`,
		identity, asset, numeric(amount),
	)
	if err != nil {
		return fmt.Errorf("credit custody: %w", err)
	}
	return nil
}
