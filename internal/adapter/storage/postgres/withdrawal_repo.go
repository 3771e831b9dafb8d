package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"crosspay/internal/core/domain"
	"crosspay/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

const withdrawalColumns = `address, payee, amount, asset, payout_method, selected_provider,
		status, created_at, completed_at, nonce, version`

// WithdrawalRepo implements ports.WithdrawalRepository.
type WithdrawalRepo struct {
	pool Pool
}

// NewWithdrawalRepo creates a new WithdrawalRepo.
func NewWithdrawalRepo(pool Pool) *WithdrawalRepo {
	return &WithdrawalRepo{pool: pool}
}

// Create inserts a new withdrawal within a database transaction.
func (r *WithdrawalRepo) Create(ctx context.Context, tx ports.Tx, w *domain.WithdrawalRequest) error {
	ptx, err := asPgxTx(tx)
	if err != nil {
		return err
	}

	query := `INSERT INTO withdrawal_requests (` + withdrawalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = ptx.Exec(ctx, query,
		w.Address.Bytes(), w.Payee, numeric(w.Amount), w.Asset, w.PayoutMethod, w.SelectedProvider,
		w.Status, w.CreatedAt, w.CompletedAt, numeric(w.Nonce), w.Version,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ports.ErrAddressInUse
		}
		return fmt.Errorf("insert withdrawal: %w", err)
	}
	return nil
}

// GetByAddress fetches a withdrawal (non-locking read).
func (r *WithdrawalRepo) GetByAddress(ctx context.Context, addr domain.Address) (*domain.WithdrawalRequest, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawal_requests WHERE address = $1`
	return scanWithdrawal(r.pool.QueryRow(ctx, query, addr.Bytes()))
}

// GetByAddressForUpdate fetches a withdrawal with pessimistic locking.
// This MUST be called within a transaction.
func (r *WithdrawalRepo) GetByAddressForUpdate(ctx context.Context, tx ports.Tx, addr domain.Address) (*domain.WithdrawalRequest, error) {
	ptx, err := asPgxTx(tx)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawal_requests WHERE address = $1 FOR UPDATE`
	return scanWithdrawal(ptx.QueryRow(ctx, query, addr.Bytes()))
}

// Update persists provider selection and status transitions. selected_provider
// is only written while still NULL so the choice stays write-once at rest.
func (r *WithdrawalRepo) Update(ctx context.Context, tx ports.Tx, w *domain.WithdrawalRequest) error {
	ptx, err := asPgxTx(tx)
	if err != nil {
		return err
	}

	query := `UPDATE withdrawal_requests
		SET selected_provider = COALESCE(selected_provider, $1), status = $2, completed_at = $3, version = version + 1
		WHERE address = $4 AND version = $5`

	tag, err := ptx.Exec(ctx, query, w.SelectedProvider, w.Status, w.CompletedAt, w.Address.Bytes(), w.Version)
	if err != nil {
		return fmt.Errorf("update withdrawal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ports.ErrStaleRecord
	}
	w.Version++
	return nil
}

// List fetches withdrawals the identity requested or was selected to pay
// out, newest first.
func (r *WithdrawalRepo) List(ctx context.Context, params ports.ListParams) ([]domain.WithdrawalRequest, int64, error) {
	conditions := []string{"(payee = $1 OR selected_provider = $1)"}
	args := []any{params.Identity}
	argIdx := 2

	if params.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *params.Status)
		argIdx++
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	var total int64
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM withdrawal_requests "+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count withdrawals: %w", err)
	}

	dataQuery := fmt.Sprintf(`SELECT `+withdrawalColumns+` FROM withdrawal_requests %s
		ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, params.Offset())

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list withdrawals: %w", err)
	}
	defer rows.Close()

	var withdrawals []domain.WithdrawalRequest
	for rows.Next() {
		w, err := scanWithdrawal(rows)
		if err != nil {
			return nil, 0, err
		}
		withdrawals = append(withdrawals, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate withdrawal rows: %w", err)
	}
	return withdrawals, total, nil
}

func scanWithdrawal(row pgx.Row) (*domain.WithdrawalRequest, error) {
	w := &domain.WithdrawalRequest{}
	err := row.Scan(
		&w.Address, &w.Payee, &u64{&w.Amount}, &w.Asset, &w.PayoutMethod, &w.SelectedProvider,
		&w.Status, &w.CreatedAt, &w.CompletedAt, &u64{&w.Nonce}, &w.Version,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan withdrawal: %w", err)
	}
	return w, nil
}
