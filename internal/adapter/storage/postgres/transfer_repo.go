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

const transferColumns = `address, sender, receiver, amount, net_amount, platform_fee, asset,
		status, created_at, completed_at, nonce, version`

// TransferRepo implements ports.TransferRepository.
type TransferRepo struct {
	pool Pool
}

// NewTransferRepo creates a new TransferRepo.
func NewTransferRepo(pool Pool) *TransferRepo {
	return &TransferRepo{pool: pool}
}

// Create inserts a new transfer within a database transaction.
func (r *TransferRepo) Create(ctx context.Context, tx ports.Tx, t *domain.TransferRequest) error {
	ptx, err := asPgxTx(tx)
	if err != nil {
		return err
	}

	query := `INSERT INTO transfer_requests (` + transferColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err = ptx.Exec(ctx, query,
		t.Address.Bytes(), t.Sender, t.Receiver,
		numeric(t.Amount), numeric(t.NetAmount), numeric(t.PlatformFee), t.Asset,
		t.Status, t.CreatedAt, t.CompletedAt, numeric(t.Nonce), t.Version,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ports.ErrAddressInUse
		}
		return fmt.Errorf("insert transfer: %w", err)
	}
	return nil
}

// GetByAddress fetches a transfer (non-locking read).
func (r *TransferRepo) GetByAddress(ctx context.Context, addr domain.Address) (*domain.TransferRequest, error) {
	query := `SELECT ` + transferColumns + ` FROM transfer_requests WHERE address = $1`
	return scanTransfer(r.pool.QueryRow(ctx, query, addr.Bytes()))
}

// GetByAddressForUpdate fetches a transfer with pessimistic locking.
// This MUST be called within a transaction.
func (r *TransferRepo) GetByAddressForUpdate(ctx context.Context, tx ports.Tx, addr domain.Address) (*domain.TransferRequest, error) {
	ptx, err := asPgxTx(tx)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + transferColumns + ` FROM transfer_requests WHERE address = $1 FOR UPDATE`
	return scanTransfer(ptx.QueryRow(ctx, query, addr.Bytes()))
}

// Update persists a status transition. Amounts are immutable after creation
// and are not rewritten.
func (r *TransferRepo) Update(ctx context.Context, tx ports.Tx, t *domain.TransferRequest) error {
	ptx, err := asPgxTx(tx)
	if err != nil {
		return err
	}

	query := `UPDATE transfer_requests SET status = $1, completed_at = $2, version = version + 1
		WHERE address = $3 AND version = $4`

	tag, err := ptx.Exec(ctx, query, t.Status, t.CompletedAt, t.Address.Bytes(), t.Version)
	if err != nil {
		return fmt.Errorf("update transfer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ports.ErrStaleRecord
	}
	t.Version++
	return nil
}

// List fetches transfers where the identity is sender or receiver, newest first.
func (r *TransferRepo) List(ctx context.Context, params ports.ListParams) ([]domain.TransferRequest, int64, error) {
	conditions := []string{"(sender = $1 OR receiver = $1)"}
	args := []any{params.Identity}
	argIdx := 2

	if params.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *params.Status)
		argIdx++
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	var total int64
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM transfer_requests "+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count transfers: %w", err)
	}

	dataQuery := fmt.Sprintf(`SELECT `+transferColumns+` FROM transfer_requests %s
		ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, params.Offset())

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()

	var transfers []domain.TransferRequest
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, 0, err
		}
		transfers = append(transfers, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate transfer rows: %w", err)
	}
	return transfers, total, nil
}

func scanTransfer(row pgx.Row) (*domain.TransferRequest, error) {
	t := &domain.TransferRequest{}
	err := row.Scan(
		&t.Address, &t.Sender, &t.Receiver,
		&u64{&t.Amount}, &u64{&t.NetAmount}, &u64{&t.PlatformFee}, &t.Asset,
		&t.Status, &t.CreatedAt, &t.CompletedAt, &u64{&t.Nonce}, &t.Version,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan transfer: %w", err)
	}
	return t, nil
}
