package postgres

import (
	"context"
	"errors"
	"fmt"

	"crosspay/internal/core/domain"
	"crosspay/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

const profileColumns = `address, authority, role, kyc_verified, kyc_hash, country_code,
		total_sent, total_received, transfer_seq, withdrawal_seq, created_at, version`

// ProfileRepo implements ports.ProfileRepository.
type ProfileRepo struct {
	pool Pool
}

// NewProfileRepo creates a new ProfileRepo.
func NewProfileRepo(pool Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

// Create inserts a new profile within a database transaction.
func (r *ProfileRepo) Create(ctx context.Context, tx ports.Tx, p *domain.UserProfile) error {
	ptx, err := asPgxTx(tx)
	if err != nil {
		return err
	}

	query := `INSERT INTO user_profiles (` + profileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err = ptx.Exec(ctx, query,
		p.Address.Bytes(), p.Authority, p.Role, p.KYCVerified, p.KYCHash[:], p.CountryCode,
		numeric(p.TotalSent), numeric(p.TotalReceived), numeric(p.TransferSeq), numeric(p.WithdrawalSeq),
		p.CreatedAt, p.Version,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ports.ErrAddressInUse
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

// GetByAddress fetches a profile (non-locking read).
func (r *ProfileRepo) GetByAddress(ctx context.Context, addr domain.Address) (*domain.UserProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM user_profiles WHERE address = $1`
	return scanProfile(r.pool.QueryRow(ctx, query, addr.Bytes()))
}

// GetByAddressForUpdate fetches a profile with pessimistic locking.
// This MUST be called within a transaction.
func (r *ProfileRepo) GetByAddressForUpdate(ctx context.Context, tx ports.Tx, addr domain.Address) (*domain.UserProfile, error) {
	ptx, err := asPgxTx(tx)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + profileColumns + ` FROM user_profiles WHERE address = $1 FOR UPDATE`
	return scanProfile(ptx.QueryRow(ctx, query, addr.Bytes()))
}

// Update writes every mutable field if the stored version still matches.
func (r *ProfileRepo) Update(ctx context.Context, tx ports.Tx, p *domain.UserProfile) error {
	ptx, err := asPgxTx(tx)
	if err != nil {
		return err
	}

	query := `UPDATE user_profiles SET kyc_verified = $1, kyc_hash = $2, total_sent = $3, total_received = $4,
		transfer_seq = $5, withdrawal_seq = $6, version = version + 1
		WHERE address = $7 AND version = $8`

	tag, err := ptx.Exec(ctx, query,
		p.KYCVerified, p.KYCHash[:], numeric(p.TotalSent), numeric(p.TotalReceived),
		numeric(p.TransferSeq), numeric(p.WithdrawalSeq), p.Address.Bytes(), p.Version,
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ports.ErrStaleRecord
	}
	p.Version++
	return nil
}

func scanProfile(row pgx.Row) (*domain.UserProfile, error) {
	p := &domain.UserProfile{}
	var kycHash []byte
	err := row.Scan(
		&p.Address, &p.Authority, &p.Role, &p.KYCVerified, &kycHash, &p.CountryCode,
		&u64{&p.TotalSent}, &u64{&p.TotalReceived}, &u64{&p.TransferSeq}, &u64{&p.WithdrawalSeq},
		&p.CreatedAt, &p.Version,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan profile: %w", err)
	}
	copy(p.KYCHash[:], kycHash)
	return p, nil
}
