package ports

//go:generate mockgen -source=repositories.go -destination=mocks/mock_repositories.go -package=mocks

import (
	"context"
	"errors"

	"crosspay/internal/core/domain"
)

// Record store sentinel errors. Services translate them to apperror kinds.
var (
	// ErrAddressInUse is returned by Create when a record already exists at
	// the derived address.
	ErrAddressInUse = errors.New("record address already in use")
	// ErrStaleRecord is returned by Update when the stored version no longer
	// matches the version the caller read.
	ErrStaleRecord = errors.New("record version is stale")
)

// Tx is one atomic unit of work against the record store. Every mutation
// made through it is applied on Commit or discarded on Rollback. Rollback
// after Commit is a no-op.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// DBTransactor provides record store transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (Tx, error)
}

// Repositories follow one shape: Get* returns (nil, nil) when no record lives
// at the address, *ForUpdate methods take an exclusive lock for the rest of
// tx, and Update is a versioned write that bumps Version on success.

// ProfileRepository defines persistence operations for user profiles.
type ProfileRepository interface {
	Create(ctx context.Context, tx Tx, profile *domain.UserProfile) error
	GetByAddress(ctx context.Context, addr domain.Address) (*domain.UserProfile, error)
	GetByAddressForUpdate(ctx context.Context, tx Tx, addr domain.Address) (*domain.UserProfile, error)
	Update(ctx context.Context, tx Tx, profile *domain.UserProfile) error
}

// TransferRepository defines persistence operations for transfer requests.
type TransferRepository interface {
	Create(ctx context.Context, tx Tx, transfer *domain.TransferRequest) error
	GetByAddress(ctx context.Context, addr domain.Address) (*domain.TransferRequest, error)
	GetByAddressForUpdate(ctx context.Context, tx Tx, addr domain.Address) (*domain.TransferRequest, error)
	Update(ctx context.Context, tx Tx, transfer *domain.TransferRequest) error
	List(ctx context.Context, params ListParams) ([]domain.TransferRequest, int64, error)
}

// WithdrawalRepository defines persistence operations for withdrawal requests.
type WithdrawalRepository interface {
	Create(ctx context.Context, tx Tx, withdrawal *domain.WithdrawalRequest) error
	GetByAddress(ctx context.Context, addr domain.Address) (*domain.WithdrawalRequest, error)
	GetByAddressForUpdate(ctx context.Context, tx Tx, addr domain.Address) (*domain.WithdrawalRequest, error)
	Update(ctx context.Context, tx Tx, withdrawal *domain.WithdrawalRequest) error
	List(ctx context.Context, params ListParams) ([]domain.WithdrawalRequest, int64, error)
}

// ProviderRepository defines persistence operations for liquidity providers.
type ProviderRepository interface {
	Create(ctx context.Context, tx Tx, provider *domain.LiquidityProvider) error
	GetByAddress(ctx context.Context, addr domain.Address) (*domain.LiquidityProvider, error)
	GetByAddressForUpdate(ctx context.Context, tx Tx, addr domain.Address) (*domain.LiquidityProvider, error)
	Update(ctx context.Context, tx Tx, provider *domain.LiquidityProvider) error
}

// IdempotencyRepository is the durable idempotency log. Create fails with
// ErrAddressInUse when the key is already logged.
type IdempotencyRepository interface {
	Create(ctx context.Context, tx Tx, log *domain.IdempotencyLog) error
	Get(ctx context.Context, tx Tx, key string) (*domain.IdempotencyLog, error)
}

// ListParams holds filter + pagination for listing an identity's requests.
// For transfers Identity matches sender or receiver; for withdrawals, payee
// or selected provider.
type ListParams struct {
	Identity string
	Status   *string
	Page     int
	PageSize int
}

// Page size bounds applied by Normalize.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Normalize applies the first page and the default and maximum page sizes.
func (p ListParams) Normalize() ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset returns the row offset for the requested page.
func (p ListParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// AssetCustody is the token balance sheet. Calls join the caller's record
// store transaction so custody moves commit or roll back with the records.
type AssetCustody interface {
	BalanceOf(ctx context.Context, tx Tx, identity, asset string) (uint64, error)
	// MoveCustody debits from and credits to. It fails with ErrInsufficientCustody
	// when from holds less than amount.
	MoveCustody(ctx context.Context, tx Tx, from, to, asset string, amount uint64) error
}

// ErrInsufficientCustody is returned by MoveCustody on a short debit.
var ErrInsufficientCustody = errors.New("insufficient custody balance")

// AuditRepository persists audit log entries.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}
