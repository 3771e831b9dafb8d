package ports

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks

import (
	"context"
	"time"

	"crosspay/internal/core/domain"
)

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(identity string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	Identity string
}

// IdempotencyCache is the Redis-layer idempotency check. Claim guards a key
// while the request that owns it is in flight.
type IdempotencyCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // Returns cached response JSON or nil
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// RateLimitStore counts one request against key in a window of the given
// length and reports whether it fits under limit.
type RateLimitStore interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (*RateLimitResult, error)
}

// RateLimitResult holds the outcome of a rate limit check.
type RateLimitResult struct {
	Allowed   bool
	Limit     int64
	Remaining int64
	ResetAt   int64 // Unix timestamp
}

// AuditService records audited actions. Failures are logged, never returned.
type AuditService interface {
	Log(ctx context.Context, entry AuditEntry)
}

// AuditEntry holds input for an audit record.
type AuditEntry struct {
	Actor        string
	Action       domain.AuditAction
	ResourceType string
	ResourceID   string
	Details      map[string]interface{}
	IPAddress    string
}

// --- Service Ports (Business Logic) ---

// IdentityService is the identity registry: profiles and KYC flags.
type IdentityService interface {
	CreateProfile(ctx context.Context, req CreateProfileRequest) (*domain.UserProfile, error)
	SetKYC(ctx context.Context, req SetKYCRequest) (*domain.UserProfile, error)
	GetProfile(ctx context.Context, identity string) (*domain.UserProfile, error)
}

type CreateProfileRequest struct {
	Identity    string
	Role        domain.UserRole
	CountryCode string
}

type SetKYCRequest struct {
	Identity string
	Verified bool
	KYCHash  domain.Digest
}

// ProviderService is the liquidity provider registry.
type ProviderService interface {
	RegisterProvider(ctx context.Context, req RegisterProviderRequest) (*domain.LiquidityProvider, error)
	SetAvailability(ctx context.Context, req SetAvailabilityRequest) (*domain.LiquidityProvider, error)
	GetProvider(ctx context.Context, owner string) (*domain.LiquidityProvider, error)
}

type RegisterProviderRequest struct {
	Owner        string
	Location     string
	ExchangeRate uint64
}

type SetAvailabilityRequest struct {
	Owner              string
	AvailableLiquidity uint64
	IsActive           bool
}

// TransferService is the transfer state machine.
type TransferService interface {
	CreateTransfer(ctx context.Context, req CreateTransferRequest) (*domain.TransferRequest, error)
	SettleTransfer(ctx context.Context, caller string, addr domain.Address) (*domain.TransferRequest, error)
	CancelTransfer(ctx context.Context, caller string, addr domain.Address) (*domain.TransferRequest, error)
	GetTransfer(ctx context.Context, addr domain.Address) (*domain.TransferRequest, error)
	ListTransfers(ctx context.Context, params ListParams) ([]domain.TransferRequest, int64, error)
}

// CreateTransferRequest holds validated input for transfer creation.
type CreateTransferRequest struct {
	Sender         string
	Receiver       string
	Amount         uint64
	Asset          string
	IdempotencyKey string // optional
}

// WithdrawalService is the withdrawal state machine.
type WithdrawalService interface {
	CreateWithdrawal(ctx context.Context, req CreateWithdrawalRequest) (*domain.WithdrawalRequest, error)
	SelectProvider(ctx context.Context, caller string, addr domain.Address, providerOwner string) (*domain.WithdrawalRequest, error)
	FinalizeWithdrawal(ctx context.Context, caller string, addr domain.Address) (*domain.WithdrawalRequest, error)
	CancelWithdrawal(ctx context.Context, caller string, addr domain.Address) (*domain.WithdrawalRequest, error)
	GetWithdrawal(ctx context.Context, addr domain.Address) (*domain.WithdrawalRequest, error)
	ListWithdrawals(ctx context.Context, params ListParams) ([]domain.WithdrawalRequest, int64, error)
}

// CreateWithdrawalRequest holds validated input for withdrawal creation.
type CreateWithdrawalRequest struct {
	Payee          string
	Amount         uint64
	Asset          string
	PayoutMethod   domain.PayoutMethod
	IdempotencyKey string // optional
}
