package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crosspay/internal/core/domain"
	"crosspay/internal/core/ports"
	"crosspay/pkg/apperror"

	"github.com/rs/zerolog"
)

// WithdrawalServiceImpl implements ports.WithdrawalService.
type WithdrawalServiceImpl struct {
	profiles    ports.ProfileRepository
	withdrawals ports.WithdrawalRepository
	providers   ports.ProviderRepository
	custody     ports.AssetCustody
	transactor  ports.DBTransactor
	idem        idempotency
	log         zerolog.Logger
}

// NewWithdrawalService creates a new WithdrawalServiceImpl. idempotencyLogs
// and cache may be nil.
func NewWithdrawalService(
	profiles ports.ProfileRepository,
	withdrawals ports.WithdrawalRepository,
	providers ports.ProviderRepository,
	custody ports.AssetCustody,
	transactor ports.DBTransactor,
	idempotencyLogs ports.IdempotencyRepository,
	cache ports.IdempotencyCache,
	idempotencyTTL time.Duration,
	log zerolog.Logger,
) *WithdrawalServiceImpl {
	return &WithdrawalServiceImpl{
		profiles:    profiles,
		withdrawals: withdrawals,
		providers:   providers,
		custody:     custody,
		transactor:  transactor,
		idem:        newIdempotency(cache, idempotencyLogs, idempotencyTTL, log),
		log:         log,
	}
}

// CreateWithdrawal records a pending cash-out. Tokens stay with the payee
// until FinalizeWithdrawal.
func (s *WithdrawalServiceImpl) CreateWithdrawal(ctx context.Context, req ports.CreateWithdrawalRequest) (*domain.WithdrawalRequest, error) {
	if req.Amount == 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	if !req.PayoutMethod.IsValid() {
		return nil, apperror.ErrInvalidPayoutMethod()
	}
	if req.Asset == "" {
		return nil, apperror.Validation("asset is required")
	}

	var idempKey string
	if req.IdempotencyKey != "" {
		idempKey = domain.BuildIdempotencyKey(domain.IdempotencyScopeWithdrawal, req.Payee, req.IdempotencyKey)
	}
	cached, release, err := s.idem.begin(ctx, idempKey)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return decodeCached[domain.WithdrawalRequest](cached)
	}
	defer release()

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	logged, err := s.idem.lookup(ctx, dbTx, idempKey)
	if err != nil {
		return nil, err
	}
	if logged != nil {
		return s.GetWithdrawal(ctx, *logged)
	}

	payee, err := s.profiles.GetByAddressForUpdate(ctx, dbTx, domain.ProfileAddress(req.Payee))
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock payee profile: %w", err))
	}
	if payee == nil {
		return nil, apperror.ErrProfileNotFound()
	}

	balance, err := s.custody.BalanceOf(ctx, dbTx, req.Payee, req.Asset)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get payee balance: %w", err))
	}
	if balance < req.Amount {
		return nil, apperror.ErrInsufficientBalance()
	}

	nonce, err := payee.NextWithdrawalNonce()
	if err != nil {
		return nil, err
	}
	withdrawal, err := domain.NewWithdrawalRequest(req.Payee, req.Amount, req.Asset, req.PayoutMethod, nonce, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.withdrawals.Create(ctx, dbTx, withdrawal); err != nil {
		if errors.Is(err, ports.ErrAddressInUse) {
			return nil, apperror.ErrDuplicateRecord()
		}
		return nil, storeError("create withdrawal", err)
	}
	if err := s.profiles.Update(ctx, dbTx, payee); err != nil {
		return nil, storeError("update payee profile", err)
	}
	if err := s.idem.record(ctx, dbTx, idempKey, withdrawal.Address, withdrawal.CreatedAt); err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.idem.remember(ctx, idempKey, withdrawal)

	s.log.Info().
		Str("address", withdrawal.Address.String()).
		Str("payee", withdrawal.Payee).
		Uint64("amount", withdrawal.Amount).
		Str("payout_method", string(withdrawal.PayoutMethod)).
		Msg("withdrawal created")

	return withdrawal, nil
}

// SelectProvider binds a provider to the withdrawal and reserves the amount
// from the provider's available liquidity. The choice is final.
func (s *WithdrawalServiceImpl) SelectProvider(ctx context.Context, caller string, addr domain.Address, providerOwner string) (*domain.WithdrawalRequest, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	withdrawal, err := s.lockWithdrawal(ctx, dbTx, addr)
	if err != nil {
		return nil, err
	}
	if withdrawal.Payee != caller {
		return nil, apperror.ErrUnauthorized()
	}
	if err := withdrawal.SelectProvider(providerOwner); err != nil {
		return nil, err
	}
	if providerOwner == withdrawal.Payee {
		return nil, apperror.ErrSelfPayout()
	}

	provider, err := s.lockProvider(ctx, dbTx, providerOwner)
	if err != nil {
		return nil, err
	}
	if err := provider.Reserve(withdrawal.Amount); err != nil {
		return nil, err
	}

	if err := s.providers.Update(ctx, dbTx, provider); err != nil {
		return nil, storeError("update provider", err)
	}
	if err := s.withdrawals.Update(ctx, dbTx, withdrawal); err != nil {
		return nil, storeError("update withdrawal", err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("address", withdrawal.Address.String()).
		Str("provider", providerOwner).
		Uint64("reserved", withdrawal.Amount).
		Msg("withdrawal provider selected")

	return withdrawal, nil
}

// FinalizeWithdrawal is the payee's confirmation that local currency arrived.
// The tokens move to the provider and the reservation is consumed.
func (s *WithdrawalServiceImpl) FinalizeWithdrawal(ctx context.Context, caller string, addr domain.Address) (*domain.WithdrawalRequest, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	withdrawal, err := s.lockWithdrawal(ctx, dbTx, addr)
	if err != nil {
		return nil, err
	}
	if withdrawal.Payee != caller {
		return nil, apperror.ErrUnauthorized()
	}
	if withdrawal.Status != domain.WithdrawalStatusProviderSelected || !withdrawal.HasProvider() {
		return nil, apperror.ErrInvalidWithdrawalStatus()
	}

	provider, err := s.lockProvider(ctx, dbTx, *withdrawal.SelectedProvider)
	if err != nil {
		return nil, err
	}

	balance, err := s.custody.BalanceOf(ctx, dbTx, withdrawal.Payee, withdrawal.Asset)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get payee balance: %w", err))
	}
	if balance < withdrawal.Amount {
		return nil, apperror.ErrInsufficientBalance()
	}
	if err := s.custody.MoveCustody(ctx, dbTx, withdrawal.Payee, provider.Authority, withdrawal.Asset, withdrawal.Amount); err != nil {
		return nil, storeError("move withdrawal amount", err)
	}

	if err := withdrawal.Finalize(time.Now()); err != nil {
		return nil, err
	}
	if err := provider.Settle(withdrawal.Amount); err != nil {
		return nil, err
	}

	if err := s.providers.Update(ctx, dbTx, provider); err != nil {
		return nil, storeError("update provider", err)
	}
	if err := s.withdrawals.Update(ctx, dbTx, withdrawal); err != nil {
		return nil, storeError("update withdrawal", err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("address", withdrawal.Address.String()).
		Str("provider", provider.Authority).
		Uint64("amount", withdrawal.Amount).
		Msg("withdrawal finalized")

	return withdrawal, nil
}

// CancelWithdrawal fails a withdrawal that has not completed. The payee or
// the selected provider may cancel; a reservation goes back to the provider.
func (s *WithdrawalServiceImpl) CancelWithdrawal(ctx context.Context, caller string, addr domain.Address) (*domain.WithdrawalRequest, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	withdrawal, err := s.lockWithdrawal(ctx, dbTx, addr)
	if err != nil {
		return nil, err
	}
	isProvider := withdrawal.HasProvider() && *withdrawal.SelectedProvider == caller
	if withdrawal.Payee != caller && !isProvider {
		return nil, apperror.ErrUnauthorized()
	}

	reserved := withdrawal.Status == domain.WithdrawalStatusProviderSelected
	if err := withdrawal.Fail(time.Now()); err != nil {
		return nil, err
	}

	if reserved {
		provider, err := s.lockProvider(ctx, dbTx, *withdrawal.SelectedProvider)
		if err != nil {
			return nil, err
		}
		if err := provider.Release(withdrawal.Amount); err != nil {
			return nil, err
		}
		if err := s.providers.Update(ctx, dbTx, provider); err != nil {
			return nil, storeError("update provider", err)
		}
	}
	if err := s.withdrawals.Update(ctx, dbTx, withdrawal); err != nil {
		return nil, storeError("update withdrawal", err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("address", withdrawal.Address.String()).
		Str("cancelled_by", caller).
		Bool("released_reservation", reserved).
		Msg("withdrawal cancelled")

	return withdrawal, nil
}

// GetWithdrawal returns the withdrawal stored at addr.
func (s *WithdrawalServiceImpl) GetWithdrawal(ctx context.Context, addr domain.Address) (*domain.WithdrawalRequest, error) {
	withdrawal, err := s.withdrawals.GetByAddress(ctx, addr)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get withdrawal: %w", err))
	}
	if withdrawal == nil {
		return nil, apperror.ErrWithdrawalNotFound()
	}
	return withdrawal, nil
}

// ListWithdrawals pages through withdrawals the caller requested or serves as provider.
func (s *WithdrawalServiceImpl) ListWithdrawals(ctx context.Context, params ports.ListParams) ([]domain.WithdrawalRequest, int64, error) {
	withdrawals, total, err := s.withdrawals.List(ctx, params.Normalize())
	if err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("list withdrawals: %w", err))
	}
	return withdrawals, total, nil
}

func (s *WithdrawalServiceImpl) lockWithdrawal(ctx context.Context, tx ports.Tx, addr domain.Address) (*domain.WithdrawalRequest, error) {
	withdrawal, err := s.withdrawals.GetByAddressForUpdate(ctx, tx, addr)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock withdrawal: %w", err))
	}
	if withdrawal == nil {
		return nil, apperror.ErrWithdrawalNotFound()
	}
	return withdrawal, nil
}

func (s *WithdrawalServiceImpl) lockProvider(ctx context.Context, tx ports.Tx, owner string) (*domain.LiquidityProvider, error) {
	provider, err := s.providers.GetByAddressForUpdate(ctx, tx, domain.ProviderAddress(owner))
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock provider: %w", err))
	}
	if provider == nil {
		return nil, apperror.ErrProviderNotFound()
	}
	return provider, nil
}
