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

// ProviderServiceImpl implements ports.ProviderService.
type ProviderServiceImpl struct {
	providers  ports.ProviderRepository
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewProviderService creates a new ProviderServiceImpl.
func NewProviderService(providers ports.ProviderRepository, transactor ports.DBTransactor, log zerolog.Logger) *ProviderServiceImpl {
	return &ProviderServiceImpl{
		providers:  providers,
		transactor: transactor,
		log:        log,
	}
}

// RegisterProvider creates the owner's provider record: active, default
// trust score, no liquidity.
func (s *ProviderServiceImpl) RegisterProvider(ctx context.Context, req ports.RegisterProviderRequest) (*domain.LiquidityProvider, error) {
	provider, err := domain.NewLiquidityProvider(req.Owner, req.Location, req.ExchangeRate, time.Now())
	if err != nil {
		return nil, err
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.providers.Create(ctx, dbTx, provider); err != nil {
		if errors.Is(err, ports.ErrAddressInUse) {
			return nil, apperror.ErrProviderExists()
		}
		return nil, storeError("create provider", err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("owner", provider.Authority).
		Str("address", provider.Address.String()).
		Str("location", provider.Location).
		Uint64("exchange_rate", provider.ExchangeRate).
		Msg("liquidity provider registered")

	return provider, nil
}

// SetAvailability sets the owner's unreserved liquidity and active flag.
// Reserved liquidity is left untouched.
func (s *ProviderServiceImpl) SetAvailability(ctx context.Context, req ports.SetAvailabilityRequest) (*domain.LiquidityProvider, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	provider, err := s.providers.GetByAddressForUpdate(ctx, dbTx, domain.ProviderAddress(req.Owner))
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock provider: %w", err))
	}
	if provider == nil {
		return nil, apperror.ErrProviderNotFound()
	}

	provider.SetAvailability(req.AvailableLiquidity, req.IsActive)
	if err := s.providers.Update(ctx, dbTx, provider); err != nil {
		return nil, storeError("update provider", err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("owner", provider.Authority).
		Uint64("available_liquidity", provider.AvailableLiquidity).
		Bool("is_active", provider.IsActive).
		Msg("provider availability updated")

	return provider, nil
}

// GetProvider returns the owner's provider record.
func (s *ProviderServiceImpl) GetProvider(ctx context.Context, owner string) (*domain.LiquidityProvider, error) {
	provider, err := s.providers.GetByAddress(ctx, domain.ProviderAddress(owner))
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get provider: %w", err))
	}
	if provider == nil {
		return nil, apperror.ErrProviderNotFound()
	}
	return provider, nil
}
