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

// IdentityServiceImpl implements ports.IdentityService.
type IdentityServiceImpl struct {
	profiles   ports.ProfileRepository
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewIdentityService creates a new IdentityServiceImpl.
func NewIdentityService(profiles ports.ProfileRepository, transactor ports.DBTransactor, log zerolog.Logger) *IdentityServiceImpl {
	return &IdentityServiceImpl{
		profiles:   profiles,
		transactor: transactor,
		log:        log,
	}
}

// CreateProfile registers an unverified profile for the identity.
func (s *IdentityServiceImpl) CreateProfile(ctx context.Context, req ports.CreateProfileRequest) (*domain.UserProfile, error) {
	profile, err := domain.NewUserProfile(req.Identity, req.Role, req.CountryCode, time.Now())
	if err != nil {
		return nil, err
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.profiles.Create(ctx, dbTx, profile); err != nil {
		if errors.Is(err, ports.ErrAddressInUse) {
			return nil, apperror.ErrProfileExists()
		}
		return nil, storeError("create profile", err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("identity", profile.Authority).
		Str("address", profile.Address.String()).
		Str("role", string(profile.Role)).
		Msg("profile created")

	return profile, nil
}

// SetKYC updates the identity's own verification flag and evidence hash.
func (s *IdentityServiceImpl) SetKYC(ctx context.Context, req ports.SetKYCRequest) (*domain.UserProfile, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	profile, err := s.profiles.GetByAddressForUpdate(ctx, dbTx, domain.ProfileAddress(req.Identity))
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock profile: %w", err))
	}
	if profile == nil {
		return nil, apperror.ErrProfileNotFound()
	}

	profile.SetKYC(req.Verified, req.KYCHash)
	if err := s.profiles.Update(ctx, dbTx, profile); err != nil {
		return nil, storeError("update profile", err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("identity", profile.Authority).
		Bool("kyc_verified", profile.KYCVerified).
		Msg("kyc status updated")

	return profile, nil
}

// GetProfile returns the identity's profile.
func (s *IdentityServiceImpl) GetProfile(ctx context.Context, identity string) (*domain.UserProfile, error) {
	profile, err := s.profiles.GetByAddress(ctx, domain.ProfileAddress(identity))
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get profile: %w", err))
	}
	if profile == nil {
		return nil, apperror.ErrProfileNotFound()
	}
	return profile, nil
}
