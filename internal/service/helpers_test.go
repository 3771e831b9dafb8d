package service

import (
	"context"
	"testing"

	"crosspay/internal/core/domain"
	"crosspay/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTx implements ports.Tx and counts commits.
type stubTx struct {
	commits int
}

func (s *stubTx) Commit(_ context.Context) error {
	s.commits++
	return nil
}

func (s *stubTx) Rollback(_ context.Context) error { return nil }

func assertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, expectedCode, appErr.Code)
}

func verifiedProfile(identity string) *domain.UserProfile {
	return &domain.UserProfile{
		Address:     domain.ProfileAddress(identity),
		Authority:   identity,
		Role:        domain.UserRoleBoth,
		KYCVerified: true,
		CountryCode: "KE",
	}
}

func unverifiedProfile(identity string) *domain.UserProfile {
	p := verifiedProfile(identity)
	p.KYCVerified = false
	return p
}
