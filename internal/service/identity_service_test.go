package service

import (
	"context"
	"errors"
	"testing"

	"crosspay/internal/core/domain"
	"crosspay/internal/core/ports"
	"crosspay/internal/core/ports/mocks"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func setupIdentityService(t *testing.T) (*IdentityServiceImpl, *mocks.MockProfileRepository, *mocks.MockDBTransactor, *stubTx) {
	ctrl := gomock.NewController(t)
	profiles := mocks.NewMockProfileRepository(ctrl)
	transactor := mocks.NewMockDBTransactor(ctrl)
	return NewIdentityService(profiles, transactor, zerolog.Nop()), profiles, transactor, &stubTx{}
}

func TestIdentityService_CreateProfile_Success(t *testing.T) {
	svc, profiles, transactor, tx := setupIdentityService(t)

	transactor.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	profiles.EXPECT().Create(gomock.Any(), tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ ports.Tx, p *domain.UserProfile) error {
			assert.Equal(t, domain.ProfileAddress("alice"), p.Address)
			assert.False(t, p.KYCVerified)
			return nil
		})

	profile, err := svc.CreateProfile(context.Background(), ports.CreateProfileRequest{
		Identity: "alice", Role: domain.UserRoleSender, CountryCode: "KE",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Authority)
	assert.Equal(t, 1, tx.commits)
}

func TestIdentityService_CreateProfile_InvalidCountryCode(t *testing.T) {
	svc, _, _, _ := setupIdentityService(t)

	_, err := svc.CreateProfile(context.Background(), ports.CreateProfileRequest{
		Identity: "alice", Role: domain.UserRoleSender, CountryCode: "KENY",
	})
	assertAppError(t, err, "KYC_002")
}

func TestIdentityService_CreateProfile_InvalidRole(t *testing.T) {
	svc, _, _, _ := setupIdentityService(t)

	_, err := svc.CreateProfile(context.Background(), ports.CreateProfileRequest{
		Identity: "alice", Role: "ADMIN", CountryCode: "KE",
	})
	assertAppError(t, err, "PAY_002")
}

func TestIdentityService_CreateProfile_Exists(t *testing.T) {
	svc, profiles, transactor, tx := setupIdentityService(t)

	transactor.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	profiles.EXPECT().Create(gomock.Any(), tx, gomock.Any()).Return(ports.ErrAddressInUse)

	_, err := svc.CreateProfile(context.Background(), ports.CreateProfileRequest{
		Identity: "alice", Role: domain.UserRoleBoth, CountryCode: "NG",
	})
	assertAppError(t, err, "KYC_004")
	assert.Equal(t, 0, tx.commits)
}

func TestIdentityService_CreateProfile_BeginFails(t *testing.T) {
	svc, _, transactor, _ := setupIdentityService(t)

	transactor.EXPECT().Begin(gomock.Any()).Return(nil, errors.New("pool closed"))

	_, err := svc.CreateProfile(context.Background(), ports.CreateProfileRequest{
		Identity: "alice", Role: domain.UserRoleBoth, CountryCode: "NG",
	})
	assertAppError(t, err, "SYS_001")
}

func TestIdentityService_SetKYC(t *testing.T) {
	svc, profiles, transactor, tx := setupIdentityService(t)
	hash := domain.Digest{0xaa, 0xbb}

	transactor.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	profiles.EXPECT().GetByAddressForUpdate(gomock.Any(), tx, domain.ProfileAddress("alice")).
		Return(unverifiedProfile("alice"), nil)
	profiles.EXPECT().Update(gomock.Any(), tx, gomock.Any()).Return(nil)

	profile, err := svc.SetKYC(context.Background(), ports.SetKYCRequest{Identity: "alice", Verified: true, KYCHash: hash})
	require.NoError(t, err)
	assert.True(t, profile.KYCVerified)
	assert.Equal(t, hash, profile.KYCHash)
	assert.Equal(t, 1, tx.commits)
}

func TestIdentityService_SetKYC_NotFound(t *testing.T) {
	svc, profiles, transactor, tx := setupIdentityService(t)

	transactor.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	profiles.EXPECT().GetByAddressForUpdate(gomock.Any(), tx, gomock.Any()).Return(nil, nil)

	_, err := svc.SetKYC(context.Background(), ports.SetKYCRequest{Identity: "ghost", Verified: true})
	assertAppError(t, err, "KYC_003")
}

func TestIdentityService_SetKYC_Stale(t *testing.T) {
	svc, profiles, transactor, tx := setupIdentityService(t)

	transactor.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	profiles.EXPECT().GetByAddressForUpdate(gomock.Any(), tx, gomock.Any()).Return(unverifiedProfile("alice"), nil)
	profiles.EXPECT().Update(gomock.Any(), tx, gomock.Any()).Return(ports.ErrStaleRecord)

	_, err := svc.SetKYC(context.Background(), ports.SetKYCRequest{Identity: "alice", Verified: true})
	assertAppError(t, err, "SYS_002")
	assert.ErrorIs(t, err, ports.ErrStaleRecord)
}

func TestIdentityService_GetProfile(t *testing.T) {
	svc, profiles, _, _ := setupIdentityService(t)

	profiles.EXPECT().GetByAddress(gomock.Any(), domain.ProfileAddress("alice")).Return(verifiedProfile("alice"), nil)
	profiles.EXPECT().GetByAddress(gomock.Any(), domain.ProfileAddress("ghost")).Return(nil, nil)
	profiles.EXPECT().GetByAddress(gomock.Any(), domain.ProfileAddress("broken")).Return(nil, errors.New("conn reset"))

	p, err := svc.GetProfile(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Authority)

	_, err = svc.GetProfile(context.Background(), "ghost")
	assertAppError(t, err, "KYC_003")

	_, err = svc.GetProfile(context.Background(), "broken")
	assertAppError(t, err, "SYS_001")
}
