package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"crosspay/internal/core/domain"
	"crosspay/internal/core/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProfile(identity string) *domain.UserProfile {
	return &domain.UserProfile{
		Address:       domain.ProfileAddress(identity),
		Authority:     identity,
		Role:          domain.UserRoleBoth,
		KYCVerified:   true,
		KYCHash:       domain.Digest{9, 9, 9},
		CountryCode:   "GH",
		TotalSent:     1_000_000_000,
		TotalReceived: 18_000_000_000_000_000_000, // above MaxInt64
		TransferSeq:   3,
		WithdrawalSeq: 1,
		CreatedAt:     time.Now().UTC().Truncate(time.Microsecond),
		Version:       4,
	}
}

func profileCols() []string {
	return []string{"address", "authority", "role", "kyc_verified", "kyc_hash", "country_code",
		"total_sent", "total_received", "transfer_seq", "withdrawal_seq", "created_at", "version"}
}

func profileRow(p *domain.UserProfile) *pgxmock.Rows {
	return pgxmock.NewRows(profileCols()).AddRow(
		p.Address.Bytes(), p.Authority, p.Role, p.KYCVerified, p.KYCHash[:], p.CountryCode,
		numeric(p.TotalSent), numeric(p.TotalReceived), numeric(p.TransferSeq), numeric(p.WithdrawalSeq),
		p.CreatedAt, p.Version,
	)
}

func TestProfileRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewProfileRepo(mock)
	p := newTestProfile("alice")

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO user_profiles").
		WithArgs(p.Address.Bytes(), p.Authority, p.Role, p.KYCVerified, p.KYCHash[:], p.CountryCode,
			"1000000000", "18000000000000000000", "3", "1", p.CreatedAt, p.Version).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, p)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepo_Create_AddressInUse(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewProfileRepo(mock)
	p := newTestProfile("alice")

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO user_profiles").
		WithArgs(anyArgs(12)...).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value"})

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, p)
	assert.ErrorIs(t, err, ports.ErrAddressInUse)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepo_GetByAddress(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewProfileRepo(mock)
	p := newTestProfile("alice")

	mock.ExpectQuery("SELECT .+ FROM user_profiles WHERE address").
		WithArgs(p.Address.Bytes()).
		WillReturnRows(profileRow(p))

	result, err := repo.GetByAddress(context.Background(), p.Address)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, p, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepo_GetByAddress_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewProfileRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM user_profiles WHERE address").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(profileCols()))

	result, err := repo.GetByAddress(context.Background(), domain.ProfileAddress("nobody"))
	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepo_GetByAddressForUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewProfileRepo(mock)
	p := newTestProfile("alice")

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM user_profiles WHERE address .+ FOR UPDATE").
		WithArgs(p.Address.Bytes()).
		WillReturnRows(profileRow(p))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	result, err := repo.GetByAddressForUpdate(context.Background(), tx, p.Address)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, p.TotalReceived, result.TotalReceived)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepo_Update(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewProfileRepo(mock)
	p := newTestProfile("alice")

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE user_profiles SET").
		WithArgs(p.KYCVerified, p.KYCHash[:], "1000000000", "18000000000000000000", "3", "1",
			p.Address.Bytes(), int64(4)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	require.NoError(t, repo.Update(context.Background(), tx, p))
	assert.Equal(t, int64(5), p.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepo_Update_Stale(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewProfileRepo(mock)
	p := newTestProfile("alice")

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE user_profiles SET").
		WithArgs(anyArgs(8)...).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Update(context.Background(), tx, p)
	assert.ErrorIs(t, err, ports.ErrStaleRecord)
	assert.Equal(t, int64(4), p.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

type foreignTx struct{}

func (foreignTx) Commit(context.Context) error   { return nil }
func (foreignTx) Rollback(context.Context) error { return nil }

func TestProfileRepo_RejectsForeignTx(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewProfileRepo(mock)
	err = repo.Create(context.Background(), foreignTx{}, newTestProfile("alice"))
	assert.True(t, errors.Is(err, errForeignTx))
}
