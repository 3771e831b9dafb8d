package postgres

import (
	"context"
	"testing"
	"time"

	"crosspay/internal/core/domain"
	"crosspay/internal/core/ports"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWithdrawal(t *testing.T) *domain.WithdrawalRequest {
	t.Helper()
	w, err := domain.NewWithdrawalRequest("bob", 500_000_000, "USDC", domain.PayoutMethodMobileMoney, 0,
		time.Now().UTC().Truncate(time.Microsecond))
	require.NoError(t, err)
	return w
}

func withdrawalCols() []string {
	return []string{"address", "payee", "amount", "asset", "payout_method", "selected_provider",
		"status", "created_at", "completed_at", "nonce", "version"}
}

func withdrawalRow(rows *pgxmock.Rows, w *domain.WithdrawalRequest) *pgxmock.Rows {
	return rows.AddRow(
		w.Address.Bytes(), w.Payee, numeric(w.Amount), w.Asset, w.PayoutMethod, w.SelectedProvider,
		w.Status, w.CreatedAt, w.CompletedAt, numeric(w.Nonce), w.Version,
	)
}

func TestWithdrawalRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWithdrawalRepo(mock)
	w := newTestWithdrawal(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO withdrawal_requests").
		WithArgs(w.Address.Bytes(), "bob", "500000000", "USDC", domain.PayoutMethodMobileMoney, w.SelectedProvider,
			domain.WithdrawalStatusPending, w.CreatedAt, w.CompletedAt, "0", int64(0)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	assert.NoError(t, repo.Create(context.Background(), tx, w))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithdrawalRepo_GetByAddress_RoundTrip(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWithdrawalRepo(mock)
	w := newTestWithdrawal(t)
	require.NoError(t, w.SelectProvider("lp-1"))

	mock.ExpectQuery("SELECT .+ FROM withdrawal_requests WHERE address").
		WithArgs(w.Address.Bytes()).
		WillReturnRows(withdrawalRow(pgxmock.NewRows(withdrawalCols()), w))

	result, err := repo.GetByAddress(context.Background(), w.Address)
	require.NoError(t, err)
	assert.Equal(t, w, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithdrawalRepo_Update(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWithdrawalRepo(mock)
	w := newTestWithdrawal(t)
	require.NoError(t, w.SelectProvider("lp-1"))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE withdrawal_requests SET selected_provider = COALESCE").
		WithArgs(w.SelectedProvider, domain.WithdrawalStatusProviderSelected, w.CompletedAt, w.Address.Bytes(), int64(0)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	require.NoError(t, repo.Update(context.Background(), tx, w))
	assert.Equal(t, int64(1), w.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithdrawalRepo_Update_Stale(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWithdrawalRepo(mock)
	w := newTestWithdrawal(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE withdrawal_requests").
		WithArgs(anyArgs(5)...).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	assert.ErrorIs(t, repo.Update(context.Background(), tx, w), ports.ErrStaleRecord)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithdrawalRepo_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWithdrawalRepo(mock)
	w := newTestWithdrawal(t)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("bob").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery(`SELECT .+ FROM withdrawal_requests WHERE \(payee = \$1 OR selected_provider = \$1\)`).
		WithArgs("bob", 20, 0).
		WillReturnRows(withdrawalRow(pgxmock.NewRows(withdrawalCols()), w))

	withdrawals, total, err := repo.List(context.Background(), ports.ListParams{Identity: "bob", Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, withdrawals, 1)
	assert.Equal(t, w.Amount, withdrawals[0].Amount)
	assert.NoError(t, mock.ExpectationsWereMet())
}
