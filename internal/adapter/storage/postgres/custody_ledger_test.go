package postgres

import (
	"context"
	"testing"

	"crosspay/internal/core/ports"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustodyLedger_BalanceOf(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ledger := NewCustodyLedger(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT amount FROM custody_balances .+ FOR UPDATE").
		WithArgs("alice", "USDC").
		WillReturnRows(pgxmock.NewRows([]string{"amount"}).AddRow("750"))
	mock.ExpectQuery("SELECT amount FROM custody_balances").
		WithArgs("nobody", "USDC").
		WillReturnRows(pgxmock.NewRows([]string{"amount"}))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	bal, err := ledger.BalanceOf(context.Background(), tx, "alice", "USDC")
	require.NoError(t, err)
	assert.Equal(t, uint64(750), bal)

	bal, err = ledger.BalanceOf(context.Background(), tx, "nobody", "USDC")
	require.NoError(t, err)
	assert.Zero(t, bal)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustodyLedger_MoveCustody(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ledger := NewCustodyLedger(mock)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE custody_balances SET amount = amount -").
		WithArgs("alice", "USDC", "995").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("INSERT INTO custody_balances .+ ON CONFLICT").
		WithArgs("bob", "USDC", "995").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	assert.NoError(t, ledger.MoveCustody(context.Background(), tx, "alice", "bob", "USDC", 995))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustodyLedger_MoveCustody_Insufficient(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ledger := NewCustodyLedger(mock)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE custody_balances SET amount = amount -").
		WithArgs("alice", "USDC", "10").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = ledger.MoveCustody(context.Background(), tx, "alice", "bob", "USDC", 10)
	assert.ErrorIs(t, err, ports.ErrInsufficientCustody)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustodyLedger_Credit(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ledger := NewCustodyLedger(mock)

	mock.ExpectExec("INSERT INTO custody_balances").
		WithArgs("alice", "USDC", "18446744073709551615").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(t, ledger.Credit(context.Background(), "alice", "USDC", ^uint64(0)))
	assert.NoError(t, mock.ExpectationsWereMet())
}
