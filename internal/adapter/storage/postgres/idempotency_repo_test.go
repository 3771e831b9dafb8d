package postgres

import (
	"context"
	"testing"
	"time"

	"crosspay/internal/core/domain"
	"crosspay/internal/core/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIdempotencyLog() *domain.IdempotencyLog {
	return &domain.IdempotencyLog{
		Key:           "transfer:alice:order-1",
		RecordAddress: domain.TransferAddress("alice", "bob", 0),
		CreatedAt:     time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestIdempotencyRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewIdempotencyRepo()
	entry := newTestIdempotencyLog()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO idempotency_logs").
		WithArgs(entry.Key, entry.RecordAddress.Bytes(), entry.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	assert.NoError(t, repo.Create(context.Background(), tx, entry))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyRepo_Create_DuplicateKey(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewIdempotencyRepo()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO idempotency_logs").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value"})

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, newTestIdempotencyLog())
	assert.ErrorIs(t, err, ports.ErrAddressInUse)
}

func TestIdempotencyRepo_Get(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewIdempotencyRepo()
	entry := newTestIdempotencyLog()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM idempotency_logs WHERE key").
		WithArgs(entry.Key).
		WillReturnRows(pgxmock.NewRows([]string{"key", "record_address", "created_at"}).
			AddRow(entry.Key, entry.RecordAddress.Bytes(), entry.CreatedAt))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	result, err := repo.Get(context.Background(), tx, entry.Key)
	require.NoError(t, err)
	assert.Equal(t, entry, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyRepo_Get_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewIdempotencyRepo()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM idempotency_logs WHERE key").
		WithArgs("transfer:alice:missing").
		WillReturnRows(pgxmock.NewRows([]string{"key", "record_address", "created_at"}))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	result, err := repo.Get(context.Background(), tx, "transfer:alice:missing")
	assert.NoError(t, err)
	assert.Nil(t, result)
}
