package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"crosspay/internal/core/ports"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Pool is the subset of *pgxpool.Pool the repositories use. pgxmock pools
// satisfy it as well.
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

const uniqueViolation = "23505"

var errForeignTx = errors.New("transaction was not started by the postgres transactor")

// asPgxTx unwraps a ports.Tx begun by Transactor.
func asPgxTx(tx ports.Tx) (pgx.Tx, error) {
	ptx, ok := tx.(pgx.Tx)
	if !ok {
		return nil, fmt.Errorf("%w: %T", errForeignTx, tx)
	}
	return ptx, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// numeric renders a uint64 for a NUMERIC(20,0) parameter. Text parameters are
// sent in text format, so values above MaxInt64 survive the round trip.
func numeric(v uint64) string {
	return strconv.FormatUint(v, 10)
}

// u64 scans a NUMERIC(20,0) column into a uint64 field.
type u64 struct {
	dst *uint64
}

func (n u64) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*n.dst = 0
		return nil
	case string:
		return n.parse(v)
	case []byte:
		return n.parse(string(v))
	case int64:
		if v < 0 {
			return fmt.Errorf("negative amount %d", v)
		}
		*n.dst = uint64(v)
		return nil
	case uint64:
		*n.dst = v
		return nil
	default:
		return fmt.Errorf("cannot scan %T into uint64", src)
	}
}

func (n u64) parse(s string) error {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("parse amount %q: %w", s, err)
	}
	*n.dst = v
	return nil
}
