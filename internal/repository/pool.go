package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	pgconn5 "github.com/jackc/pgx/v5/pgconn"
)

// pgxPool is the narrow slice of pgxpool.Pool the repositories need; the
// indirection keeps the SQL paths testable with stubs.
type pgxPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn5.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}
