package core

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// poolDB adapts *pgxpool.Pool to the DB interface. The pool is
// process-wide state with an explicit lifecycle: created once in main,
// injected here, closed at shutdown.
type poolDB struct {
	pool *pgxpool.Pool
}

// NewDB wraps a pgx connection pool for use by the pipeline.
func NewDB(pool *pgxpool.Pool) DB {
	return &poolDB{pool: pool}
}

func (p *poolDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return p.pool.Exec(ctx, sql, args...)
}

func (p *poolDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return p.pool.Query(ctx, sql, args...)
}

func (p *poolDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return p.pool.QueryRow(ctx, sql, args...)
}

func (p *poolDB) Begin(ctx context.Context) (pgx.Tx, error) {
	return p.pool.Begin(ctx)
}

func (p *poolDB) AcquireConn(ctx context.Context) (DBTX, func(), error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, nil, err
	}
	return conn, conn.Release, nil
}
