package core

// fakes_test.go provides an in-memory stand-in for the Postgres pool
// so pipeline tests can assert on issued DDL and committed rows
// without a live database.

import (
	"context"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type fakeDB struct {
	mu      sync.Mutex
	execs   []string // DDL statements, in order
	inserts [][]any  // committed row arguments
	pending [][]any  // rows inside the open transaction

	execErr   error // injected DDL failure
	beginErr  error // injected Begin failure
	failOnRow int   // 1-based insert ordinal to fail at (0 = never)

	seen      int // inserts attempted
	commits   int
	rollbacks int
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.execs = append(f.execs, sql)
	if f.execErr != nil {
		return pgconn.CommandTag{}, f.execErr
	}
	return pgconn.NewCommandTag("OK"), nil
}

func (f *fakeDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (f *fakeDB) Begin(ctx context.Context) (pgx.Tx, error) {
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	return &fakeTx{db: f}, nil
}

func (f *fakeDB) AcquireConn(ctx context.Context) (DBTX, func(), error) {
	return f, func() {}, nil
}

// fakeTx implements the subset of pgx.Tx the loader touches; anything
// else panics via the embedded nil interface.
type fakeTx struct {
	pgx.Tx
	db   *fakeDB
	done bool
}

func (t *fakeTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	return &fakeBatchResults{tx: t, queued: b.QueuedQueries}
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	t.done = true
	t.db.commits++
	t.db.inserts = append(t.db.inserts, t.db.pending...)
	t.db.pending = nil
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	t.done = true
	t.db.rollbacks++
	t.db.pending = nil
	return nil
}

type fakeBatchResults struct {
	tx     *fakeTx
	queued []*pgx.QueuedQuery
	next   int
}

func (r *fakeBatchResults) Exec() (pgconn.CommandTag, error) {
	q := r.queued[r.next]
	r.next++

	db := r.tx.db
	db.mu.Lock()
	defer db.mu.Unlock()
	db.seen++
	if db.failOnRow > 0 && db.seen >= db.failOnRow {
		return pgconn.CommandTag{}, errors.New("violates check constraint")
	}
	db.pending = append(db.pending, q.Arguments)
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (r *fakeBatchResults) Query() (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (r *fakeBatchResults) QueryRow() pgx.Row { return nil }

func (r *fakeBatchResults) Close() error {
	r.queued = nil
	return nil
}
