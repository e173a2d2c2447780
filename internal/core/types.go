// Package core implements the schema-inference-and-load pipeline:
// deriving a safe table definition from a CSV header and streaming the
// file's rows into that table transactionally. It has no HTTP
// dependencies and can be driven by any frontend.
package core

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the statement-execution surface shared by pools, checked-out
// connections and transactions.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxBeginner starts transactions.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// DB is the full database surface the pipeline needs: raw statements,
// transactions, and single-connection checkout for DDL sequences.
type DB interface {
	DBTX
	TxBeginner

	// AcquireConn checks out one connection. The release func must be
	// called when done with it.
	AcquireConn(ctx context.Context) (DBTX, func(), error)
}

// UploadedFile is one received file: a temp path owned by the pipeline
// plus the client-supplied name the table is derived from.
type UploadedFile struct {
	Path         string
	OriginalName string
}

// JobPhase is the lifecycle state of an UploadJob.
type JobPhase string

const (
	PhaseReceived        JobPhase = "received"
	PhaseHeaderExtracted JobPhase = "header_extracted"
	PhaseSchemaCreated   JobPhase = "schema_created"
	PhaseLoading         JobPhase = "loading"
	PhaseCommitted       JobPhase = "committed"
	PhaseRolledBack      JobPhase = "rolled_back"
)

// UploadJob tracks one file through the pipeline. The temp file is
// owned by the orchestrator and removed exactly once on reaching a
// terminal phase.
type UploadJob struct {
	ID         string
	FileName   string
	TempPath   string
	Table      string
	Columns    []string
	RowsLoaded int
	Phase      JobPhase
}

// FileResult is the terminal outcome for one file in a batch.
// Err is nil on success.
type FileResult struct {
	FileName   string
	Table      string
	Columns    []string
	RowsLoaded int
	Duration   time.Duration
	Err        error
}
