package core

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/tabledrop/tabledrop/internal/config"
	"github.com/tabledrop/tabledrop/internal/logging"
)

// Service orchestrates the upload pipeline: derive table name, read
// header, materialize schema, load rows, clean up. It owns each job's
// temp file from receipt to terminal state.
type Service struct {
	db        DB
	cfg       *config.Config
	collision CollisionPolicy
	limiter   *UploadLimiter
}

// NewService validates the configured collision policy and wires the
// batch limiter.
func NewService(db DB, cfg *config.Config) (*Service, error) {
	policy, err := ParseCollisionPolicy(cfg.Upload.ColumnCollision)
	if err != nil {
		return nil, err
	}
	return &Service{
		db:        db,
		cfg:       cfg,
		collision: policy,
		limiter:   NewUploadLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime),
	}, nil
}

// LimiterStatus reports in-flight batches, used by graceful shutdown.
func (s *Service) LimiterStatus() int { return s.limiter.Active() }

// WaitForUploads blocks until in-flight batches complete or ctx
// expires.
func (s *Service) WaitForUploads(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// ProcessBatch runs the pipeline for each received file in order,
// strictly sequentially. One file's failure does not block the rest:
// every file gets its own FileResult. The returned error is non-nil
// only when the batch could not start at all (limiter timeout or
// cancelled context).
func (s *Service) ProcessBatch(ctx context.Context, files []UploadedFile) ([]FileResult, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	results := make([]FileResult, 0, len(files))
	for _, f := range files {
		results = append(results, s.processFile(ctx, f))
	}
	return results, nil
}

// processFile drives one UploadJob to a terminal state. Whatever
// happens, the temp file is removed exactly once before returning.
func (s *Service) processFile(ctx context.Context, f UploadedFile) FileResult {
	job := &UploadJob{
		ID:       uuid.NewString(),
		FileName: f.OriginalName,
		TempPath: f.Path,
		Phase:    PhaseReceived,
	}
	logger := logging.WithFields(ctx, "job_id", job.ID, "file", job.FileName)

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Upload.Timeout)
	defer cancel()

	start := time.Now()
	err := s.runPipeline(ctx, job)

	// Guaranteed cleanup: terminal success and terminal failure both
	// delete the source temp file.
	if rmErr := os.Remove(job.TempPath); rmErr != nil && !os.IsNotExist(rmErr) {
		logger.Warn("temp file removal failed", "path", job.TempPath, "error", rmErr)
		if err == nil {
			err = &IOError{Op: "remove", Path: job.TempPath, Err: rmErr}
		}
	}

	if err != nil {
		logger.Error("upload failed",
			"table", job.Table,
			"phase", job.Phase,
			"error", err,
		)
	} else {
		logger.Info("upload complete",
			"table", job.Table,
			"rows", job.RowsLoaded,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}

	return FileResult{
		FileName:   job.FileName,
		Table:      job.Table,
		Columns:    job.Columns,
		RowsLoaded: job.RowsLoaded,
		Duration:   time.Since(start),
		Err:        err,
	}
}

// runPipeline sequences sanitize, header read, schema creation and row
// loading. Header extraction strictly precedes data-row parsing (both
// read the same stream), and schema creation strictly precedes
// insertion.
func (s *Service) runPipeline(ctx context.Context, job *UploadJob) error {
	job.Table = TableNameForFile(job.FileName)

	file, err := os.Open(job.TempPath)
	if err != nil {
		return &IOError{Op: "open", Path: job.TempPath, Err: err}
	}
	defer file.Close()

	src := NewFileSource(job.FileName, file)

	header, err := src.ReadHeader()
	if err != nil {
		return err
	}
	columns, err := ColumnNames(header, s.collision)
	if err != nil {
		return err
	}
	job.Columns = columns
	job.Phase = PhaseHeaderExtracted

	// DDL runs on one checked-out connection, outside the load
	// transaction.
	conn, release, err := s.db.AcquireConn(ctx)
	if err != nil {
		return &SchemaCreationError{Table: job.Table, Err: err}
	}
	err = createSchema(ctx, conn, job.Table, columns)
	release()
	if err != nil {
		return err
	}
	job.Phase = PhaseSchemaCreated

	job.Phase = PhaseLoading
	n, err := loadRows(ctx, s.db, src, job.Table, columns, s.cfg.Upload.BatchSize)
	if err != nil {
		job.Phase = PhaseRolledBack
		return err
	}
	job.RowsLoaded = n
	job.Phase = PhaseCommitted
	return nil
}
