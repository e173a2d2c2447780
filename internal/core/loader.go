package core

// loader.go streams data rows into the destination table. Instead of
// buffering the whole file, rows are sent in fixed-size pgx.Batch
// rounds inside a single transaction, so memory is bounded by the
// batch size while the file keeps all-or-nothing semantics: any
// insert failure rolls back everything loaded so far.

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jackc/pgx/v5"
)

// loadRows consumes the remaining rows of src into table. It returns
// the number of rows committed.
//
// A file with zero data rows fails with EmptyDatasetError before any
// transaction is opened, leaving the freshly created table empty but
// in place.
func loadRows(ctx context.Context, db TxBeginner, src *FileSource, table string, columns []string, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 1000
	}

	// Peek the first data row before opening a transaction.
	first, err := src.Next()
	if err == io.EOF {
		return 0, &EmptyDatasetError{Table: table}
	}
	if err != nil {
		return 0, err
	}

	insertSQL := buildInsertSQL(table, columns)

	tx, err := db.Begin(ctx)
	if err != nil {
		return 0, &RowInsertError{Table: table, Err: fmt.Errorf("begin transaction: %w", err)}
	}
	defer func() {
		// No-op after a successful commit.
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			_ = rbErr
		}
	}()

	var (
		batch = &pgx.Batch{}
		lines []int
		count int
	)

	flush := func() error {
		if batch.Len() == 0 {
			return nil
		}
		br := tx.SendBatch(ctx, batch)
		for _, line := range lines {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return &RowInsertError{Table: table, Line: line, Err: err}
			}
		}
		if err := br.Close(); err != nil {
			return &RowInsertError{Table: table, Err: err}
		}
		count += batch.Len()
		batch = &pgx.Batch{}
		lines = lines[:0]
		return nil
	}

	row := first
	for {
		args := make([]any, len(columns))
		for i := range columns {
			if i < len(row) {
				args[i] = row[i]
			} else {
				// Short rows are padded with empty text to the
				// header width; long rows are truncated.
				args[i] = ""
			}
		}
		batch.Queue(insertSQL, args...)
		lines = append(lines, src.Line())

		if batch.Len() >= batchSize {
			if err := flush(); err != nil {
				return 0, err
			}
		}

		row, err = src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
	}

	if err := flush(); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, &RowInsertError{Table: table, Err: fmt.Errorf("commit: %w", err)}
	}
	return count, nil
}

// buildInsertSQL assembles the parameterized insert for one row.
// Identifiers were validated during schema creation; values are always
// bound as parameters, never interpolated.
func buildInsertSQL(table string, columns []string) string {
	quoted := make([]string, len(columns))
	params := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = quoteIdentifier(col)
		params[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdentifier(table),
		strings.Join(quoted, ", "),
		strings.Join(params, ", "),
	)
}
