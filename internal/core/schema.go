package core

// schema.go materializes the destination table. The DROP+CREATE pair
// is intentionally destructive: re-uploading a file with the same
// derived name replaces the prior table wholesale, never merges.
// Both statements run on one checked-out connection, outside the
// row-loading transaction (DDL is not part of the load's atomicity).

import (
	"context"
	"strings"
)

// createSchema drops and recreates table with an auto-increment id
// primary key followed by one TEXT column per entry in columns.
// Identifiers are checked against the allow-list and quoted before
// interpolation; store failures come back as SchemaCreationError.
func createSchema(ctx context.Context, db DBTX, table string, columns []string) error {
	if err := ensureSafeIdentifier(table); err != nil {
		return err
	}
	for _, col := range columns {
		if err := ensureSafeIdentifier(col); err != nil {
			return err
		}
	}

	if _, err := db.Exec(ctx, "DROP TABLE IF EXISTS "+quoteIdentifier(table)); err != nil {
		return &SchemaCreationError{Table: table, Err: err}
	}
	if _, err := db.Exec(ctx, buildCreateTableSQL(table, columns)); err != nil {
		return &SchemaCreationError{Table: table, Err: err}
	}
	return nil
}

// buildCreateTableSQL assembles the CREATE TABLE statement. Every
// inferred column is unbounded text; type inference is out of scope.
func buildCreateTableSQL(table string, columns []string) string {
	var b strings.Builder
	b.Grow(64 + len(columns)*24)

	b.WriteString("CREATE TABLE ")
	b.WriteString(quoteIdentifier(table))
	b.WriteString(" (id BIGSERIAL PRIMARY KEY")
	for _, col := range columns {
		b.WriteString(", ")
		b.WriteString(quoteIdentifier(col))
		b.WriteString(" TEXT")
	}
	b.WriteByte(')')
	return b.String()
}
