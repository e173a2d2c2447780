package core

// errors.go defines the pipeline's error taxonomy. Each stage fails
// with a typed error carrying the context a caller needs (file, table,
// line), and MapError turns any of them into a stable user-facing
// message with an error code, keeping driver detail out of responses.

import (
	"errors"
	"fmt"
)

// MalformedInputError reports a structural parse failure in the
// uploaded file, such as an unterminated quote.
type MalformedInputError struct {
	FileName string
	Err      error
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed input in %s: %v", e.FileName, e.Err)
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

// EmptyHeaderError reports a file with no records at all, so no header
// row to derive a schema from.
type EmptyHeaderError struct {
	FileName string
}

func (e *EmptyHeaderError) Error() string {
	return fmt.Sprintf("file %s has no header row", e.FileName)
}

// DuplicateColumnError reports two header cells sanitizing to the same
// column name under the reject collision policy.
type DuplicateColumnError struct {
	Column string
}

func (e *DuplicateColumnError) Error() string {
	return fmt.Sprintf("duplicate column name %q after sanitization", e.Column)
}

// EmptyDatasetError reports a file with a header but zero data rows.
// The table has already been created when this fires.
type EmptyDatasetError struct {
	Table string
}

func (e *EmptyDatasetError) Error() string {
	return fmt.Sprintf("no data rows to load into %s", e.Table)
}

// UnsafeIdentifierError reports a derived name that failed the
// identifier allow-list and must not reach a DDL statement.
type UnsafeIdentifierError struct {
	Name string
}

func (e *UnsafeIdentifierError) Error() string {
	return fmt.Sprintf("unsafe identifier %q", e.Name)
}

// SchemaCreationError reports a failure while dropping or creating the
// destination table.
type SchemaCreationError struct {
	Table string
	Err   error
}

func (e *SchemaCreationError) Error() string {
	return fmt.Sprintf("creating table %s: %v", e.Table, e.Err)
}

func (e *SchemaCreationError) Unwrap() error { return e.Err }

// RowInsertError reports a failed insert. Line is the 1-based source
// line of the offending row, zero when the failure is not row-specific
// (begin, flush, commit).
type RowInsertError struct {
	Table string
	Line  int
	Err   error
}

func (e *RowInsertError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("inserting into %s (line %d): %v", e.Table, e.Line, e.Err)
	}
	return fmt.Sprintf("inserting into %s: %v", e.Table, e.Err)
}

func (e *RowInsertError) Unwrap() error { return e.Err }

// IOError reports a filesystem failure on the spooled upload.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// UserMessage is the client-facing rendering of a pipeline error.
type UserMessage struct {
	Message string
	Action  string
	Code    string
}

// MapError translates a pipeline error into its user-facing message.
// Unknown errors map to a generic message so internal detail never
// leaks into a response body.
func MapError(err error) UserMessage {
	var (
		malformed  *MalformedInputError
		noHeader   *EmptyHeaderError
		dupCol     *DuplicateColumnError
		noData     *EmptyDatasetError
		unsafeName *UnsafeIdentifierError
		schema     *SchemaCreationError
		insert     *RowInsertError
		ioErr      *IOError
	)

	switch {
	case errors.As(err, &malformed):
		return UserMessage{
			Message: fmt.Sprintf("file %s could not be parsed as CSV", malformed.FileName),
			Action:  "check the file for unterminated quotes or truncated lines and upload it again",
			Code:    "INPUT001",
		}
	case errors.As(err, &noHeader):
		return UserMessage{
			Message: fmt.Sprintf("file %s is empty", noHeader.FileName),
			Action:  "the first line must contain the column names",
			Code:    "INPUT002",
		}
	case errors.As(err, &dupCol):
		return UserMessage{
			Message: fmt.Sprintf("column name %q appears more than once", dupCol.Column),
			Action:  "rename the duplicate columns or change the collision policy",
			Code:    "INPUT003",
		}
	case errors.As(err, &noData):
		return UserMessage{
			Message: "the file contains a header but no data rows",
			Action:  "add at least one data row below the header",
			Code:    "INPUT004",
		}
	case errors.As(err, &unsafeName):
		return UserMessage{
			Message: fmt.Sprintf("name %q cannot be used as a table or column", unsafeName.Name),
			Action:  "rename the file or column to letters, digits and underscores",
			Code:    "SCHEMA001",
		}
	case errors.As(err, &schema):
		return UserMessage{
			Message: fmt.Sprintf("table %s could not be created", schema.Table),
			Action:  "try again; if the problem persists contact the operator",
			Code:    "SCHEMA002",
		}
	case errors.As(err, &insert):
		msg := UserMessage{
			Message: fmt.Sprintf("loading rows into %s failed; no rows were kept", insert.Table),
			Action:  "fix the reported row and upload the file again",
			Code:    "LOAD001",
		}
		if insert.Line > 0 {
			msg.Message = fmt.Sprintf("loading rows into %s failed at line %d; no rows were kept",
				insert.Table, insert.Line)
		}
		return msg
	case errors.As(err, &ioErr):
		return UserMessage{
			Message: "a temporary file could not be processed",
			Action:  "upload the file again",
			Code:    "IO001",
		}
	case errors.Is(err, ErrTooManyUploads):
		return UserMessage{
			Message: ErrTooManyUploads.Error(),
			Action:  "wait a moment and retry",
			Code:    "UPL001",
		}
	default:
		return UserMessage{
			Message: "an unexpected error occurred",
			Action:  "try again; if the problem persists contact the operator",
			Code:    "SYS000",
		}
	}
}
