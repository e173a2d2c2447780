package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestMapErrorCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"malformed", &MalformedInputError{FileName: "a.csv", Err: errors.New("parse")}, "INPUT001"},
		{"empty header", &EmptyHeaderError{FileName: "a.csv"}, "INPUT002"},
		{"duplicate column", &DuplicateColumnError{Column: "name"}, "INPUT003"},
		{"empty dataset", &EmptyDatasetError{Table: "t"}, "INPUT004"},
		{"unsafe identifier", &UnsafeIdentifierError{Name: "x;y"}, "SCHEMA001"},
		{"schema creation", &SchemaCreationError{Table: "t", Err: errors.New("denied")}, "SCHEMA002"},
		{"row insert", &RowInsertError{Table: "t", Line: 7, Err: errors.New("constraint")}, "LOAD001"},
		{"io", &IOError{Op: "open", Path: "/tmp/x", Err: errors.New("gone")}, "IO001"},
		{"limiter", ErrTooManyUploads, "UPL001"},
		{"wrapped limiter", fmt.Errorf("batch: %w", ErrTooManyUploads), "UPL001"},
		{"unknown", errors.New("surprise"), "SYS000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := MapError(tt.err)
			if msg.Code != tt.code {
				t.Errorf("MapError(%v).Code = %q, want %q", tt.err, msg.Code, tt.code)
			}
			if msg.Message == "" {
				t.Error("empty user message")
			}
		})
	}
}

func TestMapErrorHidesInternalDetail(t *testing.T) {
	msg := MapError(errors.New(`pq: relation "secret_audit" does not exist`))
	if strings.Contains(msg.Message, "secret_audit") {
		t.Errorf("internal detail leaked: %q", msg.Message)
	}
}

func TestRowInsertErrorLine(t *testing.T) {
	withLine := &RowInsertError{Table: "t", Line: 4, Err: errors.New("x")}
	if !strings.Contains(withLine.Error(), "line 4") {
		t.Errorf("line missing: %v", withLine)
	}
	mapped := MapError(withLine)
	if !strings.Contains(mapped.Message, "line 4") {
		t.Errorf("line missing from user message: %q", mapped.Message)
	}

	noLine := &RowInsertError{Table: "t", Err: errors.New("commit: x")}
	if strings.Contains(noLine.Error(), "line") {
		t.Errorf("spurious line: %v", noLine)
	}
}
