package core

import (
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"
)

func TestFileSourceTwoPhase(t *testing.T) {
	src := NewFileSource("people.csv", strings.NewReader("Name,Age\nAlice,30\nBob,25\n"))

	header, err := src.ReadHeader()
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if !reflect.DeepEqual(header, []string{"Name", "Age"}) {
		t.Errorf("header = %v", header)
	}
	if src.Line() != 1 {
		t.Errorf("header line = %d, want 1", src.Line())
	}

	// Phase 2: data rows only after the caller decides to continue.
	var rows [][]string
	for {
		row, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		rows = append(rows, row)
	}
	want := [][]string{{"Alice", "30"}, {"Bob", "25"}}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %v, want %v", rows, want)
	}
	if src.Line() != 3 {
		t.Errorf("last line = %d, want 3", src.Line())
	}
}

func TestFileSourceHeaderTrimmed(t *testing.T) {
	src := NewFileSource("x.csv", strings.NewReader("  Name , Age \nAlice,30\n"))
	header, err := src.ReadHeader()
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if !reflect.DeepEqual(header, []string{"Name", "Age"}) {
		t.Errorf("header = %v", header)
	}
}

func TestFileSourceEmptyFile(t *testing.T) {
	src := NewFileSource("empty.csv", strings.NewReader(""))
	_, err := src.ReadHeader()

	var empty *EmptyHeaderError
	if !errors.As(err, &empty) {
		t.Fatalf("want EmptyHeaderError, got %v", err)
	}
	if empty.FileName != "empty.csv" {
		t.Errorf("FileName = %q", empty.FileName)
	}
}

func TestFileSourceMalformedHeader(t *testing.T) {
	src := NewFileSource("bad.csv", strings.NewReader("\"a\"x\"\nrow\n"))
	_, err := src.ReadHeader()

	var malformed *MalformedInputError
	if !errors.As(err, &malformed) {
		t.Fatalf("want MalformedInputError, got %v", err)
	}
}

func TestFileSourceUnterminatedQuoteInData(t *testing.T) {
	src := NewFileSource("bad.csv", strings.NewReader("a,b\n\"unterminated\n"))
	if _, err := src.ReadHeader(); err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}

	_, err := src.Next()
	var malformed *MalformedInputError
	if !errors.As(err, &malformed) {
		t.Fatalf("want MalformedInputError, got %v", err)
	}
}

func TestFileSourceVariableWidthRows(t *testing.T) {
	src := NewFileSource("x.csv", strings.NewReader("a,b,c\n1,2\n1,2,3,4\n"))
	if _, err := src.ReadHeader(); err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}

	row, err := src.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if len(row) != 2 {
		t.Errorf("short row kept as-is, len = %d", len(row))
	}

	row, err = src.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if len(row) != 4 {
		t.Errorf("long row kept as-is, len = %d", len(row))
	}
}

func TestFileSourceBOMHeader(t *testing.T) {
	input := "\xEF\xBB\xBFName,Age\nAlice,30\n"
	src := NewFileSource("bom.csv", strings.NewReader(input))
	header, err := src.ReadHeader()
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if header[0] != "Name" {
		t.Errorf("BOM leaked into first header cell: %q", header[0])
	}
}
