package core

// source.go implements the two-phase consumption protocol over one
// open CSV stream: phase 1 reads exactly the header record and stops;
// phase 2 reads data rows, and is only entered after the caller has
// created the destination schema. No pause/resume primitive is needed,
// just two sequential blocking reads over the same reader.

import (
	"encoding/csv"
	"io"
	"strings"
)

// FileSource streams one delimited-text file. Create it with
// NewFileSource, call ReadHeader once, then Next until io.EOF.
type FileSource struct {
	fileName string
	csv      *csv.Reader
	line     int // 1-based line of the last record returned
}

// NewFileSource wraps r for streaming CSV consumption. The reader is
// sanitized (BOM, invalid UTF-8) before parsing; rows may have a
// variable number of fields, which the loader pads to the header
// width.
func NewFileSource(fileName string, r io.Reader) *FileSource {
	cr := csv.NewReader(NewSanitizedReader(r))
	cr.FieldsPerRecord = -1
	// Strict quoting: an unterminated quote is a structural error the
	// caller must see, not something to paper over.
	return &FileSource{fileName: fileName, csv: cr}
}

// ReadHeader reads exactly the first record and returns its cells,
// trimmed. Stream consumption stops here until Next is called, so
// schema creation can complete before any data row is parsed.
//
// Returns EmptyHeaderError when the file has no records at all and
// MalformedInputError on a structural parse failure.
func (s *FileSource) ReadHeader() ([]string, error) {
	rec, err := s.csv.Read()
	if err == io.EOF {
		return nil, &EmptyHeaderError{FileName: s.fileName}
	}
	if err != nil {
		return nil, &MalformedInputError{FileName: s.fileName, Err: err}
	}
	s.line++

	cells := make([]string, len(rec))
	for i, c := range rec {
		cells[i] = strings.TrimSpace(c)
	}
	return cells, nil
}

// Next returns the next data row, or io.EOF when the file is
// exhausted. Structural parse failures surface as MalformedInputError.
func (s *FileSource) Next() ([]string, error) {
	rec, err := s.csv.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, &MalformedInputError{FileName: s.fileName, Err: err}
	}
	s.line++
	return rec, nil
}

// Line is the 1-based source line of the last record returned.
// The header is line 1.
func (s *FileSource) Line() int { return s.line }
