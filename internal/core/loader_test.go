package core

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func newTestSource(t *testing.T, data string) (*FileSource, []string) {
	t.Helper()
	src := NewFileSource("test.csv", strings.NewReader(data))
	header, err := src.ReadHeader()
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	cols, err := ColumnNames(header, CollisionDrop)
	if err != nil {
		t.Fatalf("ColumnNames: %v", err)
	}
	return src, cols
}

func TestLoadRowsCommitsAll(t *testing.T) {
	src, cols := newTestSource(t, "Name,Age\nAlice,30\nBob,25\n")
	db := &fakeDB{}

	n, err := loadRows(context.Background(), db, src, "people", cols, 1000)
	if err != nil {
		t.Fatalf("loadRows: %v", err)
	}
	if n != 2 {
		t.Errorf("rows loaded = %d, want 2", n)
	}
	if db.commits != 1 {
		t.Errorf("commits = %d, want 1", db.commits)
	}
	if db.rollbacks != 0 {
		t.Errorf("rollbacks = %d, want 0", db.rollbacks)
	}

	want := [][]any{{"Alice", "30"}, {"Bob", "25"}}
	if !reflect.DeepEqual(db.inserts, want) {
		t.Errorf("inserts = %v, want %v", db.inserts, want)
	}
}

func TestLoadRowsBatching(t *testing.T) {
	var b strings.Builder
	b.WriteString("v\n")
	for i := 0; i < 7; i++ {
		b.WriteString("x\n")
	}
	src, cols := newTestSource(t, b.String())
	db := &fakeDB{}

	// 7 rows at batch size 3: two full rounds plus a final partial one,
	// all inside one transaction.
	n, err := loadRows(context.Background(), db, src, "t", cols, 3)
	if err != nil {
		t.Fatalf("loadRows: %v", err)
	}
	if n != 7 {
		t.Errorf("rows loaded = %d, want 7", n)
	}
	if db.commits != 1 {
		t.Errorf("commits = %d, want 1", db.commits)
	}
	if len(db.inserts) != 7 {
		t.Errorf("committed rows = %d, want 7", len(db.inserts))
	}
}

func TestLoadRowsEmptyDataset(t *testing.T) {
	src, cols := newTestSource(t, "Name,Age\n")
	db := &fakeDB{}

	_, err := loadRows(context.Background(), db, src, "people", cols, 1000)
	var empty *EmptyDatasetError
	if !errors.As(err, &empty) {
		t.Fatalf("want EmptyDatasetError, got %v", err)
	}
	if empty.Table != "people" {
		t.Errorf("Table = %q", empty.Table)
	}
	// No transaction may be opened for a header-only file.
	if db.commits != 0 || db.rollbacks != 0 {
		t.Errorf("transaction touched: commits=%d rollbacks=%d", db.commits, db.rollbacks)
	}
}

func TestLoadRowsRollbackOnFailure(t *testing.T) {
	src, cols := newTestSource(t, "v\na\nb\nc\nd\n")
	db := &fakeDB{failOnRow: 3}

	_, err := loadRows(context.Background(), db, src, "t", cols, 2)
	var insertErr *RowInsertError
	if !errors.As(err, &insertErr) {
		t.Fatalf("want RowInsertError, got %v", err)
	}
	// Header is line 1, so the third data row is source line 4.
	if insertErr.Line != 4 {
		t.Errorf("Line = %d, want 4", insertErr.Line)
	}
	if db.commits != 0 {
		t.Errorf("commits = %d, want 0", db.commits)
	}
	if db.rollbacks != 1 {
		t.Errorf("rollbacks = %d, want 1", db.rollbacks)
	}
	if len(db.inserts) != 0 {
		t.Errorf("rows survived a failed load: %v", db.inserts)
	}
}

func TestLoadRowsBeginFailure(t *testing.T) {
	src, cols := newTestSource(t, "v\na\n")
	db := &fakeDB{beginErr: errors.New("pool exhausted")}

	_, err := loadRows(context.Background(), db, src, "t", cols, 1000)
	var insertErr *RowInsertError
	if !errors.As(err, &insertErr) {
		t.Fatalf("want RowInsertError, got %v", err)
	}
	if !strings.Contains(err.Error(), "begin transaction") {
		t.Errorf("cause not labeled: %v", err)
	}
}

func TestLoadRowsPadsAndTruncates(t *testing.T) {
	src, cols := newTestSource(t, "a,b,c\n1\n1,2,3,4\n")
	db := &fakeDB{}

	n, err := loadRows(context.Background(), db, src, "t", cols, 1000)
	if err != nil {
		t.Fatalf("loadRows: %v", err)
	}
	if n != 2 {
		t.Errorf("rows loaded = %d, want 2", n)
	}
	want := [][]any{{"1", "", ""}, {"1", "2", "3"}}
	if !reflect.DeepEqual(db.inserts, want) {
		t.Errorf("inserts = %v, want %v", db.inserts, want)
	}
}

func TestLoadRowsMalformedMidFile(t *testing.T) {
	src, cols := newTestSource(t, "a,b\n1,2\n\"broken\n")
	db := &fakeDB{}

	_, err := loadRows(context.Background(), db, src, "t", cols, 1000)
	var malformed *MalformedInputError
	if !errors.As(err, &malformed) {
		t.Fatalf("want MalformedInputError, got %v", err)
	}
	if db.commits != 0 {
		t.Errorf("commits = %d, want 0", db.commits)
	}
	if len(db.inserts) != 0 {
		t.Errorf("rows survived a malformed file: %v", db.inserts)
	}
}

func TestBuildInsertSQL(t *testing.T) {
	got := buildInsertSQL("people", []string{"name", "age"})
	want := `INSERT INTO "people" ("name", "age") VALUES ($1, $2)`
	if got != want {
		t.Errorf("sql = %s, want %s", got, want)
	}
}
