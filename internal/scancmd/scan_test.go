package scancmd

import (
	"context"
	"testing"
	"time"

	"github.com/lehigh-university-libraries/shelfscan/internal/books"
	"github.com/lehigh-university-libraries/shelfscan/internal/scanner"
)

func TestBuildRowsWithoutLookup(t *testing.T) {
	results := []scanner.Result{
		{ISBN: "9780306406157", Methods: []string{"barcode"}, SourceFiles: []string{"a.jpg", "b.jpg"}},
		{ISBN: "9780804429573", Methods: []string{"ocr"}, SourceFiles: []string{"c.jpg"}},
	}

	rows, misses := buildRows(context.Background(), nil, results)
	if misses != 0 {
		t.Errorf("expected 0 misses, got %d", misses)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].ISBN != "9780306406157" {
		t.Errorf("expected ISBN 9780306406157, got %s", rows[0].ISBN)
	}
	if rows[0].SourceFiles != "a.jpg, b.jpg" {
		t.Errorf("expected joined source files, got %q", rows[0].SourceFiles)
	}
	if rows[0].Title != "" {
		t.Errorf("expected empty title without lookup, got %q", rows[0].Title)
	}
}

type fakeLookuper struct {
	books map[string]*books.Book
}

func (f *fakeLookuper) Lookup(ctx context.Context, isbn string) (*books.Book, error) {
	if b, ok := f.books[isbn]; ok {
		return b, nil
	}
	return nil, books.ErrNotFound
}

func TestBuildRowsLookupMiss(t *testing.T) {
	lookup := &fakeLookuper{books: map[string]*books.Book{
		"9780306406157": {ISBN: "9780306406157", Title: "Density Measurements", Authors: "R. Hoffman"},
	}}
	results := []scanner.Result{
		{ISBN: "9780306406157", SourceFiles: []string{"a.jpg"}},
		{ISBN: "9780804429573", SourceFiles: []string{"b.jpg"}},
	}

	rows, misses := buildRows(context.Background(), lookup, results)
	if misses != 1 {
		t.Errorf("expected 1 miss, got %d", misses)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Title != "Density Measurements" || rows[0].Authors != "R. Hoffman" {
		t.Errorf("unexpected hit row: %+v", rows[0])
	}

	miss := rows[1]
	if miss.Title != "Information not found" {
		t.Errorf("expected placeholder title, got %q", miss.Title)
	}
	if miss.Authors != "Unknown" || miss.Publisher != "Unknown" || miss.PublishedDate != "Unknown" {
		t.Errorf("expected Unknown placeholders, got %+v", miss)
	}
	if miss.PageCount != 0 {
		t.Errorf("expected zero page count on miss, got %d", miss.PageCount)
	}
	if miss.SourceFiles != "b.jpg" {
		t.Errorf("expected source files kept on miss, got %q", miss.SourceFiles)
	}
}

func TestBuildRowsCancelledSkipsLookup(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := []scanner.Result{
		{ISBN: "9780306406157", SourceFiles: []string{"a.jpg"}},
	}

	rows, misses := buildRows(ctx, books.NewClient(time.Second), results)
	if misses != 0 {
		t.Errorf("expected no misses on cancelled context, got %d", misses)
	}
	if len(rows) != 1 || rows[0].ISBN != "9780306406157" {
		t.Fatalf("expected one bare row, got %+v", rows)
	}
	if rows[0].Title != "" {
		t.Errorf("expected no lookup on cancelled context, got title %q", rows[0].Title)
	}
}
