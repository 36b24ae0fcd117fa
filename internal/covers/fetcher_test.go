package covers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// fakeJPEG is big enough to clear the placeholder-size filter.
var fakeJPEG = bytes.Repeat([]byte{0xff}, 2048)

func newTestFetcher(openLibrary, googleAPI, googleContent http.HandlerFunc) (*Fetcher, func()) {
	olSrv := httptest.NewServer(openLibrary)
	apiSrv := httptest.NewServer(googleAPI)
	contentSrv := httptest.NewServer(googleContent)

	f := NewFetcher(0)
	f.OpenLibraryCoversURL = olSrv.URL
	f.GoogleBooksBaseURL = apiSrv.URL
	f.GoogleContentBaseURL = contentSrv.URL

	return f, func() {
		olSrv.Close()
		apiSrv.Close()
		contentSrv.Close()
	}
}

func TestFetchCoverFromOpenLibrary(t *testing.T) {
	fetcher, done := newTestFetcher(
		func(w http.ResponseWriter, r *http.Request) {
			if !strings.Contains(r.URL.Path, "9780134190440") {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			w.Write(fakeJPEG)
		},
		func(w http.ResponseWriter, r *http.Request) {
			t.Error("google Books should not be called when Open Library has the cover")
		},
		func(w http.ResponseWriter, r *http.Request) {},
	)
	defer done()

	dir := t.TempDir()
	path, err := fetcher.FetchCover(context.Background(), "9780134190440", dir)
	if err != nil {
		t.Fatalf("FetchCover returned error: %v", err)
	}
	if filepath.Base(path) != "9780134190440_cover.jpg" {
		t.Errorf("unexpected file name: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != len(fakeJPEG) {
		t.Errorf("saved %d bytes, want %d", len(data), len(fakeJPEG))
	}
}

func TestFetchCoverFallsBackToGoogleBooks(t *testing.T) {
	fetcher, done := newTestFetcher(
		func(w http.ResponseWriter, r *http.Request) {
			// Tiny response, the placeholder Open Library serves for
			// unknown ISBNs.
			w.Write([]byte("x"))
		},
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"items":[{"id":"abc123"}]}`))
		},
		func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("id"); got != "abc123" {
				t.Errorf("unexpected volume id: %s", got)
			}
			w.Write(fakeJPEG)
		},
	)
	defer done()

	path, err := fetcher.FetchCover(context.Background(), "9780306406157", t.TempDir())
	if err != nil {
		t.Fatalf("FetchCover returned error: %v", err)
	}
	if path == "" {
		t.Error("expected saved path")
	}
}

func TestFetchCoverNotFoundAnywhere(t *testing.T) {
	fetcher, done := newTestFetcher(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		},
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		},
		func(w http.ResponseWriter, r *http.Request) {},
	)
	defer done()

	if _, err := fetcher.FetchCover(context.Background(), "9780306406157", t.TempDir()); err == nil {
		t.Fatal("expected error when no source has the cover")
	}
}

func TestFetchAllSkipsFailures(t *testing.T) {
	fetcher, done := newTestFetcher(
		func(w http.ResponseWriter, r *http.Request) {
			if strings.Contains(r.URL.Path, "9780134190440") {
				w.Write(fakeJPEG)
				return
			}
			w.WriteHeader(http.StatusNotFound)
		},
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		},
		func(w http.ResponseWriter, r *http.Request) {},
	)
	defer done()

	saved, err := fetcher.FetchAll(context.Background(), []string{"9780134190440", "9780306406157"}, t.TempDir())
	if err != nil {
		t.Fatalf("FetchAll returned error: %v", err)
	}
	if len(saved) != 1 {
		t.Fatalf("expected 1 saved cover, got %d", len(saved))
	}
}

func TestFetchAllCreatesOutputDir(t *testing.T) {
	fetcher, done := newTestFetcher(
		func(w http.ResponseWriter, r *http.Request) { w.Write(fakeJPEG) },
		func(w http.ResponseWriter, r *http.Request) {},
		func(w http.ResponseWriter, r *http.Request) {},
	)
	defer done()

	dir := filepath.Join(t.TempDir(), "nested", "covers")
	if _, err := fetcher.FetchAll(context.Background(), []string{"9780134190440"}, dir); err != nil {
		t.Fatalf("FetchAll returned error: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("output directory was not created: %v", err)
	}
}
