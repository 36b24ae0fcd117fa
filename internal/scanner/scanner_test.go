package scanner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

type fakeExtractor struct {
	detections map[string][]Detection
	errs       map[string]error
}

func (f *fakeExtractor) ExtractISBNs(_ context.Context, path string) ([]Detection, error) {
	base := filepath.Base(path)
	if err, ok := f.errs[base]; ok {
		return nil, err
	}
	return f.detections[base], nil
}

func TestFindImageFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.jpg", "b.PNG", "c.txt", "d.tiff", "e.jpeg"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	sub := filepath.Join(dir, "nested")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "f.gif"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	files, err := FindImageFiles(dir, false)
	if err != nil {
		t.Fatalf("FindImageFiles returned error: %v", err)
	}
	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	expected := []string{"a.jpg", "b.PNG", "d.tiff", "e.jpeg"}
	if !reflect.DeepEqual(names, expected) {
		t.Errorf("non-recursive: got %v, want %v", names, expected)
	}

	files, err = FindImageFiles(dir, true)
	if err != nil {
		t.Fatalf("FindImageFiles recursive returned error: %v", err)
	}
	if len(files) != 5 {
		t.Errorf("recursive: got %d files, want 5", len(files))
	}
}

func TestFindImageFilesMissingFolder(t *testing.T) {
	if _, err := FindImageFiles(filepath.Join(t.TempDir(), "nope"), false); err == nil {
		t.Error("expected error for missing folder")
	}
}

func TestFindImageFilesEmptyFolder(t *testing.T) {
	files, err := FindImageFiles(t.TempDir(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("expected no files, got %v", files)
	}
}

func TestScanFilesDeduplicates(t *testing.T) {
	extractor := &fakeExtractor{
		detections: map[string][]Detection{
			"front.jpg": {{ISBN: "9780306406157", Raw: "9780306406157", Method: "barcode"}},
			"back.jpg":  {{ISBN: "9780306406157", Raw: "0306406152", Method: "ocr"}},
			"other.jpg": {{ISBN: "9780134190440", Raw: "9780134190440", Method: "barcode"}},
		},
	}

	s := New(extractor, 2)
	results, stats, err := s.ScanFiles(context.Background(), []string{"front.jpg", "back.jpg", "other.jpg"})
	if err != nil {
		t.Fatalf("ScanFiles returned error: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 unique ISBNs, got %d", len(results))
	}
	if stats.UniqueISBNs != 2 || stats.ImagesScanned != 3 {
		t.Errorf("unexpected stats: %+v", stats)
	}

	// Results are sorted by ISBN.
	if results[0].ISBN != "9780134190440" || results[1].ISBN != "9780306406157" {
		t.Errorf("unexpected order: %v, %v", results[0].ISBN, results[1].ISBN)
	}

	dup := results[1]
	if !reflect.DeepEqual(dup.SourceFiles, []string{"back.jpg", "front.jpg"}) {
		t.Errorf("unexpected source files: %v", dup.SourceFiles)
	}
	if !reflect.DeepEqual(dup.Methods, []string{"barcode", "ocr"}) {
		t.Errorf("unexpected methods: %v", dup.Methods)
	}
}

func TestScanFilesSoftFailures(t *testing.T) {
	extractor := &fakeExtractor{
		detections: map[string][]Detection{
			"good.jpg":  {{ISBN: "9780306406157", Raw: "9780306406157", Method: "barcode"}},
			"empty.jpg": nil,
		},
		errs: map[string]error{
			"corrupt.jpg": errors.New("failed to decode image"),
		},
	}

	s := New(extractor, 1)
	results, stats, err := s.ScanFiles(context.Background(), []string{"good.jpg", "empty.jpg", "corrupt.jpg"})
	if err != nil {
		t.Fatalf("ScanFiles returned error: %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if stats.ImagesFailed != 1 || stats.ImagesEmpty != 1 || stats.ImagesScanned != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestScanFilesEmptyInput(t *testing.T) {
	s := New(&fakeExtractor{}, 4)
	results, stats, err := s.ScanFiles(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 || stats.UniqueISBNs != 0 {
		t.Errorf("expected empty outcome, got %v %+v", results, stats)
	}
}

func TestScanFilesCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	detections := make(map[string][]Detection)
	var files []string
	for i := 0; i < 20; i++ {
		name := fmt.Sprintf("img%02d.jpg", i)
		detections[name] = []Detection{{ISBN: "9780306406157", Raw: "9780306406157", Method: "barcode"}}
		files = append(files, name)
	}

	s := New(&fakeExtractor{detections: detections}, 2)
	if _, _, err := s.ScanFiles(ctx, files); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNewClampsConcurrency(t *testing.T) {
	s := New(&fakeExtractor{}, 0)
	if s.concurrency != 1 {
		t.Errorf("expected concurrency 1, got %d", s.concurrency)
	}
}
