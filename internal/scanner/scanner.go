// Package scanner walks a folder of book cover images and recovers the
// unique set of ISBNs printed on them.
package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
)

// Result is one unique book found across the scanned images.
type Result struct {
	ISBN        string   // canonical ISBN-13
	Raw         string   // identifier as first seen
	Methods     []string // extraction methods that found it, sorted
	SourceFiles []string // base names of images it appeared in, sorted
}

// Stats summarizes a folder scan.
type Stats struct {
	ImagesScanned int
	ImagesFailed  int
	ImagesEmpty   int
	UniqueISBNs   int
}

// Scanner runs extraction over many images with bounded concurrency.
type Scanner struct {
	extractor   Extractor
	concurrency int
}

// New creates a Scanner. concurrency below 1 is treated as 1.
func New(extractor Extractor, concurrency int) *Scanner {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Scanner{extractor: extractor, concurrency: concurrency}
}

type fileOutcome struct {
	path       string
	detections []Detection
	err        error
}

// ScanFiles extracts ISBNs from the given image files and deduplicates
// across them. Per-image failures are logged and counted, never fatal;
// the scan stops early only when ctx is cancelled.
func (s *Scanner) ScanFiles(ctx context.Context, files []string) ([]Result, Stats, error) {
	if len(files) == 0 {
		return nil, Stats{}, nil
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, s.concurrency)
	outcomes := make(chan fileOutcome, len(files))

	for i, path := range files {
		wg.Add(1)
		go func(idx int, path string) {
			defer wg.Done()
			semaphore <- struct{}{}        // Acquire
			defer func() { <-semaphore }() // Release

			if ctx.Err() != nil {
				outcomes <- fileOutcome{path: path, err: ctx.Err()}
				return
			}

			slog.Info("Processing image", "file", filepath.Base(path), "progress", fmt.Sprintf("%d/%d", idx+1, len(files)))
			detections, err := s.extractor.ExtractISBNs(ctx, path)
			outcomes <- fileOutcome{path: path, detections: detections, err: err}
		}(i, path)
	}

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	stats := Stats{}
	merged := make(map[string]*Result)
	for outcome := range outcomes {
		base := filepath.Base(outcome.path)
		switch {
		case outcome.err != nil:
			stats.ImagesFailed++
			slog.Warn("Failed to process image", "file", base, "error", outcome.err)
		case len(outcome.detections) == 0:
			stats.ImagesEmpty++
			slog.Warn("No ISBN found in image", "file", base)
		default:
			stats.ImagesScanned++
			for _, d := range outcome.detections {
				mergeDetection(merged, d, base)
			}
		}
	}

	results := make([]Result, 0, len(merged))
	for _, r := range merged {
		sort.Strings(r.SourceFiles)
		sort.Strings(r.Methods)
		results = append(results, *r)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ISBN < results[j].ISBN })
	stats.UniqueISBNs = len(results)

	// On cancellation return what was gathered so far alongside the
	// error, so callers can still write a partial report.
	if err := ctx.Err(); err != nil {
		return results, stats, err
	}

	slog.Info("Scan complete", "unique_isbns", stats.UniqueISBNs,
		"images_with_isbns", stats.ImagesScanned, "images_empty", stats.ImagesEmpty, "images_failed", stats.ImagesFailed)
	return results, stats, nil
}

func mergeDetection(merged map[string]*Result, d Detection, sourceFile string) {
	r, ok := merged[d.ISBN]
	if !ok {
		merged[d.ISBN] = &Result{
			ISBN:        d.ISBN,
			Raw:         d.Raw,
			Methods:     []string{d.Method},
			SourceFiles: []string{sourceFile},
		}
		return
	}
	if !contains(r.SourceFiles, sourceFile) {
		r.SourceFiles = append(r.SourceFiles, sourceFile)
	}
	if !contains(r.Methods, d.Method) {
		r.Methods = append(r.Methods, d.Method)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
