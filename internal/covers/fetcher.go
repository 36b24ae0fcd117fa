// Package covers downloads book cover images for known ISBNs. Useful for
// building test folders and for re-scanning a shelf from catalog data.
package covers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// minImageSize filters out the tiny placeholder images Open Library and
// Google Books return for unknown ISBNs.
const minImageSize = 1000

// Fetcher retrieves book cover images from public sources.
type Fetcher struct {
	OpenLibraryCoversURL string
	GoogleBooksBaseURL   string
	GoogleContentBaseURL string

	httpClient *http.Client
	delay      time.Duration
}

// NewFetcher creates a fetcher. delay is slept between downloads;
// Open Library allows roughly one request per second.
func NewFetcher(delay time.Duration) *Fetcher {
	return &Fetcher{
		OpenLibraryCoversURL: "https://covers.openlibrary.org",
		GoogleBooksBaseURL:   "https://www.googleapis.com",
		GoogleContentBaseURL: "https://books.google.com",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		delay: delay,
	}
}

// FetchCover downloads the cover for one ISBN into outputDir and returns
// the saved path. Open Library is tried first, Google Books second.
func (f *Fetcher) FetchCover(ctx context.Context, isbn, outputDir string) (string, error) {
	outputPath := filepath.Join(outputDir, fmt.Sprintf("%s_cover.jpg", isbn))

	url := fmt.Sprintf("%s/b/isbn/%s-L.jpg", f.OpenLibraryCoversURL, isbn)
	if err := f.downloadImage(ctx, url, outputPath); err == nil {
		slog.Info("Downloaded cover", "isbn", isbn, "source", "open_library", "path", outputPath)
		return outputPath, nil
	} else {
		slog.Debug("Open Library cover unavailable", "isbn", isbn, "error", err)
	}

	f.sleep(ctx)

	volumeID, err := f.googleVolumeID(ctx, isbn)
	if err != nil {
		return "", fmt.Errorf("no cover found for ISBN %s: %w", isbn, err)
	}

	f.sleep(ctx)

	url = fmt.Sprintf("%s/books/content?id=%s&printsec=frontcover&img=1&zoom=1&w=1280", f.GoogleContentBaseURL, volumeID)
	if err := f.downloadImage(ctx, url, outputPath); err != nil {
		return "", fmt.Errorf("no cover found for ISBN %s: %w", isbn, err)
	}

	slog.Info("Downloaded cover", "isbn", isbn, "source", "google_books", "path", outputPath)
	return outputPath, nil
}

// FetchAll downloads covers for every ISBN, sleeping between books.
// Failures are logged and skipped; the successfully saved paths are
// returned.
func (f *Fetcher) FetchAll(ctx context.Context, isbns []string, outputDir string) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var saved []string
	for i, isbn := range isbns {
		if err := ctx.Err(); err != nil {
			return saved, err
		}
		if i > 0 {
			f.sleep(ctx)
		}

		path, err := f.FetchCover(ctx, isbn, outputDir)
		if err != nil {
			slog.Warn("Failed to download cover", "isbn", isbn, "error", err)
			continue
		}
		saved = append(saved, path)
	}
	return saved, nil
}

func (f *Fetcher) googleVolumeID(ctx context.Context, isbn string) (string, error) {
	url := fmt.Sprintf("%s/books/v1/volumes?q=isbn:%s", f.GoogleBooksBaseURL, isbn)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to query Google Books: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("google Books API returned status %d", resp.StatusCode)
	}

	var result struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode Google Books response: %w", err)
	}
	if len(result.Items) == 0 {
		return "", fmt.Errorf("no Google Books volume for ISBN %s", isbn)
	}
	return result.Items[0].ID, nil
}

func (f *Fetcher) downloadImage(ctx context.Context, url, outputPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("image URL returned status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read image data: %w", err)
	}

	if len(imageData) < minImageSize {
		return fmt.Errorf("image too small (likely placeholder), size: %d bytes", len(imageData))
	}

	if err := os.WriteFile(outputPath, imageData, 0644); err != nil {
		return fmt.Errorf("failed to write image file: %w", err)
	}
	return nil
}

func (f *Fetcher) sleep(ctx context.Context) {
	if f.delay <= 0 {
		return
	}
	select {
	case <-time.After(f.delay):
	case <-ctx.Done():
	}
}
