// Package books looks up bibliographic metadata for an ISBN. Google Books
// is queried first, Open Library second; both are free, keyless APIs.
package books

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
)

// ErrNotFound is returned when no source knows the ISBN.
var ErrNotFound = errors.New("no book information found")

// Book is the metadata gathered for one ISBN.
type Book struct {
	ISBN          string
	Title         string
	Authors       string
	Publisher     string
	PublishedDate string
	Description   string
	PageCount     int
	Language      string
	Source        string
}

// Client queries public book-lookup APIs with per-call politeness delay
// and retry on transient failures.
type Client struct {
	GoogleBooksBaseURL string
	OpenLibraryBaseURL string

	httpClient *http.Client
	delay      time.Duration
	retryDelay time.Duration
}

// NewClient creates a lookup client. delay is slept before every outbound
// call; public endpoints throttle aggressive clients, so the default
// caller passes 1s.
func NewClient(delay time.Duration) *Client {
	return &Client{
		GoogleBooksBaseURL: "https://www.googleapis.com",
		OpenLibraryBaseURL: "https://openlibrary.org",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		delay:      delay,
		retryDelay: 2 * time.Second,
	}
}

// Lookup fetches metadata for a normalized ISBN. Sources are tried in
// order; ErrNotFound is returned only when every source came up empty.
func (c *Client) Lookup(ctx context.Context, isbn string) (*Book, error) {
	book, err := c.lookupGoogleBooks(ctx, isbn)
	if err == nil {
		return book, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	book, err = c.lookupOpenLibrary(ctx, isbn)
	if err == nil {
		return book, nil
	}
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w for ISBN %s", ErrNotFound, isbn)
	}
	return nil, err
}

// get performs a rate-limited GET with retries on network errors and 5xx
// responses. The caller owns the returned body.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	if c.delay > 0 {
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	var body []byte
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("User-Agent", "shelfscan/0.1")

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode >= 500 {
				return fmt.Errorf("server returned status %d", resp.StatusCode)
			}
			if resp.StatusCode != http.StatusOK {
				return retry.Unrecoverable(fmt.Errorf("unexpected status %d", resp.StatusCode))
			}

			body, err = io.ReadAll(resp.Body)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(c.retryDelay),
	)
	if err != nil {
		return nil, err
	}
	return body, nil
}

// truncate cuts s to at most n runes, appending an ellipsis when cut.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
