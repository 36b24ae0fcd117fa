package books

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// googleVolumesResponse is the slice of the Google Books volumes API we
// care about.
type googleVolumesResponse struct {
	TotalItems int `json:"totalItems"`
	Items      []struct {
		VolumeInfo struct {
			Title         string   `json:"title"`
			Authors       []string `json:"authors"`
			Publisher     string   `json:"publisher"`
			PublishedDate string   `json:"publishedDate"`
			Description   string   `json:"description"`
			PageCount     int      `json:"pageCount"`
			Language      string   `json:"language"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

func (c *Client) lookupGoogleBooks(ctx context.Context, isbn string) (*Book, error) {
	url := fmt.Sprintf("%s/books/v1/volumes?q=isbn:%s", c.GoogleBooksBaseURL, isbn)

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("google Books request failed: %w", err)
	}

	var result googleVolumesResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode Google Books response: %w", err)
	}

	if result.TotalItems == 0 || len(result.Items) == 0 {
		return nil, ErrNotFound
	}

	info := result.Items[0].VolumeInfo
	book := &Book{
		ISBN:          isbn,
		Title:         info.Title,
		Authors:       strings.Join(info.Authors, ", "),
		Publisher:     info.Publisher,
		PublishedDate: info.PublishedDate,
		Description:   truncate(info.Description, 500),
		PageCount:     info.PageCount,
		Language:      info.Language,
		Source:        "google_books",
	}

	slog.Debug("Google Books hit", "isbn", isbn, "title", book.Title)
	return book, nil
}
