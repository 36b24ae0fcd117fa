package books

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// openLibraryResponse is the Open Library Books API response keyed by
// "ISBN:<isbn>".
type openLibraryResponse map[string]struct {
	Details struct {
		Title    string `json:"title"`
		Subtitle string `json:"subtitle"`
		Authors  []struct {
			Name string `json:"name"`
		} `json:"authors"`
		Publishers    []string `json:"publishers"`
		PublishDate   string   `json:"publish_date"`
		Description   any      `json:"description"`
		NumberOfPages int      `json:"number_of_pages"`
		Languages     []struct {
			Key string `json:"key"`
		} `json:"languages"`
	} `json:"details"`
}

func (c *Client) lookupOpenLibrary(ctx context.Context, isbn string) (*Book, error) {
	url := fmt.Sprintf("%s/api/books?bibkeys=ISBN:%s&format=json&jscmd=details", c.OpenLibraryBaseURL, isbn)

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("open Library request failed: %w", err)
	}

	var result openLibraryResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode Open Library response: %w", err)
	}

	entry, ok := result[fmt.Sprintf("ISBN:%s", isbn)]
	if !ok {
		return nil, ErrNotFound
	}

	details := entry.Details
	var authors []string
	for _, a := range details.Authors {
		authors = append(authors, a.Name)
	}
	var language string
	if len(details.Languages) > 0 {
		// Language keys look like "/languages/eng".
		parts := strings.Split(details.Languages[0].Key, "/")
		language = parts[len(parts)-1]
	}

	book := &Book{
		ISBN:          isbn,
		Title:         details.Title,
		Authors:       strings.Join(authors, ", "),
		Publisher:     strings.Join(details.Publishers, ", "),
		PublishedDate: details.PublishDate,
		Description:   truncate(descriptionText(details.Description), 500),
		PageCount:     details.NumberOfPages,
		Language:      language,
		Source:        "open_library",
	}

	slog.Debug("Open Library hit", "isbn", isbn, "title", book.Title)
	return book, nil
}

// descriptionText flattens Open Library's description field, which is
// sometimes a string and sometimes {"type": ..., "value": ...}.
func descriptionText(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case map[string]any:
		if value, ok := v["value"].(string); ok {
			return value
		}
	}
	return ""
}
