package models

import "time"

// ScanSession is one uploaded cover image and the books recovered from it.
type ScanSession struct {
	ID          string       `json:"id"`
	Filename    string       `json:"filename"`
	ImagePath   string       `json:"image_path"`
	ImageWidth  int          `json:"image_width"`
	ImageHeight int          `json:"image_height"`
	Books       []BookResult `json:"books"`
	CreatedAt   time.Time    `json:"created_at"`
}

// BookResult is one ISBN found in a session image, optionally enriched
// with metadata from the lookup APIs.
type BookResult struct {
	ISBN          string `json:"isbn"`
	Raw           string `json:"raw"`
	Method        string `json:"method"` // "barcode" or "ocr"
	Title         string `json:"title,omitempty"`
	Authors       string `json:"authors,omitempty"`
	Publisher     string `json:"publisher,omitempty"`
	PublishedDate string `json:"published_date,omitempty"`
	PageCount     int    `json:"page_count,omitempty"`
	Language      string `json:"language,omitempty"`
	LookupError   string `json:"lookup_error,omitempty"`
}
