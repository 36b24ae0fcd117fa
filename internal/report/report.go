// Package report writes the scan results as CSV, YAML or Parquet.
package report

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Row is one book in the final report.
type Row struct {
	ISBN          string `yaml:"isbn" parquet:"isbn"`
	Title         string `yaml:"title" parquet:"title"`
	Authors       string `yaml:"authors" parquet:"authors"`
	Publisher     string `yaml:"publisher" parquet:"publisher"`
	PublishedDate string `yaml:"published_date" parquet:"published_date"`
	Description   string `yaml:"description,omitempty" parquet:"description"`
	PageCount     int    `yaml:"page_count" parquet:"page_count"`
	Language      string `yaml:"language" parquet:"language"`
	SourceFiles   string `yaml:"source_files" parquet:"source_files"`
}

// Meta describes the run that produced the rows; it becomes the config
// block of the YAML output and is logged for the other formats.
type Meta struct {
	Folder      string `yaml:"folder"`
	OCRProvider string `yaml:"ocr_provider"`
	Timestamp   string `yaml:"timestamp"`
}

// Format names a supported output encoding.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatYAML    Format = "yaml"
	FormatParquet Format = "parquet"
)

// DetectFormat resolves the output format from an explicit flag value or,
// when the flag is empty, from the output file extension. CSV is the
// default.
func DetectFormat(flagValue, outputPath string) (Format, error) {
	name := flagValue
	if name == "" {
		name = strings.TrimPrefix(strings.ToLower(filepath.Ext(outputPath)), ".")
	}
	switch name {
	case "", "csv":
		return FormatCSV, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "parquet":
		return FormatParquet, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s (supported: csv, yaml, parquet)", name)
	}
}

// Write saves rows to path in the given format.
func Write(path string, format Format, meta Meta, rows []Row) error {
	switch format {
	case FormatCSV:
		return writeCSV(path, rows)
	case FormatYAML:
		return writeYAML(path, meta, rows)
	case FormatParquet:
		return writeParquet(path, rows)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}
