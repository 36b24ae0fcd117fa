package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
)

var csvHeader = []string{
	"isbn", "title", "authors", "publisher", "published_date",
	"description", "page_count", "language", "source_files",
}

func writeCSV(path string, rows []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer f.Close()

	if err := WriteCSVTo(f, rows); err != nil {
		return err
	}

	slog.Info("Saved CSV report", "path", path, "rows", len(rows))
	return nil
}

// WriteCSVTo streams rows as CSV, header first. Exposed separately so the
// lookup command can write to stdout.
func WriteCSVTo(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.ISBN,
			row.Title,
			row.Authors,
			row.Publisher,
			row.PublishedDate,
			row.Description,
			strconv.Itoa(row.PageCount),
			row.Language,
			row.SourceFiles,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
