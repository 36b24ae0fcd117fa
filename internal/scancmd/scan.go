// Package scancmd implements the shelfscan subcommands.
package scancmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/shelfscan/internal/books"
	"github.com/lehigh-university-libraries/shelfscan/internal/imageproc"
	"github.com/lehigh-university-libraries/shelfscan/internal/ocr"
	"github.com/lehigh-university-libraries/shelfscan/internal/report"
	"github.com/lehigh-university-libraries/shelfscan/internal/scanner"
)

// NewScanCmd creates the scan command, the full image-to-report pipeline.
func NewScanCmd() *cobra.Command {
	var folder string
	var output string
	var format string
	var recursive bool
	var apiDelay time.Duration
	var concurrency int
	var skipLookup bool
	var provider string
	var model string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan a folder of book cover images and build a metadata report",
		Long: `Scan walks a folder of book cover photos, recovers ISBNs from each image,
and writes a report with book metadata.

Each image is tried against the EAN-13 barcode first; covers without a
readable barcode are preprocessed (resize, grayscale, denoise, deskew,
binarize) and run through OCR, and ISBNs are pulled out of the recognized
text. Checksums are validated, ISBN-10s are folded into their ISBN-13
form, and duplicates across images collapse into one report row.

Metadata comes from the Google Books API with Open Library as fallback.
Calls are spaced out by --api-delay to stay polite to both services.`,
		Example: `  # Scan a folder of cover photos into book_information.csv
  shelfscan scan --folder ./covers

  # Slower API cadence, YAML output
  shelfscan scan --folder ./covers --output books.yaml --api-delay 2s

  # ISBNs only, no network
  shelfscan scan --folder ./covers --skip-lookup

  # OCR through a local vision model instead of Tesseract
  shelfscan scan --folder ./covers --ocr-provider ollama`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				slog.SetLogLoggerLevel(slog.LevelDebug)
			}
			return executeScan(cmd.Context(), scanConfig{
				folder:      folder,
				output:      output,
				format:      format,
				recursive:   recursive,
				apiDelay:    apiDelay,
				concurrency: concurrency,
				skipLookup:  skipLookup,
				provider:    provider,
				model:       model,
			})
		},
	}

	cmd.Flags().StringVar(&folder, "folder", "", "Folder containing book cover images (required)")
	cmd.Flags().StringVarP(&output, "output", "o", "book_information.csv", "Output report file")
	cmd.Flags().StringVar(&format, "format", "", "Output format: csv, yaml or parquet (default: inferred from output extension)")
	cmd.Flags().BoolVar(&recursive, "recursive", false, "Scan subfolders too")
	cmd.Flags().DurationVar(&apiDelay, "api-delay", time.Second, "Delay between metadata API calls")
	cmd.Flags().IntVar(&concurrency, "concurrency", 2, "Number of images processed in parallel")
	cmd.Flags().BoolVar(&skipLookup, "skip-lookup", false, "Skip metadata lookup, report ISBNs only")
	cmd.Flags().StringVar(&provider, "ocr-provider", "", "OCR provider: tesseract, gemini or ollama (default: tesseract)")
	cmd.Flags().StringVar(&model, "ocr-model", "", "Model name for LLM OCR providers (defaults to provider's default)")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Verbose logging")

	_ = cmd.MarkFlagRequired("folder")
	return cmd
}

type scanConfig struct {
	folder      string
	output      string
	format      string
	recursive   bool
	apiDelay    time.Duration
	concurrency int
	skipLookup  bool
	provider    string
	model       string
}

func executeScan(ctx context.Context, cfg scanConfig) error {
	outputFormat, err := report.DetectFormat(cfg.format, cfg.output)
	if err != nil {
		return err
	}

	slog.Info("Starting scan", "folder", cfg.folder, "output", cfg.output, "format", outputFormat)

	files, err := scanner.FindImageFiles(cfg.folder, cfg.recursive)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		slog.Warn("No image files found in the specified folder", "folder", cfg.folder)
		return nil
	}

	extractor := scanner.NewImageExtractor(
		imageproc.DefaultOptions(),
		ocr.DefaultTesseractOptions(),
		cfg.provider,
		cfg.model,
	)
	results, stats, err := scanner.New(extractor, cfg.concurrency).ScanFiles(ctx, files)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			return fmt.Errorf("scan aborted: %w", err)
		}
		slog.Warn("Scan interrupted, writing partial results")
	}
	if len(results) == 0 {
		slog.Warn("No ISBNs found in any images")
		return nil
	}

	var client lookuper
	if !cfg.skipLookup {
		client = books.NewClient(cfg.apiDelay)
	}
	rows, lookupMisses := buildRows(ctx, client, results)

	meta := report.Meta{
		Folder:      cfg.folder,
		OCRProvider: ocr.ResolveProvider(cfg.provider),
		Timestamp:   time.Now().Format("2006-01-02_15-04-05"),
	}
	if err := report.Write(cfg.output, outputFormat, meta, rows); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	printScanSummary(stats, lookupMisses, cfg.output)
	return nil
}

type lookuper interface {
	Lookup(ctx context.Context, isbn string) (*books.Book, error)
}

// buildRows turns scan results into report rows, enriching each ISBN when
// a lookup client is given. Lookup misses still produce a row so the
// report accounts for every ISBN found on the shelf.
func buildRows(ctx context.Context, client lookuper, results []scanner.Result) ([]report.Row, int) {
	rows := make([]report.Row, 0, len(results))
	misses := 0

	for _, result := range results {
		row := report.Row{
			ISBN:        result.ISBN,
			SourceFiles: strings.Join(result.SourceFiles, ", "),
		}

		// Once the context is cancelled, remaining rows keep their
		// ISBNs but skip the lookup.
		if client == nil || ctx.Err() != nil {
			rows = append(rows, row)
			continue
		}

		slog.Info("Retrieving book information", "isbn", result.ISBN)
		book, err := client.Lookup(ctx, result.ISBN)
		if err != nil {
			if !errors.Is(err, books.ErrNotFound) {
				slog.Warn("Lookup failed", "isbn", result.ISBN, "error", err)
			}
			misses++
			rows = append(rows, missRow(row))
			continue
		}

		row.Title = book.Title
		row.Authors = book.Authors
		row.Publisher = book.Publisher
		row.PublishedDate = book.PublishedDate
		row.Description = book.Description
		row.PageCount = book.PageCount
		row.Language = book.Language
		rows = append(rows, row)
	}

	return rows, misses
}

// missRow fills the placeholder values for an ISBN no API knows about.
// PageCount stays zero; it is a numeric column.
func missRow(row report.Row) report.Row {
	row.Title = "Information not found"
	row.Authors = "Unknown"
	row.Publisher = "Unknown"
	row.PublishedDate = "Unknown"
	return row
}

func printScanSummary(stats scanner.Stats, lookupMisses int, output string) {
	fmt.Println("\n========================================")
	fmt.Println("Scan Summary")
	fmt.Println("========================================")
	fmt.Printf("Images with ISBNs:  %d\n", stats.ImagesScanned)
	fmt.Printf("Images without:     %d\n", stats.ImagesEmpty)
	fmt.Printf("Images failed:      %d\n", stats.ImagesFailed)
	fmt.Printf("Unique ISBNs:       %d\n", stats.UniqueISBNs)
	if lookupMisses > 0 {
		fmt.Printf("Lookup misses:      %d\n", lookupMisses)
	}
	fmt.Println("========================================")
	fmt.Printf("\nResults saved to: %s\n", output)
}
