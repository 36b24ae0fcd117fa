package scancmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/shelfscan/internal/books"
	"github.com/lehigh-university-libraries/shelfscan/internal/isbn"
	"github.com/lehigh-university-libraries/shelfscan/internal/report"
)

// NewLookupCmd creates the lookup command for enriching known ISBNs.
func NewLookupCmd() *cobra.Command {
	var output string
	var format string
	var apiDelay time.Duration

	cmd := &cobra.Command{
		Use:   "lookup ISBN [ISBN...]",
		Short: "Look up book metadata for one or more ISBNs",
		Args:  cobra.MinimumNArgs(1),
		Example: `  # Print metadata for two books as CSV
  shelfscan lookup 9780306406157 0306406152

  # Save to a file instead
  shelfscan lookup 9780306406157 -o books.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := books.NewClient(apiDelay)
			rows := make([]report.Row, 0, len(args))

			for _, arg := range args {
				normalized := isbn.Normalize(arg)
				if !isbn.Valid(normalized) {
					return fmt.Errorf("invalid ISBN: %s", arg)
				}
				canonical, err := isbn.ToISBN13(normalized)
				if err != nil {
					return err
				}

				book, err := client.Lookup(cmd.Context(), canonical)
				if err != nil {
					slog.Warn("No information found", "isbn", canonical, "error", err)
					rows = append(rows, missRow(report.Row{ISBN: canonical}))
					continue
				}
				rows = append(rows, report.Row{
					ISBN:          canonical,
					Title:         book.Title,
					Authors:       book.Authors,
					Publisher:     book.Publisher,
					PublishedDate: book.PublishedDate,
					Description:   book.Description,
					PageCount:     book.PageCount,
					Language:      book.Language,
				})
			}

			if output == "" {
				return report.WriteCSVTo(os.Stdout, rows)
			}
			outputFormat, err := report.DetectFormat(format, output)
			if err != nil {
				return err
			}
			meta := report.Meta{
				Timestamp: time.Now().Format("2006-01-02_15-04-05"),
			}
			return report.Write(output, outputFormat, meta, rows)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: CSV to stdout)")
	cmd.Flags().StringVar(&format, "format", "", "Output format: csv, yaml or parquet")
	cmd.Flags().DurationVar(&apiDelay, "api-delay", time.Second, "Delay between metadata API calls")
	return cmd
}
