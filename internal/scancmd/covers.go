package scancmd

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/shelfscan/internal/covers"
	"github.com/lehigh-university-libraries/shelfscan/internal/isbn"
)

// NewCoversCmd creates the covers command for downloading cover images.
func NewCoversCmd() *cobra.Command {
	var isbnsFile string
	var outputDir string
	var apiDelay time.Duration

	cmd := &cobra.Command{
		Use:   "covers [ISBN...]",
		Short: "Download cover images for ISBNs",
		Long: `Covers downloads a cover image for each ISBN, trying Open Library first
and falling back to Google Books. ISBNs come from the command line, from
a file with one ISBN per line, or both.`,
		Example: `  # Download covers for two books into ./covers
  shelfscan covers 9780306406157 9780134190440

  # Read ISBNs from a file
  shelfscan covers --isbns shelf.txt --output ./covers`,
		RunE: func(cmd *cobra.Command, args []string) error {
			isbns, err := collectISBNs(args, isbnsFile)
			if err != nil {
				return err
			}
			if len(isbns) == 0 {
				return fmt.Errorf("no ISBNs given: pass them as arguments or via --isbns")
			}

			if err := os.MkdirAll(outputDir, 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}

			fetcher := covers.NewFetcher(apiDelay)
			paths, err := fetcher.FetchAll(cmd.Context(), isbns, outputDir)
			if err != nil {
				return err
			}
			slog.Info("Cover download complete", "requested", len(isbns), "downloaded", len(paths))
			return nil
		},
	}

	cmd.Flags().StringVar(&isbnsFile, "isbns", "", "File with one ISBN per line")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "covers", "Directory to save cover images")
	cmd.Flags().DurationVar(&apiDelay, "api-delay", time.Second, "Delay between download requests")
	return cmd
}

// collectISBNs merges arguments and file contents, validating and
// canonicalizing every ISBN to its 13-digit form.
func collectISBNs(args []string, file string) ([]string, error) {
	raw := append([]string{}, args...)

	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("failed to open ISBN file: %w", err)
		}
		defer f.Close()

		s := bufio.NewScanner(f)
		for s.Scan() {
			line := strings.TrimSpace(s.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			raw = append(raw, line)
		}
		if err := s.Err(); err != nil {
			return nil, fmt.Errorf("failed to read ISBN file: %w", err)
		}
	}

	seen := make(map[string]bool)
	isbns := make([]string, 0, len(raw))
	for _, r := range raw {
		normalized := isbn.Normalize(r)
		if !isbn.Valid(normalized) {
			return nil, fmt.Errorf("invalid ISBN: %s", r)
		}
		canonical, err := isbn.ToISBN13(normalized)
		if err != nil {
			return nil, err
		}
		if seen[canonical] {
			continue
		}
		seen[canonical] = true
		isbns = append(isbns, canonical)
	}
	return isbns, nil
}
