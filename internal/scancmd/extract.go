package scancmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/shelfscan/internal/imageproc"
	"github.com/lehigh-university-libraries/shelfscan/internal/ocr"
	"github.com/lehigh-university-libraries/shelfscan/internal/scanner"
)

// NewExtractCmd creates the extract command. It runs the image pipeline
// without the metadata lookup step.
func NewExtractCmd() *cobra.Command {
	var folder string
	var recursive bool
	var concurrency int
	var provider string
	var model string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract ISBNs from book cover images without looking up metadata",
		Example: `  # List ISBNs found in a folder of cover photos
  shelfscan extract --folder ./covers

  # Include subfolders
  shelfscan extract --folder ./covers --recursive`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				slog.SetLogLoggerLevel(slog.LevelDebug)
			}

			files, err := scanner.FindImageFiles(folder, recursive)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				slog.Warn("No image files found in the specified folder", "folder", folder)
				return nil
			}

			extractor := scanner.NewImageExtractor(
				imageproc.DefaultOptions(),
				ocr.DefaultTesseractOptions(),
				provider,
				model,
			)
			results, stats, err := scanner.New(extractor, concurrency).ScanFiles(cmd.Context(), files)
			if err != nil {
				return err
			}

			for _, result := range results {
				fmt.Printf("%s\t%s\t%s\n",
					result.ISBN,
					strings.Join(result.Methods, ","),
					strings.Join(result.SourceFiles, ", "))
			}
			slog.Info("Extraction complete",
				"images", len(files),
				"failed", stats.ImagesFailed,
				"isbns", stats.UniqueISBNs)
			return nil
		},
	}

	cmd.Flags().StringVar(&folder, "folder", "", "Folder containing book cover images (required)")
	cmd.Flags().BoolVar(&recursive, "recursive", false, "Scan subfolders too")
	cmd.Flags().IntVar(&concurrency, "concurrency", 2, "Number of images processed in parallel")
	cmd.Flags().StringVar(&provider, "ocr-provider", "", "OCR provider: tesseract, gemini or ollama (default: tesseract)")
	cmd.Flags().StringVar(&model, "ocr-model", "", "Model name for LLM OCR providers")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Verbose logging")

	_ = cmd.MarkFlagRequired("folder")
	return cmd
}
