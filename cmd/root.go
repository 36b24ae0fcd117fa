package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/shelfscan/internal/scancmd"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shelfscan",
		Short: "Recover ISBNs from book cover photos and build metadata reports",
		Long: `Shelfscan turns a folder of book cover photos into a book inventory.

It reads EAN-13 barcodes, falls back to OCR for covers without a usable
barcode, validates and deduplicates the recovered ISBNs, and enriches
them with metadata from Google Books and Open Library.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	// Add subcommands
	cmd.AddCommand(scancmd.NewScanCmd())
	cmd.AddCommand(scancmd.NewExtractCmd())
	cmd.AddCommand(scancmd.NewLookupCmd())
	cmd.AddCommand(scancmd.NewCoversCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}
