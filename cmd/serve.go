package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/shelfscan/internal/books"
	"github.com/lehigh-university-libraries/shelfscan/internal/handlers"
	"github.com/lehigh-university-libraries/shelfscan/internal/imageproc"
	"github.com/lehigh-university-libraries/shelfscan/internal/ocr"
	"github.com/lehigh-university-libraries/shelfscan/internal/scanner"
)

func newServeCmd() *cobra.Command {
	var port string
	var uploadsDir string
	var apiDelay time.Duration
	var provider string
	var model string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the scan API server",
		Long: `Starts an HTTP API that accepts book cover uploads, extracts ISBNs and
looks up metadata. Each upload creates a scan session that can be
listed, fetched and deleted.`,
		Example: `  # Start server on default port 8888
  shelfscan serve

  # Start server on custom port
  shelfscan serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			extractor := scanner.NewImageExtractor(
				imageproc.DefaultOptions(),
				ocr.DefaultTesseractOptions(),
				provider,
				model,
			)
			handler := handlers.New(extractor, books.NewClient(apiDelay), uploadsDir)

			mux := http.NewServeMux()
			mux.HandleFunc("/api/scan", handler.HandleScan)
			mux.HandleFunc("/api/sessions", handler.HandleSessions)
			mux.HandleFunc("/api/sessions/", handler.HandleSessionDetail)
			mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
				if _, err := w.Write([]byte("OK")); err != nil {
					slog.Error("Unable to write healthcheck", "err", err)
				}
			})

			addr := ":" + port
			server := &http.Server{
				Addr:    addr,
				Handler: mux,
			}

			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Scan API available", "addr", addr, "url", "http://localhost"+addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on")
	cmd.Flags().StringVar(&uploadsDir, "uploads-dir", "uploads", "Directory for uploaded images")
	cmd.Flags().DurationVar(&apiDelay, "api-delay", time.Second, "Delay between metadata API calls")
	cmd.Flags().StringVar(&provider, "ocr-provider", "", "OCR provider: tesseract, gemini or ollama (default: tesseract)")
	cmd.Flags().StringVar(&model, "ocr-model", "", "Model name for LLM OCR providers")

	return cmd
}
