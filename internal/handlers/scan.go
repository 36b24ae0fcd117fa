package handlers

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/lehigh-university-libraries/shelfscan/internal/books"
)

const maxUploadSize = 32 << 20 // 32MB

// HandleScan accepts a multipart image upload, extracts ISBNs from it
// and, unless lookup=false is passed, enriches them with metadata. The
// result is stored as a session and returned as JSON.
func (h *Handler) HandleScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.writeError(w, "Failed to parse upload: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		h.writeError(w, "image file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	fileData, err := io.ReadAll(file)
	if err != nil {
		h.writeError(w, "Failed to read upload: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.ensureUploadsDir(); err != nil {
		h.writeError(w, "Failed to prepare uploads directory: "+err.Error(), http.StatusInternalServerError)
		return
	}

	imageFilename := dataMD5(fileData) + filepath.Ext(header.Filename)
	imagePath := filepath.Join(h.uploadsDir, imageFilename)
	if err := os.WriteFile(imagePath, fileData, 0644); err != nil {
		h.writeError(w, "Failed to save image: "+err.Error(), http.StatusInternalServerError)
		return
	}
	slog.Info("Image saved", "filename", imageFilename, "size", len(fileData))

	width, height := imageDimensions(imagePath)

	detections, err := h.extractor.ExtractISBNs(r.Context(), imagePath)
	if err != nil {
		h.writeError(w, "Failed to scan image: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	doLookup := true
	if v := r.FormValue("lookup"); v != "" {
		doLookup, _ = strconv.ParseBool(v)
	}

	session := h.createScanSession(header.Filename, imagePath, width, height)
	for _, d := range detections {
		result := bookResult(d.ISBN, d.Raw, d.Method)
		if doLookup {
			book, err := h.lookup.Lookup(r.Context(), d.ISBN)
			switch {
			case err == nil:
				result.Title = book.Title
				result.Authors = book.Authors
				result.Publisher = book.Publisher
				result.PublishedDate = book.PublishedDate
				result.PageCount = book.PageCount
				result.Language = book.Language
			case errors.Is(err, books.ErrNotFound):
				result.LookupError = "no book information found"
			default:
				result.LookupError = err.Error()
			}
		}
		session.Books = append(session.Books, result)
	}

	h.store.Set(session.ID, session)
	slog.Info("Scan session created", "session_id", session.ID, "books", len(session.Books))

	w.WriteHeader(http.StatusCreated)
	h.writeJSON(w, session)
}

func imageDimensions(path string) (int, int) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		slog.Warn("Failed to get image dimensions", "error", err)
		return 0, 0
	}
	return cfg.Width, cfg.Height
}

func sessionID(filename string) string {
	return fmt.Sprintf("%s_%d", filename, time.Now().UnixNano())
}
