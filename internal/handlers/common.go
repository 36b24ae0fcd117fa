package handlers

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"

	"github.com/lehigh-university-libraries/shelfscan/internal/books"
	"github.com/lehigh-university-libraries/shelfscan/internal/models"
	"github.com/lehigh-university-libraries/shelfscan/internal/scanner"
	"github.com/lehigh-university-libraries/shelfscan/internal/storage"
)

// Lookuper fetches metadata for an ISBN.
type Lookuper interface {
	Lookup(ctx context.Context, isbn string) (*books.Book, error)
}

type Handler struct {
	store      *storage.ScanStore
	extractor  scanner.Extractor
	lookup     Lookuper
	uploadsDir string
}

func New(extractor scanner.Extractor, lookup Lookuper, uploadsDir string) *Handler {
	if uploadsDir == "" {
		uploadsDir = "uploads"
	}
	return &Handler{
		store:      storage.New(),
		extractor:  extractor,
		lookup:     lookup,
		uploadsDir: uploadsDir,
	}
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}

func (h *Handler) getSessionOrError(w http.ResponseWriter, sessionID string) (*models.ScanSession, bool) {
	session, exists := h.store.Get(sessionID)
	if !exists {
		h.writeError(w, "Session not found", http.StatusNotFound)
		return nil, false
	}
	return session, true
}

func (h *Handler) ensureUploadsDir() error {
	return os.MkdirAll(h.uploadsDir, 0755)
}

func dataMD5(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}
