package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/shelfscan/internal/models"
)

func (h *Handler) HandleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		sessions := h.store.GetAll()
		sessionList := make([]*models.ScanSession, 0, len(sessions))
		for _, session := range sessions {
			sessionList = append(sessionList, session)
		}
		h.writeJSON(w, sessionList)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) HandleSessionDetail(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/sessions/")

	session, ok := h.getSessionOrError(w, id)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.writeJSON(w, session)
	case http.MethodDelete:
		h.store.Delete(id)
		w.WriteHeader(http.StatusNoContent)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) createScanSession(filename, imagePath string, width, height int) *models.ScanSession {
	return &models.ScanSession{
		ID:          sessionID(filename),
		Filename:    filename,
		ImagePath:   imagePath,
		ImageWidth:  width,
		ImageHeight: height,
		Books:       []models.BookResult{},
		CreatedAt:   time.Now(),
	}
}

func bookResult(isbn, raw, method string) models.BookResult {
	return models.BookResult{ISBN: isbn, Raw: raw, Method: method}
}
