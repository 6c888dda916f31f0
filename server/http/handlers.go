package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/w-h-a/shopchat/embedder"
	"github.com/w-h-a/shopchat/internal/service/chat"
	"github.com/w-h-a/shopchat/session"
	"github.com/w-h-a/shopchat/vectorstore"
)

const maxQuestionLen = 200

type Handler struct {
	service *chat.Service
	sync    bool
}

func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	var req chat.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if len(strings.TrimSpace(req.SessionId)) == 0 {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	if utf8.RuneCountInString(req.Question) > maxQuestionLen {
		writeError(w, http.StatusBadRequest, "question exceeds 200 characters")
		return
	}

	rsp, err := h.service.Respond(r.Context(), req)
	if err != nil {
		status := statusFor(err)
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, rsp)
}

func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	rows, err := decodeRows(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if h.sync {
		summary := h.service.Ingest(r.Context(), rows)
		writeJSON(w, http.StatusOK, summary)
		return
	}

	go func() {
		summary := h.service.Ingest(context.Background(), rows)
		slog.Info("background ingestion finished",
			"filename", header.Filename,
			"ingested", summary.RowsIngested,
			"failed", summary.RowsFailed,
		)
	}()

	writeJSON(w, http.StatusAccepted, map[string]any{
		"filename": header.Filename,
		"message":  "file received, ingestion started",
		"rows":     len(rows),
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.Status(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "degraded",
			"error":  err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"products": count,
	})
}

// statusFor distinguishes malformed input from transient collaborator
// outage for the caller.
func statusFor(err error) int {
	switch {
	case errors.Is(err, chat.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrLockTimeout):
		return http.StatusServiceUnavailable
	case errors.Is(err, embedder.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, vectorstore.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, vectorstore.ErrSchemaMismatch):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"error": detail})
}

func NewHandler(service *chat.Service, syncIngest bool) *Handler {
	if service == nil {
		panic("chat service is required")
	}

	return &Handler{
		service: service,
		sync:    syncIngest,
	}
}
