// internal/api/handler.go
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/sessions"

	examsession "github.com/denken-cbt/backend/internal/domain/exam_session"
	"github.com/denken-cbt/backend/internal/domain/selection"
	wronganswer "github.com/denken-cbt/backend/internal/domain/wrong_answer"
	"github.com/denken-cbt/backend/internal/service"
	"github.com/denken-cbt/backend/internal/store"
)

// Handler holds all dependencies needed by HTTP handlers.
// Instead of relying on package-level globals, every handler method
// receives its dependencies through this struct.
type Handler struct {
	store    *store.SQLiteStore
	machine  *examsession.Machine
	tracker  *wronganswer.Tracker
	selector *selection.Selector
	syncer   *service.SheetSyncService
	cookies  *sessions.CookieStore
	logger   *slog.Logger

	// The core is a single-threaded state machine; mu serializes the
	// concurrent HTTP requests that drive it.
	mu sync.Mutex
}

// NewHandler creates a Handler with the given dependencies.
func NewHandler(
	s *store.SQLiteStore,
	machine *examsession.Machine,
	tracker *wronganswer.Tracker,
	selector *selection.Selector,
	syncer *service.SheetSyncService,
	cookies *sessions.CookieStore,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		store:    s,
		machine:  machine,
		tracker:  tracker,
		selector: selector,
		syncer:   syncer,
		cookies:  cookies,
		logger:   logger,
	}
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// respondError writes a JSON error body with the given status code.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// decodeJSON decodes the request body into v; on failure it writes a 400
// and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}

// handleStoreError checks for common store errors and writes the appropriate
// HTTP response. Returns true if an error was handled (caller should return).
func (h *Handler) handleStoreError(w http.ResponseWriter, err error, entity string) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, entity+" not found")
		return true
	}
	h.logger.Error("store error", "error", err, "entity", entity)
	respondError(w, http.StatusInternalServerError, "internal error")
	return true
}
