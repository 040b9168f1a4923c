// internal/api/export_handler.go
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/denken-cbt/backend/internal/store"
)

// ── Request / Response types ────────────────────────────────────────────────

// ExportData is the bulk row format shared with the spreadsheet surface.
type ExportData struct {
	Version    string            `json:"version"`
	ExportedAt string            `json:"exported_at"`
	Questions  []QuestionPayload `json:"questions"`
}

type ImportResult struct {
	QuestionsCreated int      `json:"questions_created"`
	QuestionsSkipped int      `json:"questions_skipped"`
	Errors           []string `json:"errors,omitempty"`
}

// ── Handlers ────────────────────────────────────────────────────────────────

// GET /export/questions
func (h *Handler) exportQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.store.ListQuestions()
	if err != nil {
		h.logger.Error("failed to load catalog for export", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load catalog")
		return
	}

	data := ExportData{
		Version:    "1.0",
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Questions:  make([]QuestionPayload, len(questions)),
	}
	for i, q := range questions {
		data.Questions[i] = payloadFrom(q)
	}

	// Best-effort mirror to the spreadsheet API; the response never waits.
	h.syncer.PushQuestions(questions)

	respondJSON(w, http.StatusOK, data)
}

// POST /import/questions
func (h *Handler) importQuestions(w http.ResponseWriter, r *http.Request) {
	var data ExportData
	if !decodeJSON(w, r, &data) {
		return
	}

	result := ImportResult{}
	for _, row := range data.Questions {
		q := row.toDomain()
		if err := q.Validate(); err != nil {
			result.QuestionsSkipped++
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		if err := h.store.SaveQuestion(q); err != nil {
			result.QuestionsSkipped++
			if errors.Is(err, store.ErrDuplicateID) {
				result.Errors = append(result.Errors, "duplicate id")
			} else {
				h.logger.Error("failed to import question", "question_id", q.ID, "error", err)
				result.Errors = append(result.Errors, "storage error")
			}
			continue
		}
		result.QuestionsCreated++
	}

	respondJSON(w, http.StatusOK, result)
}
