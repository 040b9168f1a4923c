// internal/api/question_handler.go
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/denken-cbt/backend/internal/domain/question"
	"github.com/denken-cbt/backend/internal/store"
)

// ── Request / Response types ────────────────────────────────────────────────

type QuestionPayload struct {
	ID          int      `json:"id" example:"101"`
	Category    string   `json:"category" example:"theory"`
	Text        string   `json:"text" example:"Which unit measures electrical resistance?"`
	Options     []string `json:"options" example:"Ohm,Volt,Ampere,Watt"`
	Correct     int      `json:"correct" example:"1"`
	Explanation string   `json:"explanation,omitempty"`
	ImageRef    string   `json:"image_ref,omitempty"`
	Weight      int      `json:"weight,omitempty" example:"3"`
	Standard    string   `json:"standard,omitempty"`
	SubItem     string   `json:"sub_item,omitempty"`
}

func (p QuestionPayload) toDomain() question.Question {
	return question.Question{
		ID:          p.ID,
		Category:    question.Category(p.Category),
		Text:        p.Text,
		Options:     p.Options,
		Correct:     p.Correct,
		Explanation: p.Explanation,
		ImageRef:    p.ImageRef,
		Weight:      p.Weight,
		Standard:    p.Standard,
		SubItem:     p.SubItem,
	}
}

func payloadFrom(q question.Question) QuestionPayload {
	return QuestionPayload{
		ID:          q.ID,
		Category:    string(q.Category),
		Text:        q.Text,
		Options:     q.Options,
		Correct:     q.Correct,
		Explanation: q.Explanation,
		ImageRef:    q.ImageRef,
		Weight:      q.Weight,
		Standard:    q.Standard,
		SubItem:     q.SubItem,
	}
}

// ── Handlers ────────────────────────────────────────────────────────────────

// createQuestion adds one question to the catalog.
// @Summary      Add a question
// @Description  Adds a catalog entry. The id must be unique and positive.
// @Tags         Questions
// @Accept       json
// @Produce      json
// @Param        body  body      QuestionPayload  true  "Question to add"
// @Success      201   {object}  QuestionPayload
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string  "id already exists"
// @Router       /questions [post]
func (h *Handler) createQuestion(w http.ResponseWriter, r *http.Request) {
	var req QuestionPayload
	if !decodeJSON(w, r, &req) {
		return
	}

	q := req.toDomain()
	if err := q.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.SaveQuestion(q); err != nil {
		if errors.Is(err, store.ErrDuplicateID) {
			respondError(w, http.StatusConflict, "question id already exists")
			return
		}
		h.logger.Error("failed to save question", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to save question")
		return
	}

	respondJSON(w, http.StatusCreated, payloadFrom(q))
}

// GET /questions?category=theory
func (h *Handler) listQuestions(w http.ResponseWriter, r *http.Request) {
	var (
		questions []question.Question
		err       error
	)
	if cat := r.URL.Query().Get("category"); cat != "" {
		c := question.Category(cat)
		if !c.Valid() {
			respondError(w, http.StatusBadRequest, "unknown category")
			return
		}
		questions, err = h.store.ListQuestionsByCategory(c)
	} else {
		questions, err = h.store.ListQuestions()
	}
	if err != nil {
		h.logger.Error("failed to load questions", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load questions")
		return
	}

	payload := make([]QuestionPayload, len(questions))
	for i, q := range questions {
		payload[i] = payloadFrom(q)
	}
	respondJSON(w, http.StatusOK, payload)
}

// GET /questions/{questionID}
func (h *Handler) getQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("questionID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid question id")
		return
	}

	q, err := h.store.GetQuestion(id)
	if h.handleStoreError(w, err, "question") {
		return
	}
	respondJSON(w, http.StatusOK, payloadFrom(q))
}

// PUT /questions/{questionID}
func (h *Handler) updateQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("questionID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid question id")
		return
	}

	var req QuestionPayload
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = id

	q := req.toDomain()
	if err := q.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if h.handleStoreError(w, h.store.UpdateQuestion(q), "question") {
		return
	}
	respondJSON(w, http.StatusOK, payloadFrom(q))
}

// DELETE /questions/{questionID}
func (h *Handler) deleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("questionID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid question id")
		return
	}

	if h.handleStoreError(w, h.store.DeleteQuestion(id), "question") {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
