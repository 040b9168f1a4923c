// internal/api/review_handler.go
package api

import (
	"net/http"
	"time"
)

type ReviewEntry struct {
	QuestionID    int             `json:"question_id"`
	Question      QuestionPayload `json:"question"`
	LastChoice    int             `json:"last_choice"`
	LastMissedAt  time.Time       `json:"last_missed_at"`
	WrongCount    int             `json:"wrong_count"`
	CorrectStreak int             `json:"correct_streak"`
}

// listReview returns every ledger entry still due for retry.
// @Summary      List wrong-answer ledger
// @Description  Entries leave the ledger after three consecutive correct
// @Description  answers, or after one correct answer inside a review exam.
// @Tags         Review
// @Produce      json
// @Success      200  {array}  ReviewEntry
// @Router       /review [get]
func (h *Handler) listReview(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	eligible := h.tracker.Eligible()
	entries := make([]ReviewEntry, len(eligible))
	for i, e := range eligible {
		entries[i] = ReviewEntry{
			QuestionID:    e.QuestionID,
			Question:      payloadFrom(e.Question),
			LastChoice:    e.LastChoice,
			LastMissedAt:  e.LastMissedAt,
			WrongCount:    e.WrongCount,
			CorrectStreak: e.CorrectStreak,
		}
	}
	respondJSON(w, http.StatusOK, entries)
}
