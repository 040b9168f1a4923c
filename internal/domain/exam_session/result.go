package examsession

import (
	"math"
	"time"

	"github.com/denken-cbt/backend/internal/domain/question"
)

// PassThreshold is the minimum score (percent) considered a pass.
const PassThreshold = 60

// Result is the outcome of grading one exam attempt.
type Result struct {
	Mode       Mode              `json:"mode"`
	Category   question.Category `json:"category,omitempty"`
	UserID     string            `json:"user_id,omitempty"`
	Total      int               `json:"total"`
	Correct    int               `json:"correct"`
	Wrong      int               `json:"wrong"`
	Unanswered int               `json:"unanswered"`
	Score      int               `json:"score"`
	Passed     bool              `json:"passed"`
	Auto       bool              `json:"auto"`
	TakenAt    time.Time         `json:"taken_at"`

	// Missed holds the questions answered incorrectly, for review display.
	Missed []question.Question `json:"missed,omitempty"`
}

// grade computes a Result from the session without mutating anything.
// In review mode the denominator is the answered count only: a user who
// answers 5 of 20 due-for-review questions is scored out of 5.
func grade(s *Session, now time.Time) Result {
	r := Result{
		Mode:     s.Mode,
		Category: s.Category,
		UserID:   s.UserID,
		TakenAt:  now,
	}
	for _, q := range s.Questions {
		chosen, ok := s.Answers[q.ID]
		switch {
		case !ok:
			r.Unanswered++
		case chosen == q.Correct:
			r.Correct++
		default:
			r.Wrong++
			r.Missed = append(r.Missed, q)
		}
	}

	r.Total = len(s.Questions)
	if s.Mode == ModeReview {
		r.Total = r.Correct + r.Wrong
	}
	r.Score = percentage(r.Correct, r.Total)
	r.Passed = r.Score >= PassThreshold
	return r
}

func percentage(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}
