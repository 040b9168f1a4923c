package statistics

import (
	"time"

	examsession "github.com/denken-cbt/backend/internal/domain/exam_session"
)

// Aggregate is the rolling all-time summary, updated once per completed
// session. It is reporting-only: no core algorithm reads it back.
type Aggregate struct {
	Attempts       int                      `json:"attempts"`
	Passes         int                      `json:"passes"`
	TotalQuestions int                      `json:"total_questions"`
	TotalCorrect   int                      `json:"total_correct"`
	TotalWrong     int                      `json:"total_wrong"`
	ByMode         map[examsession.Mode]int `json:"by_mode"`
	LastTakenAt    time.Time                `json:"last_taken_at"`
}

// NewAggregate returns an empty aggregate.
func NewAggregate() Aggregate {
	return Aggregate{ByMode: make(map[examsession.Mode]int)}
}

// Apply folds one completed result into the aggregate.
func (a *Aggregate) Apply(r examsession.Result) {
	if a.ByMode == nil {
		a.ByMode = make(map[examsession.Mode]int)
	}
	a.Attempts++
	if r.Passed {
		a.Passes++
	}
	a.TotalQuestions += r.Total
	a.TotalCorrect += r.Correct
	a.TotalWrong += r.Wrong
	a.ByMode[r.Mode]++
	if r.TakenAt.After(a.LastTakenAt) {
		a.LastTakenAt = r.TakenAt
	}
}

// PassRate returns the all-time pass percentage, 0 when no attempts exist.
func (a Aggregate) PassRate() int {
	if a.Attempts == 0 {
		return 0
	}
	return a.Passes * 100 / a.Attempts
}
