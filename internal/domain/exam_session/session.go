package examsession

import (
	"sort"
	"time"

	"github.com/denken-cbt/backend/internal/domain/question"
)

// Mode tags the kind of exam attempt a session represents.
type Mode string

const (
	// ModeRandom is an untimed balanced-random full exam. It still carries
	// the nominal 60-minute budget, shrinking to one minute per remaining
	// question after the first answer.
	ModeRandom Mode = "random"
	// ModeTimed is the mock exam with a fixed 60-minute budget.
	ModeTimed Mode = "timed"
	// ModeCategory is the single-category drill; untimed.
	ModeCategory Mode = "category"
	// ModeReview replays questions from the wrong-answer ledger; untimed.
	ModeReview Mode = "review"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeRandom, ModeTimed, ModeCategory, ModeReview:
		return true
	}
	return false
}

// TimeBoxed reports whether sessions in this mode carry a time budget.
func (m Mode) TimeBoxed() bool {
	return m == ModeRandom || m == ModeTimed
}

const (
	// TotalBudget is the fixed full-exam time budget.
	TotalBudget = 60 * time.Minute
	// PerQuestionBudget is the shrunk-budget allowance per unanswered
	// question after a resumed session has at least one answer.
	PerQuestionBudget = time.Minute
)

// Session is the live state of one exam attempt. The question list is fixed
// at creation; the answer map only grows or overwrites entries for ids in
// that list.
type Session struct {
	Questions []question.Question `json:"questions"`
	Answers   map[int]int         `json:"answers"`
	StartedAt time.Time           `json:"started_at"`
	Mode      Mode                `json:"mode"`
	Category  question.Category   `json:"category,omitempty"`
	UserID    string              `json:"user_id,omitempty"`
	// FixedBudget pins the remaining-time computation to the full
	// 60-minute budget. Set for timed mode and by an explicit time reset.
	FixedBudget bool `json:"fixed_budget"`
}

func newSession(questions []question.Question, mode Mode, cat question.Category, userID string, now time.Time) *Session {
	return &Session{
		Questions:   questions,
		Answers:     make(map[int]int),
		StartedAt:   now,
		Mode:        mode,
		Category:    cat,
		UserID:      userID,
		FixedBudget: mode == ModeTimed,
	}
}

// HasQuestion reports whether id belongs to the fixed question list.
func (s *Session) HasQuestion(id int) bool {
	for _, q := range s.Questions {
		if q.ID == id {
			return true
		}
	}
	return false
}

// AnsweredCount returns how many questions have a recorded answer.
func (s *Session) AnsweredCount() int {
	return len(s.Answers)
}

// UnansweredCount returns how many questions have no recorded answer.
func (s *Session) UnansweredCount() int {
	return len(s.Questions) - len(s.Answers)
}

// Elapsed is always wall-clock derived, never a tick count.
func (s *Session) Elapsed(now time.Time) time.Duration {
	return now.Sub(s.StartedAt)
}

// Remaining returns the time left and whether the session is time-boxed at
// all. Before the first answer (or under a fixed budget) the full 60-minute
// budget applies; afterwards the budget shrinks to one minute per remaining
// question, still counted from the original start. Never negative.
func (s *Session) Remaining(now time.Time) (time.Duration, bool) {
	if !s.Mode.TimeBoxed() {
		return 0, false
	}
	budget := TotalBudget
	if !s.FixedBudget && len(s.Answers) > 0 {
		budget = time.Duration(s.UnansweredCount()) * PerQuestionBudget
	}
	rem := budget - s.Elapsed(now)
	if rem < 0 {
		rem = 0
	}
	return rem, true
}

// QuestionIDs returns the sorted id set of the fixed question list.
func (s *Session) QuestionIDs() []int {
	ids := make([]int, len(s.Questions))
	for i, q := range s.Questions {
		ids[i] = q.ID
	}
	sort.Ints(ids)
	return ids
}

// sameQuestionSet compares the session's id set against a freshly selected
// question list, ignoring order.
func (s *Session) sameQuestionSet(questions []question.Question) bool {
	if len(s.Questions) != len(questions) {
		return false
	}
	other := make([]int, len(questions))
	for i, q := range questions {
		other[i] = q.ID
	}
	sort.Ints(other)
	mine := s.QuestionIDs()
	for i := range mine {
		if mine[i] != other[i] {
			return false
		}
	}
	return true
}
