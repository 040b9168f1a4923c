package wronganswer

import (
	"log/slog"
	"math/rand"
	"sort"
	"time"

	"github.com/denken-cbt/backend/internal/domain/question"
)

// RetireStreak is the number of consecutive correct answers after which an
// entry leaves the ledger.
const RetireStreak = 3

// MaxReviewSize caps how many entries a review session may contain.
const MaxReviewSize = 20

// Entry is one row of the mistake ledger. The question is denormalized so
// the entry survives catalog edits.
type Entry struct {
	QuestionID    int               `json:"question_id"`
	Question      question.Question `json:"question"`
	LastChoice    int               `json:"last_choice"`
	LastMissedAt  time.Time         `json:"last_missed_at"`
	WrongCount    int               `json:"wrong_count"`
	CorrectStreak int               `json:"correct_streak"`
}

// Store is the persistence port for the ledger. Implementations treat an
// absent entry as a no-op on Remove.
type Store interface {
	GetAllWrongAnswers() ([]Entry, error)
	UpsertWrongAnswer(Entry) error
	RemoveWrongAnswer(questionID int) error
}

// Tracker maintains the mistake ledger. The in-memory map is authoritative;
// every mutation is written through to the store immediately, and a failed
// write is logged but never fails the mutation.
type Tracker struct {
	store   Store
	logger  *slog.Logger
	clock   func() time.Time
	entries map[int]Entry
}

// NewTracker loads the persisted ledger. A load failure starts an empty
// ledger rather than failing: only durability is lost.
func NewTracker(store Store, logger *slog.Logger) *Tracker {
	t := &Tracker{
		store:   store,
		logger:  logger,
		clock:   time.Now,
		entries: make(map[int]Entry),
	}
	persisted, err := store.GetAllWrongAnswers()
	if err != nil {
		logger.Error("failed to load wrong-answer ledger, starting empty", "error", err)
		return t
	}
	for _, e := range persisted {
		t.entries[e.QuestionID] = e
	}
	return t
}

// SetClock replaces the time source, for tests.
func (t *Tracker) SetClock(clock func() time.Time) {
	t.clock = clock
}

// RecordWrong upserts the ledger entry for a missed question: the wrong
// count grows, the streak resets, and the last choice and timestamp are
// overwritten. Callers must not record unanswered questions as wrong.
func (t *Tracker) RecordWrong(q question.Question, chosen int) {
	e, ok := t.entries[q.ID]
	if !ok {
		e = Entry{QuestionID: q.ID}
	}
	e.Question = q
	e.LastChoice = chosen
	e.LastMissedAt = t.clock()
	e.WrongCount++
	e.CorrectStreak = 0
	t.entries[q.ID] = e

	if err := t.store.UpsertWrongAnswer(e); err != nil {
		t.logger.Error("failed to persist wrong answer", "question_id", q.ID, "error", err)
	}
}

// RecordCorrect advances the streak on an existing entry and retires it at
// RetireStreak. In review mode the entry is removed on the first correct
// answer instead: review sessions only contain questions that were already
// wrong, so there is nothing left to prove. No-op when the question has no
// ledger entry.
func (t *Tracker) RecordCorrect(questionID int, review bool) {
	e, ok := t.entries[questionID]
	if !ok {
		return
	}

	if review {
		t.remove(questionID)
		return
	}

	e.CorrectStreak++
	if e.CorrectStreak >= RetireStreak {
		t.remove(questionID)
		return
	}
	t.entries[questionID] = e
	if err := t.store.UpsertWrongAnswer(e); err != nil {
		t.logger.Error("failed to persist streak update", "question_id", questionID, "error", err)
	}
}

func (t *Tracker) remove(questionID int) {
	delete(t.entries, questionID)
	if err := t.store.RemoveWrongAnswer(questionID); err != nil {
		t.logger.Error("failed to remove ledger entry", "question_id", questionID, "error", err)
	}
}

// Get returns the entry for a question, if any.
func (t *Tracker) Get(questionID int) (Entry, bool) {
	e, ok := t.entries[questionID]
	return e, ok
}

// Len returns the number of ledger entries.
func (t *Tracker) Len() int {
	return len(t.entries)
}

// Eligible returns every entry still due for review, ordered by question id
// for stable listings.
func (t *Tracker) Eligible() []Entry {
	out := make([]Entry, 0, len(t.entries))
	for _, e := range t.entries {
		if e.CorrectStreak < RetireStreak {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionID < out[j].QuestionID })
	return out
}

// PickForReview draws a review set of at most max entries (capped at
// MaxReviewSize). When more are eligible than fit, a uniform-random subset
// is chosen so the same questions do not dominate every review session.
func (t *Tracker) PickForReview(max int, rng *rand.Rand) []Entry {
	if max <= 0 || max > MaxReviewSize {
		max = MaxReviewSize
	}
	eligible := t.Eligible()
	if len(eligible) <= max {
		return eligible
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	rng.Shuffle(len(eligible), func(i, j int) {
		eligible[i], eligible[j] = eligible[j], eligible[i]
	})
	return eligible[:max]
}
