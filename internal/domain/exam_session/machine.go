package examsession

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/denken-cbt/backend/internal/domain/question"
	wronganswer "github.com/denken-cbt/backend/internal/domain/wrong_answer"
)

var (
	// ErrNoSession is returned by operations that need a current session.
	ErrNoSession = errors.New("no current exam session")
	// ErrUnknownQuestion is returned when an answer targets a question
	// outside the session's fixed list.
	ErrUnknownQuestion = errors.New("question is not part of this session")
	// ErrInvalidOption is returned for option indexes outside 1-4.
	ErrInvalidOption = errors.New("option index must be between 1 and 4")
)

// Store is the single-slot persistence port for the current session.
// Absence is a valid "no session" state: GetCurrentSession returns
// (nil, nil) when no session is stored.
type Store interface {
	GetCurrentSession() (*Session, error)
	SaveCurrentSession(*Session) error
	ClearCurrentSession() error
}

// ResultSink receives completed results; write-only from the machine's
// perspective.
type ResultSink interface {
	AppendResult(Result) error
	UpdateAggregate(Result) error
}

// Machine owns the lifecycle of the single current exam session: creation,
// resumption, answer capture, timing, and submission. The in-memory session
// is authoritative; every mutation is written through to the store, and a
// failed write costs durability, never correctness.
type Machine struct {
	store   Store
	tracker *wronganswer.Tracker
	results ResultSink
	logger  *slog.Logger
	clock   func() time.Time
	current *Session
}

// NewMachine restores any persisted session into memory. A load failure is
// logged and treated as "no session".
func NewMachine(store Store, tracker *wronganswer.Tracker, results ResultSink, logger *slog.Logger) *Machine {
	m := &Machine{
		store:   store,
		tracker: tracker,
		results: results,
		logger:  logger,
		clock:   time.Now,
	}
	s, err := store.GetCurrentSession()
	if err != nil {
		logger.Error("failed to restore exam session", "error", err)
		return m
	}
	m.current = s
	return m
}

// SetClock replaces the time source, for tests.
func (m *Machine) SetClock(clock func() time.Time) {
	m.clock = clock
}

// Current returns the live session, or nil when none exists.
func (m *Machine) Current() *Session {
	return m.current
}

// Start begins an attempt over the given questions. If the persisted
// session has the same mode and the exact same question-id set, it is
// resumed instead: with no recorded answers the start time is re-stamped to
// now (the user never actually began), with one or more answers the
// original start time is kept and the shrunk per-question budget applies.
// Any other pre-existing session is discarded.
func (m *Machine) Start(questions []question.Question, mode Mode, cat question.Category, userID string) (*Session, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("unknown exam mode %q", mode)
	}
	now := m.clock()

	if prev := m.current; prev != nil && prev.Mode == mode && prev.sameQuestionSet(questions) {
		if len(prev.Answers) == 0 {
			prev.StartedAt = now
		}
		m.save(prev)
		return prev, nil
	}

	s := newSession(questions, mode, cat, userID, now)
	m.current = s
	m.save(s)
	return s, nil
}

// Answer records the chosen option for a question. Re-answering overwrites.
func (m *Machine) Answer(questionID, option int) error {
	s := m.current
	if s == nil {
		return ErrNoSession
	}
	if option < 1 || option > question.OptionCount {
		return ErrInvalidOption
	}
	if !s.HasQuestion(questionID) {
		return ErrUnknownQuestion
	}
	s.Answers[questionID] = option
	m.save(s)
	return nil
}

// Remaining reports the current time budget; ok is false for untimed modes
// or when no session exists.
func (m *Machine) Remaining() (time.Duration, bool) {
	if m.current == nil {
		return 0, false
	}
	return m.current.Remaining(m.clock())
}

// ResetTime re-anchors the session start to now and restores the fixed
// 60-minute budget. This is a deliberate user action, never automatic.
func (m *Machine) ResetTime() error {
	s := m.current
	if s == nil {
		return ErrNoSession
	}
	s.StartedAt = m.clock()
	s.FixedBudget = true
	m.save(s)
	return nil
}

// Tick drives the one-second timer: when a time-boxed session has run out
// of budget it is force-submitted. This is the machine's only autonomous
// transition. The returned bool reports whether an auto-submit happened.
func (m *Machine) Tick() (Result, bool) {
	s := m.current
	if s == nil {
		return Result{}, false
	}
	rem, boxed := s.Remaining(m.clock())
	if !boxed || rem > 0 {
		return Result{}, false
	}
	r, err := m.Submit(true)
	if err != nil {
		return Result{}, false
	}
	return r, true
}

// Submit grades the session, updates the wrong-answer ledger and the
// statistics aggregate, and clears the current session. Submission is never
// blocked on unanswered questions; callers wanting a confirmation prompt
// use WouldWarnOnSubmit first.
func (m *Machine) Submit(auto bool) (Result, error) {
	s := m.current
	if s == nil {
		return Result{}, ErrNoSession
	}
	now := m.clock()
	r := grade(s, now)
	r.Auto = auto

	review := s.Mode == ModeReview
	for _, q := range s.Questions {
		chosen, ok := s.Answers[q.ID]
		if !ok {
			continue
		}
		if chosen == q.Correct {
			m.tracker.RecordCorrect(q.ID, review)
		} else {
			m.tracker.RecordWrong(q, chosen)
		}
	}

	if err := m.results.AppendResult(r); err != nil {
		m.logger.Error("failed to append exam result", "error", err)
	}
	if err := m.results.UpdateAggregate(r); err != nil {
		m.logger.Error("failed to update statistics aggregate", "error", err)
	}

	m.current = nil
	if err := m.store.ClearCurrentSession(); err != nil {
		m.logger.Error("failed to clear persisted session", "error", err)
	}
	return r, nil
}

// Score is the non-destructive mid-session peek: the same arithmetic as
// Submit, but read-only. It does not touch the wrong-answer ledger, the
// statistics, or the session itself, so repeated calls without intervening
// answers yield identical results.
func (m *Machine) Score() (Result, error) {
	if m.current == nil {
		return Result{}, ErrNoSession
	}
	return grade(m.current, m.clock()), nil
}

// WouldWarnOnSubmit returns how many questions are still unanswered, for
// the caller to decide whether to prompt before submitting. Zero when no
// session exists.
func (m *Machine) WouldWarnOnSubmit() int {
	if m.current == nil {
		return 0
	}
	return m.current.UnansweredCount()
}

// Save persists the current session explicitly, for save-then-exit
// abandonment. The session stays resumable.
func (m *Machine) Save() error {
	if m.current == nil {
		return ErrNoSession
	}
	return m.store.SaveCurrentSession(m.current)
}

// Discard drops the current session without grading it.
func (m *Machine) Discard() error {
	m.current = nil
	return m.store.ClearCurrentSession()
}

// save writes through to the store; failures are logged and absorbed so the
// in-memory session stays authoritative.
func (m *Machine) save(s *Session) {
	if err := m.store.SaveCurrentSession(s); err != nil {
		m.logger.Error("failed to persist exam session", "error", err)
	}
}
