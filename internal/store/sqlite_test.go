package store_test

import (
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	examsession "github.com/denken-cbt/backend/internal/domain/exam_session"
	"github.com/denken-cbt/backend/internal/domain/question"
	wronganswer "github.com/denken-cbt/backend/internal/domain/wrong_answer"
	"github.com/denken-cbt/backend/internal/store"
)

func newStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"), slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleQuestion(id int) question.Question {
	return question.Question{
		ID:       id,
		Category: question.CategoryTheory,
		Text:     "What unit measures resistance?",
		Options:  []string{"Ohm", "Volt", "Ampere", "Watt"},
		Correct:  1,
		Weight:   3,
	}
}

func TestQuestionCRUD(t *testing.T) {
	s := newStore(t)

	q := sampleQuestion(1)
	if err := s.SaveQuestion(q); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := s.SaveQuestion(q); !errors.Is(err, store.ErrDuplicateID) {
		t.Errorf("expected ErrDuplicateID on re-insert, got %v", err)
	}

	got, err := s.GetQuestion(1)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Text != q.Text || len(got.Options) != 4 || got.Weight != 3 {
		t.Errorf("round-trip mismatch: %+v", got)
	}

	got.Text = "Updated"
	if err := s.UpdateQuestion(got); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	got, _ = s.GetQuestion(1)
	if got.Text != "Updated" {
		t.Errorf("expected updated text, got %q", got.Text)
	}

	if err := s.DeleteQuestion(1); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := s.GetQuestion(1); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.DeleteQuestion(1); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing id, got %v", err)
	}
}

func TestListQuestionsByCategory(t *testing.T) {
	s := newStore(t)

	for i := 1; i <= 6; i++ {
		q := sampleQuestion(i)
		if i%2 == 0 {
			q.Category = question.CategoryMachines
		}
		if err := s.SaveQuestion(q); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	machines, err := s.ListQuestionsByCategory(question.CategoryMachines)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(machines) != 3 {
		t.Errorf("expected 3 machines questions, got %d", len(machines))
	}

	all, err := s.ListQuestions()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 6 {
		t.Errorf("expected 6 questions, got %d", len(all))
	}
}

func TestExamConfig_DefaultsWhenAbsent(t *testing.T) {
	s := newStore(t)

	cfg, err := s.GetExamConfig()
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if cfg.WeightingEnabled {
		t.Error("expected default config with weighting disabled")
	}

	cfg.WeightingEnabled = true
	cfg.WeightRatios = map[int]float64{3: 60, 7: 40}
	if err := s.SaveExamConfig(cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, _ := s.GetExamConfig()
	if !got.WeightingEnabled || got.WeightRatios[3] != 60 {
		t.Errorf("round-trip mismatch: %+v", got)
	}

	if err := s.ResetExamConfig(); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	got, _ = s.GetExamConfig()
	if got.WeightingEnabled {
		t.Error("expected defaults after reset")
	}
}

func TestCurrentSession_SingleSlot(t *testing.T) {
	s := newStore(t)

	// Absence is a valid no-session state.
	sess, err := s.GetCurrentSession()
	if err != nil || sess != nil {
		t.Fatalf("expected (nil, nil) for empty slot, got (%v, %v)", sess, err)
	}

	first := &examsession.Session{
		Questions: []question.Question{sampleQuestion(1), sampleQuestion(2)},
		Answers:   map[int]int{1: 3},
		StartedAt: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
		Mode:      examsession.ModeRandom,
	}
	if err := s.SaveCurrentSession(first); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	// Overwriting keeps a single slot.
	second := &examsession.Session{
		Questions: []question.Question{sampleQuestion(5)},
		Answers:   map[int]int{},
		StartedAt: time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC),
		Mode:      examsession.ModeTimed,
	}
	if err := s.SaveCurrentSession(second); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}

	got, err := s.GetCurrentSession()
	if err != nil || got == nil {
		t.Fatalf("get failed: (%v, %v)", got, err)
	}
	if got.Mode != examsession.ModeTimed || len(got.Questions) != 1 {
		t.Errorf("expected the second session in the slot, got %+v", got)
	}

	if err := s.ClearCurrentSession(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	got, _ = s.GetCurrentSession()
	if got != nil {
		t.Error("expected empty slot after clear")
	}
}

func TestWrongAnswerLedgerRoundTrip(t *testing.T) {
	s := newStore(t)

	e := wronganswer.Entry{
		QuestionID:    4,
		Question:      sampleQuestion(4),
		LastChoice:    2,
		LastMissedAt:  time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
		WrongCount:    2,
		CorrectStreak: 1,
	}
	if err := s.UpsertWrongAnswer(e); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	e.WrongCount = 3
	if err := s.UpsertWrongAnswer(e); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	entries, err := s.GetAllWrongAnswers()
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(entries) != 1 || entries[0].WrongCount != 3 {
		t.Errorf("expected single upserted entry with count 3, got %+v", entries)
	}

	if err := s.RemoveWrongAnswer(4); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	entries, _ = s.GetAllWrongAnswers()
	if len(entries) != 0 {
		t.Error("expected empty ledger after remove")
	}
}

func TestResultsAndAggregate(t *testing.T) {
	s := newStore(t)

	r := examsession.Result{
		Mode: examsession.ModeTimed, Total: 60, Correct: 45, Wrong: 10,
		Unanswered: 5, Score: 75, Passed: true,
		TakenAt: time.Date(2026, 5, 3, 14, 0, 0, 0, time.UTC),
	}
	if err := s.AppendResult(r); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if err := s.UpdateAggregate(r); err != nil {
		t.Fatalf("aggregate failed: %v", err)
	}

	results, err := s.ListResults(10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(results) != 1 || results[0].Score != 75 || !results[0].Passed {
		t.Errorf("unexpected results: %+v", results)
	}

	agg, err := s.GetAggregate()
	if err != nil {
		t.Fatalf("get aggregate failed: %v", err)
	}
	if agg.Attempts != 1 || agg.Passes != 1 || agg.TotalCorrect != 45 {
		t.Errorf("unexpected aggregate: %+v", agg)
	}
}
