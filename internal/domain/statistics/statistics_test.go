package statistics_test

import (
	"testing"
	"time"

	examsession "github.com/denken-cbt/backend/internal/domain/exam_session"
	"github.com/denken-cbt/backend/internal/domain/statistics"
)

func TestApply(t *testing.T) {
	agg := statistics.NewAggregate()
	taken := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

	agg.Apply(examsession.Result{
		Mode: examsession.ModeRandom, Total: 60, Correct: 60,
		Score: 100, Passed: true, TakenAt: taken,
	})
	agg.Apply(examsession.Result{
		Mode: examsession.ModeTimed, Total: 60, Correct: 20, Wrong: 40,
		Score: 33, Passed: false, TakenAt: taken.Add(time.Hour),
	})

	if agg.Attempts != 2 || agg.Passes != 1 {
		t.Errorf("expected 2 attempts and 1 pass, got %d/%d", agg.Attempts, agg.Passes)
	}
	if agg.TotalCorrect != 80 || agg.TotalWrong != 40 {
		t.Errorf("expected 80 correct / 40 wrong, got %d/%d", agg.TotalCorrect, agg.TotalWrong)
	}
	if agg.ByMode[examsession.ModeRandom] != 1 || agg.ByMode[examsession.ModeTimed] != 1 {
		t.Errorf("unexpected per-mode counts: %v", agg.ByMode)
	}
	if agg.PassRate() != 50 {
		t.Errorf("expected 50%% pass rate, got %d", agg.PassRate())
	}
	if !agg.LastTakenAt.Equal(taken.Add(time.Hour)) {
		t.Error("expected last-taken timestamp to advance")
	}
}

func TestPassRate_NoAttempts(t *testing.T) {
	agg := statistics.NewAggregate()
	if agg.PassRate() != 0 {
		t.Errorf("expected 0 pass rate with no attempts, got %d", agg.PassRate())
	}
}
