package examconfig_test

import (
	"testing"

	"github.com/denken-cbt/backend/internal/domain/examconfig"
)

func TestDefault(t *testing.T) {
	cfg := examconfig.Default()

	if cfg.WeightingEnabled {
		t.Error("expected weighting disabled by default")
	}
	if cfg.Mode != examconfig.ModeFilter {
		t.Errorf("expected filter mode, got %q", cfg.Mode)
	}
	if len(cfg.WeightRatios) != 0 {
		t.Errorf("expected empty ratio map, got %d entries", len(cfg.WeightRatios))
	}
	for w := 1; w <= 10; w++ {
		if !cfg.SelectedWeights[w] {
			t.Errorf("expected weight %d selected by default", w)
		}
	}
}

func TestNormalize_DropsInvalid(t *testing.T) {
	cfg := examconfig.ExamConfig{
		SelectedWeights: map[int]bool{0: true, 3: true, 11: true, 5: false},
		WeightRatios:    map[int]float64{2: 40, 7: -5, 12: 10},
		Mode:            "something-else",
	}

	n := cfg.Normalize()

	if len(n.SelectedWeights) != 1 || !n.SelectedWeights[3] {
		t.Errorf("expected only weight 3 selected, got %v", n.SelectedWeights)
	}
	if len(n.WeightRatios) != 1 || n.WeightRatios[2] != 40 {
		t.Errorf("expected only ratio for weight 2, got %v", n.WeightRatios)
	}
	if n.Mode != examconfig.ModeFilter {
		t.Errorf("expected fallback to filter mode, got %q", n.Mode)
	}
}

func TestWeightAllowed(t *testing.T) {
	cfg := examconfig.ExamConfig{SelectedWeights: map[int]bool{4: true}}

	if !cfg.WeightAllowed(0) {
		t.Error("unweighted questions must always pass the allow-list")
	}
	if !cfg.WeightAllowed(4) {
		t.Error("weight 4 is selected and should pass")
	}
	if cfg.WeightAllowed(5) {
		t.Error("weight 5 is not selected and should not pass")
	}
}
