package examconfig

import "github.com/denken-cbt/backend/internal/domain/question"

// WeightMode selects how the weighting configuration is applied.
type WeightMode string

const (
	// ModeFilter treats SelectedWeights as an allow-list; selection within
	// the eligible pool stays uniform-random.
	ModeFilter WeightMode = "filter"
	// ModeRatio draws questions per weight bucket according to WeightRatios.
	ModeRatio WeightMode = "ratio"
)

// ExamConfig is the process-wide weighting configuration. There is a single
// active instance, loaded at session start and persisted until reset.
type ExamConfig struct {
	WeightingEnabled bool            `json:"weighting_enabled"`
	SelectedWeights  map[int]bool    `json:"selected_weights"`
	WeightRatios     map[int]float64 `json:"weight_ratios"`
	Mode             WeightMode      `json:"mode"`
}

// Default returns the documented defaults: weighting disabled, all
// weights 1-10 selected, empty ratio map, filter mode.
func Default() ExamConfig {
	selected := make(map[int]bool, question.MaxWeight)
	for w := question.MinWeight; w <= question.MaxWeight; w++ {
		selected[w] = true
	}
	return ExamConfig{
		WeightingEnabled: false,
		SelectedWeights:  selected,
		WeightRatios:     map[int]float64{},
		Mode:             ModeFilter,
	}
}

// Normalize drops out-of-range weights and negative ratios and falls back
// to filter mode for unknown mode strings. Ratios need not sum to 100;
// they are normalized against their own sum at selection time.
func (c ExamConfig) Normalize() ExamConfig {
	out := c
	out.SelectedWeights = make(map[int]bool, len(c.SelectedWeights))
	for w, on := range c.SelectedWeights {
		if on && w >= question.MinWeight && w <= question.MaxWeight {
			out.SelectedWeights[w] = true
		}
	}
	out.WeightRatios = make(map[int]float64, len(c.WeightRatios))
	for w, r := range c.WeightRatios {
		if r > 0 && w >= question.MinWeight && w <= question.MaxWeight {
			out.WeightRatios[w] = r
		}
	}
	if out.Mode != ModeFilter && out.Mode != ModeRatio {
		out.Mode = ModeFilter
	}
	return out
}

// WeightAllowed reports whether a question with weight w passes the
// allow-list. Unweighted questions (w == 0) always pass.
func (c ExamConfig) WeightAllowed(w int) bool {
	if w == 0 {
		return true
	}
	return c.SelectedWeights[w]
}
