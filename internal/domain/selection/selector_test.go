package selection_test

import (
	"math/rand"
	"testing"

	"github.com/denken-cbt/backend/internal/domain/examconfig"
	"github.com/denken-cbt/backend/internal/domain/question"
	"github.com/denken-cbt/backend/internal/domain/selection"
)

// buildCatalog creates n questions per category. Weights cycle through
// weightSet when it is non-empty, otherwise questions stay unweighted.
func buildCatalog(perCategory int, weightSet ...int) []question.Question {
	var catalog []question.Question
	id := 1
	for _, cat := range question.Categories() {
		for i := 0; i < perCategory; i++ {
			w := 0
			if len(weightSet) > 0 {
				w = weightSet[i%len(weightSet)]
			}
			catalog = append(catalog, question.Question{
				ID:       id,
				Category: cat,
				Text:     "Q",
				Options:  []string{"a", "b", "c", "d"},
				Correct:  1,
				Weight:   w,
			})
			id++
		}
	}
	return catalog
}

func newSelector() *selection.Selector {
	return selection.New(rand.New(rand.NewSource(42)))
}

func countByCategory(qs []question.Question) map[question.Category]int {
	counts := make(map[question.Category]int)
	for _, q := range qs {
		counts[q.Category]++
	}
	return counts
}

func assertNoDuplicates(t *testing.T, qs []question.Question) {
	t.Helper()
	seen := make(map[int]bool, len(qs))
	for _, q := range qs {
		if seen[q.ID] {
			t.Fatalf("duplicate question id %d in selection", q.ID)
		}
		seen[q.ID] = true
	}
}

func TestSelectBalanced_CategoryBalance(t *testing.T) {
	catalog := buildCatalog(30)
	got := newSelector().SelectBalanced(catalog, 60, examconfig.Default())

	if len(got) != 60 {
		t.Fatalf("expected 60 questions, got %d", len(got))
	}
	assertNoDuplicates(t, got)

	counts := countByCategory(got)
	for _, cat := range question.Categories() {
		if counts[cat] != 20 {
			t.Errorf("expected 20 questions for %s, got %d", cat, counts[cat])
		}
	}
}

func TestSelectBalanced_NoDuplicatesAcrossRuns(t *testing.T) {
	catalog := buildCatalog(25)
	sel := newSelector()
	for i := 0; i < 20; i++ {
		assertNoDuplicates(t, sel.SelectBalanced(catalog, 60, examconfig.Default()))
	}
}

func TestSelectBalanced_ShortageDegrades(t *testing.T) {
	// Only 5 theory questions; machines and installations have plenty.
	var catalog []question.Question
	id := 1
	add := func(cat question.Category, n int) {
		for i := 0; i < n; i++ {
			catalog = append(catalog, question.Question{
				ID: id, Category: cat, Text: "Q",
				Options: []string{"a", "b", "c", "d"}, Correct: 1,
			})
			id++
		}
	}
	add(question.CategoryTheory, 5)
	add(question.CategoryMachines, 20)
	add(question.CategoryInstallations, 20)

	got := newSelector().SelectBalanced(catalog, 60, examconfig.Default())

	if len(got) != 45 {
		t.Fatalf("expected all 45 available questions, got %d", len(got))
	}
	assertNoDuplicates(t, got)

	counts := countByCategory(got)
	if counts[question.CategoryTheory] != 5 {
		t.Errorf("expected all 5 theory questions, got %d", counts[question.CategoryTheory])
	}
	if counts[question.CategoryMachines] != 20 || counts[question.CategoryInstallations] != 20 {
		t.Errorf("expected full categories untouched by the shortage, got %v", counts)
	}
}

func TestSelectBalanced_BackfillUsesOtherCategories(t *testing.T) {
	var catalog []question.Question
	id := 1
	add := func(cat question.Category, n int) {
		for i := 0; i < n; i++ {
			catalog = append(catalog, question.Question{
				ID: id, Category: cat, Text: "Q",
				Options: []string{"a", "b", "c", "d"}, Correct: 1,
			})
			id++
		}
	}
	add(question.CategoryTheory, 5)
	add(question.CategoryMachines, 40)
	add(question.CategoryInstallations, 40)

	got := newSelector().SelectBalanced(catalog, 60, examconfig.Default())

	// 5 + 20 + 20 from quotas, 15 back-filled from the deep categories.
	if len(got) != 60 {
		t.Fatalf("expected backfill to reach 60, got %d", len(got))
	}
	assertNoDuplicates(t, got)
}

func TestSelectBalanced_EmptyCatalog(t *testing.T) {
	got := newSelector().SelectBalanced(nil, 60, examconfig.Default())
	if len(got) != 0 {
		t.Fatalf("expected empty result for empty catalog, got %d", len(got))
	}
}

func TestSelectBalanced_RandomizedAcrossCalls(t *testing.T) {
	catalog := buildCatalog(40)
	sel := selection.New(nil)

	first := sel.SelectBalanced(catalog, 30, examconfig.Default())
	different := false
	for i := 0; i < 10 && !different; i++ {
		next := sel.SelectBalanced(catalog, 30, examconfig.Default())
		for j := range next {
			if next[j].ID != first[j].ID {
				different = true
				break
			}
		}
	}
	if !different {
		t.Error("expected selection order to vary across calls")
	}
}

func TestSelectBalanced_FilterMode(t *testing.T) {
	catalog := buildCatalog(30, 1, 2, 3)
	cfg := examconfig.Default()
	cfg.WeightingEnabled = true
	cfg.Mode = examconfig.ModeFilter
	cfg.SelectedWeights = map[int]bool{1: true}

	got := newSelector().SelectBalanced(catalog, 30, cfg)

	if len(got) != 30 {
		t.Fatalf("expected 30 questions, got %d", len(got))
	}
	for _, q := range got {
		if q.Weight != 1 && q.Weight != 0 {
			t.Errorf("question %d has weight %d, outside the allow-list", q.ID, q.Weight)
		}
	}
}

func TestSelectBalanced_FilterModeFailsOpen(t *testing.T) {
	// Every question carries weight 5; the allow-list selects only weight 9.
	catalog := buildCatalog(30, 5)
	cfg := examconfig.Default()
	cfg.WeightingEnabled = true
	cfg.Mode = examconfig.ModeFilter
	cfg.SelectedWeights = map[int]bool{9: true}

	got := newSelector().SelectBalanced(catalog, 30, cfg)

	if len(got) != 30 {
		t.Fatalf("expected fail-open selection of 30 questions, got %d", len(got))
	}
}

func TestSelectCategory_RatioShares(t *testing.T) {
	// 40 weight-1 and 40 weight-2 questions in theory.
	var catalog []question.Question
	for i := 0; i < 80; i++ {
		w := 1
		if i >= 40 {
			w = 2
		}
		catalog = append(catalog, question.Question{
			ID: i + 1, Category: question.CategoryTheory, Text: "Q",
			Options: []string{"a", "b", "c", "d"}, Correct: 1, Weight: w,
		})
	}
	cfg := examconfig.Default()
	cfg.WeightingEnabled = true
	cfg.Mode = examconfig.ModeRatio
	cfg.WeightRatios = map[int]float64{1: 75, 2: 25}

	got := newSelector().SelectCategory(catalog, question.CategoryTheory, 20, cfg)

	if len(got) != 20 {
		t.Fatalf("expected 20 questions, got %d", len(got))
	}
	assertNoDuplicates(t, got)

	weightCounts := map[int]int{}
	for _, q := range got {
		weightCounts[q.Weight]++
	}
	if weightCounts[1] != 15 || weightCounts[2] != 5 {
		t.Errorf("expected 15/5 split for 75:25 ratios, got %v", weightCounts)
	}
}

func TestSelectCategory_RatioShortfallRedistributes(t *testing.T) {
	// Only 3 weight-1 questions exist but the ratio asks for 10 of them.
	var catalog []question.Question
	for i := 0; i < 3; i++ {
		catalog = append(catalog, question.Question{
			ID: i + 1, Category: question.CategoryTheory, Text: "Q",
			Options: []string{"a", "b", "c", "d"}, Correct: 1, Weight: 1,
		})
	}
	for i := 0; i < 30; i++ {
		catalog = append(catalog, question.Question{
			ID: i + 100, Category: question.CategoryTheory, Text: "Q",
			Options: []string{"a", "b", "c", "d"}, Correct: 1, Weight: 2,
		})
	}
	cfg := examconfig.Default()
	cfg.WeightingEnabled = true
	cfg.Mode = examconfig.ModeRatio
	cfg.WeightRatios = map[int]float64{1: 50, 2: 50}

	got := newSelector().SelectCategory(catalog, question.CategoryTheory, 20, cfg)

	if len(got) != 20 {
		t.Fatalf("expected shortfall redistribution to fill 20, got %d", len(got))
	}
	assertNoDuplicates(t, got)
}

func TestSelectCategory_RatioEmptySetFailsClosed(t *testing.T) {
	catalog := buildCatalog(30, 5)
	cfg := examconfig.Default()
	cfg.WeightingEnabled = true
	cfg.Mode = examconfig.ModeRatio
	cfg.WeightRatios = map[int]float64{}

	got := newSelector().SelectCategory(catalog, question.CategoryTheory, 10, cfg)

	if len(got) != 0 {
		t.Fatalf("expected zero questions under an empty ratio set, got %d", len(got))
	}
}

func TestSelectCategory_CountAboveAvailable(t *testing.T) {
	catalog := buildCatalog(4)
	got := newSelector().SelectCategory(catalog, question.CategoryMachines, 20, examconfig.Default())

	if len(got) != 4 {
		t.Fatalf("expected all 4 available questions, got %d", len(got))
	}
	for _, q := range got {
		if q.Category != question.CategoryMachines {
			t.Errorf("question %d from wrong category %s", q.ID, q.Category)
		}
	}
}
