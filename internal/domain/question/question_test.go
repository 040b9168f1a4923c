package question_test

import (
	"testing"

	"github.com/denken-cbt/backend/internal/domain/question"
)

func validQuestion() question.Question {
	return question.Question{
		ID:       1,
		Category: question.CategoryTheory,
		Text:     "What is Ohm's law?",
		Options:  []string{"V = IR", "P = VI", "Q = CV", "F = ma"},
		Correct:  1,
	}
}

func TestValidate_OK(t *testing.T) {
	if err := validQuestion().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Rejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*question.Question)
	}{
		{"zero id", func(q *question.Question) { q.ID = 0 }},
		{"negative id", func(q *question.Question) { q.ID = -3 }},
		{"unknown category", func(q *question.Question) { q.Category = "law" }},
		{"empty text", func(q *question.Question) { q.Text = "" }},
		{"three options", func(q *question.Question) { q.Options = q.Options[:3] }},
		{"empty option", func(q *question.Question) { q.Options[2] = "" }},
		{"correct zero", func(q *question.Question) { q.Correct = 0 }},
		{"correct five", func(q *question.Question) { q.Correct = 5 }},
		{"weight eleven", func(q *question.Question) { q.Weight = 11 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := validQuestion()
			tc.mutate(&q)
			if err := q.Validate(); err == nil {
				t.Errorf("expected error for %s, got nil", tc.name)
			}
		})
	}
}

func TestValidate_WeightZeroMeansUnweighted(t *testing.T) {
	q := validQuestion()
	q.Weight = 0

	if err := q.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Weighted() {
		t.Error("expected weight 0 to mean unweighted")
	}

	q.Weight = 7
	if !q.Weighted() {
		t.Error("expected weight 7 to mean weighted")
	}
}

func TestCategories_Fixed(t *testing.T) {
	cats := question.Categories()
	if len(cats) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(cats))
	}
	for _, c := range cats {
		if !c.Valid() {
			t.Errorf("category %q should be valid", c)
		}
	}
}
