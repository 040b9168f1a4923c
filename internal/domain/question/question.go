package question

import (
	"errors"
	"fmt"
)

// Category is one of the fixed top-level subject groupings of the exam.
type Category string

const (
	CategoryTheory        Category = "theory"
	CategoryMachines      Category = "machines"
	CategoryInstallations Category = "installations"
)

// Categories returns the fixed category set in exam order.
func Categories() []Category {
	return []Category{CategoryTheory, CategoryMachines, CategoryInstallations}
}

// Valid reports whether c is one of the fixed categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryTheory, CategoryMachines, CategoryInstallations:
		return true
	}
	return false
}

const (
	// OptionCount is the number of answer options every question carries.
	OptionCount = 4

	// MinWeight and MaxWeight bound the optional difficulty weight.
	MinWeight = 1
	MaxWeight = 10
)

// Question is an immutable catalog entry. Weight 0 means unweighted.
type Question struct {
	ID          int      `json:"id"`
	Category    Category `json:"category"`
	Text        string   `json:"text"`
	Options     []string `json:"options"`
	Correct     int      `json:"correct"` // 1-based option index
	Explanation string   `json:"explanation,omitempty"`
	ImageRef    string   `json:"image_ref,omitempty"`
	Weight      int      `json:"weight,omitempty"`
	Standard    string   `json:"standard,omitempty"`
	SubItem     string   `json:"sub_item,omitempty"`
}

var (
	ErrInvalidID       = errors.New("question id must be a positive integer")
	ErrInvalidCategory = errors.New("question category is not one of the fixed set")
	ErrEmptyText       = errors.New("question text cannot be empty")
	ErrInvalidCorrect  = errors.New("correct option index must be between 1 and 4")
)

// Validate checks the invariants a catalog entry must satisfy.
func (q Question) Validate() error {
	if q.ID <= 0 {
		return ErrInvalidID
	}
	if !q.Category.Valid() {
		return ErrInvalidCategory
	}
	if q.Text == "" {
		return ErrEmptyText
	}
	if len(q.Options) != OptionCount {
		return fmt.Errorf("question %d: expected %d options, got %d", q.ID, OptionCount, len(q.Options))
	}
	for i, opt := range q.Options {
		if opt == "" {
			return fmt.Errorf("question %d: option %d is empty", q.ID, i+1)
		}
	}
	if q.Correct < 1 || q.Correct > OptionCount {
		return ErrInvalidCorrect
	}
	if q.Weight != 0 && (q.Weight < MinWeight || q.Weight > MaxWeight) {
		return fmt.Errorf("question %d: weight %d outside %d-%d", q.ID, q.Weight, MinWeight, MaxWeight)
	}
	return nil
}

// Weighted reports whether the question carries a difficulty weight.
func (q Question) Weighted() bool {
	return q.Weight != 0
}
