package store

import "errors"

var (
	ErrNotFound = errors.New("not found")
	// ErrDuplicateID is returned when adding a question whose id is taken.
	ErrDuplicateID = errors.New("question id already exists")
)
