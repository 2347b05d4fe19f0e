package repository

import "errors"

var (
	// ErrNotFound is returned when no record matches the identifier (and owner,
	// when one is given). Identifiers the backend cannot parse are reported the
	// same way.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a write violates a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate record")
)
