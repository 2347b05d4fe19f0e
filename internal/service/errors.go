package service

import (
	"errors"
	"strings"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
)

// ValidationError carries every field-level message produced while
// validating a request. It matches ErrInvalidInput under errors.Is.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "invalid input: " + strings.Join(e.Messages, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

func newValidationError(msgs ...string) error {
	return &ValidationError{Messages: msgs}
}
