// Package apperrors holds sentinel errors shared across repositories,
// services, and handlers.
package apperrors

import "errors"

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write violates a uniqueness or foreign
	// key constraint.
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput is returned when a caller-supplied value fails
	// validation before reaching storage.
	ErrInvalidInput = errors.New("invalid input")
)
