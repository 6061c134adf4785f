package models

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a reference to an unknown group or user.
	ErrNotFound = errors.New("not found")

	// ErrLockTimeout indicates the per-group write lock could not be
	// acquired within the bounded wait. The operation is retryable.
	ErrLockTimeout = errors.New("group ledger is busy, retry")

	// ErrOverflow indicates an amount or accumulated balance exceeds the
	// representable range. The operation fails rather than truncating.
	ErrOverflow = errors.New("amount overflows minor-unit range")
)

// ValidationError is a malformed or constraint-violating input.
// It is always raised before any mutation; no partial state is left behind.
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string {
	return e.Detail
}

// Invalid builds a ValidationError with a formatted detail string.
func Invalid(format string, args ...any) error {
	return &ValidationError{Detail: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
