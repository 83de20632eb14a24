package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConflict means the registry blob changed between read and write.
	// Callers retry the whole read-modify-write cycle.
	ErrConflict = errors.New("registry version conflict")

	// ErrRoomNotFound means the registry has no room with the given id.
	ErrRoomNotFound = errors.New("room not found")

	// ErrConfiguration means required credentials or settings are missing.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrUpstream means the durable or document store failed.
	ErrUpstream = errors.New("upstream store error")
)

// ValidationError rejects bad input before any I/O happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
