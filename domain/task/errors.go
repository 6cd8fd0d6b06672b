package task

import (
	"errors"
	"strings"
)

// Sentinel errors for task operations. The API layer maps these to HTTP
// status codes; everything else surfaces as a generic server error.
var (
	// ErrNotFound is returned when the requested task does not exist.
	ErrNotFound = errors.New("task not found")

	// ErrAlreadyArchived is returned when archiving an archived task, or
	// when a generic update tries to change the status of one.
	ErrAlreadyArchived = errors.New("task is already archived")

	// ErrNotArchived is returned when restoring a task that is not archived.
	ErrNotArchived = errors.New("task is not archived")

	// ErrStoreUnavailable wraps failures from the underlying task store.
	ErrStoreUnavailable = errors.New("task store unavailable")
)

// ValidationError carries every validation failure found in a request so a
// client sees all problems in one response.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

// NewValidationError builds a ValidationError from one or more messages.
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Messages: messages}
}
