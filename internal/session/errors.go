package session

import (
	"errors"
	"fmt"
)

var (
	// ErrNotInitialized is returned by Run before Initialize has succeeded.
	ErrNotInitialized = errors.New("session is not initialized for search")

	// ErrAlreadyInitialized is returned by a second Initialize call.
	ErrAlreadyInitialized = errors.New("session is already initialized")

	// ErrTerminated is returned by every operation after Terminate.
	ErrTerminated = errors.New("session has been terminated")

	// ErrSearchForm is reported when the search form shows an error message
	// after submission. The combination is skipped.
	ErrSearchForm = errors.New("search form reported an error")

	// ErrInvalidTransition is returned when the combination state machine is
	// asked to make a move its transition table does not allow.
	ErrInvalidTransition = errors.New("invalid state transition")
)

// InitializationError reports a failure while logging in or discovering the
// filter dimensions. The session cannot be used after it.
type InitializationError struct {
	// Step names the part of initialization that failed.
	Step string

	// Err is the underlying error.
	Err error
}

// Error implements error.
func (e *InitializationError) Error() string {
	return fmt.Sprintf("initialize session: %s: %v", e.Step, e.Err)
}

// Unwrap returns the underlying error.
func (e *InitializationError) Unwrap() error {
	return e.Err
}
