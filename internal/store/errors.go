package store

import (
	"errors"
	"fmt"

	"github.com/nao1215/catalogcrawl/internal/model"
)

// ErrNotFound is returned when a stored result does not exist.
var ErrNotFound = errors.New("result not found")

// PersistenceError reports that a result could not be stored after all
// retries.
type PersistenceError struct {
	// Combination is the combination whose result was lost.
	Combination model.Combination

	// Attempts is the number of save attempts made.
	Attempts int

	// Err is the last error returned by the store.
	Err error
}

// Error implements error.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s after %d attempts: %v", e.Combination, e.Attempts, e.Err)
}

// Unwrap returns the last store error.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}
