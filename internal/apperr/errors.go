package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a module or path id is absent from the catalog.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned for malformed import payloads.
	ErrInvalidInput = errors.New("invalid input")
	// ErrPersistenceUnavailable marks storage failures. It is logged, never
	// surfaced as a blocking failure of an engine operation.
	ErrPersistenceUnavailable = errors.New("persistence unavailable")
)

// NotFoundError identifies the kind and id of a missing catalog entry.
type NotFoundError struct {
	Kind string // "module", "path", "achievement"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %q", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NotFound builds a *NotFoundError.
func NotFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// InvalidInputError wraps the reason an import payload was rejected.
type InvalidInputError struct {
	Err error
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %v", e.Err)
}

func (e *InvalidInputError) Unwrap() []error { return []error{ErrInvalidInput, e.Err} }

// InvalidInput wraps err so that errors.Is(err, ErrInvalidInput) holds.
func InvalidInput(err error) error {
	return &InvalidInputError{Err: err}
}

// PersistenceError wraps a storage failure for a given key.
type PersistenceError struct {
	Op  string // "load", "save", "append", "query", "clear"
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("persistence %s %q: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() []error { return []error{ErrPersistenceUnavailable, e.Err} }
