package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound — unknown id.
	ErrNotFound = errors.New("not found")
	// ErrForbidden — role or ownership mismatch.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidState — operation not valid for the issue's current status.
	ErrInvalidState = errors.New("invalid state")
)

// ValidationError carries per-field messages for malformed input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %d invalid field(s)", len(e.Fields))
}

func newValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

func (e *ValidationError) add(field, message string) {
	e.Fields[field] = message
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// StoreError wraps a persistence failure. Surfaced as a generic 500; the
// underlying cause never reaches the client.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error in %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}
