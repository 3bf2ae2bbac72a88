// Package errors provides standardized error types and helpers for the flowprint codebase.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrEmptyDocument indicates a document with no content streams
	ErrEmptyDocument = errors.New("empty document")
	// ErrNoBodyStream indicates no candidate stream has text inside the requested page range
	ErrNoBodyStream = errors.New("no body stream in range")
	// ErrMalformedInput indicates a top-level malformed input (document or reference list)
	ErrMalformedInput = errors.New("malformed input")
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")
)

// StructuralError represents a fatal precondition failure: the run cannot
// produce a report and must abort. Callers surface it immediately.
type StructuralError struct {
	Stage  string // Stage that failed (e.g., "select-stream", "load-document", "load-references")
	Detail string // Human-readable detail
	Err    error  // Underlying error, if any
}

func (e *StructuralError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("structural error in %s: %s", e.Stage, e.Detail)
	}
	return fmt.Sprintf("structural error in %s", e.Stage)
}

func (e *StructuralError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrMalformedInput
}

// RowError represents a non-fatal per-item failure: one reference record or
// one (stream, block) lookup could not be resolved. Runs collect RowErrors
// and continue.
type RowError struct {
	Row    int    // Zero-based ordinal of the failing item
	Field  string // Field or lookup that failed (e.g., "original", "block_idx")
	Reason string // Human-readable reason
	Err    error  // Underlying error, if any
}

func (e *RowError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("row %d: bad %s: %s", e.Row, e.Field, e.Reason)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// NewStructural creates a StructuralError
func NewStructural(stage, detail string, err error) *StructuralError {
	return &StructuralError{
		Stage:  stage,
		Detail: detail,
		Err:    err,
	}
}

// NewRow creates a RowError
func NewRow(row int, field, reason string) *RowError {
	return &RowError{
		Row:    row,
		Field:  field,
		Reason: reason,
	}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
