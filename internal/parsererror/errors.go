// Package parsererror defines the error taxonomy shared by extraction, ingest and storage.
package parsererror

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyBatch is returned when a commit is attempted with no drafts.
	ErrEmptyBatch = errors.New("no transactions provided")

	// ErrNotFound is returned when an update targets a row that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when a unique key (e.g. a category name) is already taken.
	ErrAlreadyExists = errors.New("already exists")
)

// ParseError represents a field that a pattern captured but could not convert.
// Extraction absorbs these through its documented fallbacks; they are only logged.
type ParseError struct {
	Pattern string
	Field   string
	Value   string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: failed to parse %s='%s': %v", e.Pattern, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError is an input problem reported before anything is persisted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
}

// RowError ties an error to a zero-based row of a preview or upload.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// CommitError reports a batch commit that was rolled back. Nothing from the batch was written.
type CommitError struct {
	Rows int
	Err  error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("batch of %d transactions rolled back: %v", e.Rows, e.Err)
}

func (e *CommitError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is, or wraps, a ValidationError or ErrEmptyBatch.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve) || errors.Is(err, ErrEmptyBatch)
}
