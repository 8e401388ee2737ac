// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Input errors. These abort a run before any output is written.
	ErrMissingInput  = errors.New("input not found")
	ErrMissingColumn = errors.New("required column missing")
	ErrInvalidInput  = errors.New("invalid input")

	// Extraction errors.
	ErrNoLayout = errors.New("no column layout detected")
	ErrNoData   = errors.New("no data extracted")

	// Output errors.
	ErrOutputLocked = errors.New("output file is locked")

	// Configuration errors.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// MissingColumnsError reports the absent columns alongside the available ones.
func MissingColumnsError(missing, available []string) error {
	return &UserError{
		UserMessage: fmt.Sprintf("column(s) %q not found; available columns: %q", missing, available),
		Err:         ErrMissingColumn,
	}
}

// IsAbort reports whether the error is of the kind that stops a run without output.
func IsAbort(err error) bool {
	return errors.Is(err, ErrMissingInput) ||
		errors.Is(err, ErrMissingColumn) ||
		errors.Is(err, ErrInvalidInput)
}
