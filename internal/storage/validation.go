// Package storage keeps the optional SQLite journal of pipeline runs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/sift/internal/model"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrNilParameter = errors.New("parameter cannot be nil")
	ErrInvalidRun   = errors.New("invalid run")
	ErrRunNotFound  = errors.New("run not found")
)

func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateRun(run *model.Run) error {
	if run == nil {
		return fmt.Errorf("%w: run", ErrNilParameter)
	}
	if strings.TrimSpace(run.Command) == "" {
		return fmt.Errorf("%w: command is required", ErrInvalidRun)
	}
	if strings.TrimSpace(run.Input) == "" {
		return fmt.Errorf("%w: input is required", ErrInvalidRun)
	}
	switch run.Status {
	case model.RunSucceeded, model.RunFailed:
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidRun, run.Status)
	}
	if run.Records < 0 || run.Matches < 0 || run.Removed < 0 {
		return fmt.Errorf("%w: counts cannot be negative", ErrInvalidRun)
	}
	return nil
}
