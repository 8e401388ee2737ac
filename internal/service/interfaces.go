// Package service defines the interfaces shared between the commands and
// their backing services.
package service

import (
	"context"

	"github.com/Veraticus/sift/internal/model"
)

// Journal is the run history the commands report into.
type Journal interface {
	RecordRun(ctx context.Context, run *model.Run) error
	RecordRemovals(ctx context.Context, runID string, removals []model.Removal) error
	ListRuns(ctx context.Context, limit int) ([]model.Run, error)
	Close() error
}

// NopJournal discards everything. It stands in when no journal is configured.
type NopJournal struct{}

// RecordRun implements Journal.
func (NopJournal) RecordRun(context.Context, *model.Run) error { return nil }

// RecordRemovals implements Journal.
func (NopJournal) RecordRemovals(context.Context, string, []model.Removal) error { return nil }

// ListRuns implements Journal.
func (NopJournal) ListRuns(context.Context, int) ([]model.Run, error) { return nil, nil }

// Close implements Journal.
func (NopJournal) Close() error { return nil }
