package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/sift/internal/model"
	"github.com/google/uuid"
)

// DefaultListLimit bounds ListRuns when no limit is given.
const DefaultListLimit = 20

// RecordRun stores a run. A run without an ID gets a new one, and a run
// without a start time is stamped with the current time.
func (j *Journal) RecordRun(ctx context.Context, run *model.Run) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRun(run); err != nil {
		return err
	}

	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = j.now()
	}

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO runs (
			id, command, input, output, status, message,
			records, matches, removed, duration_ms, started_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Command,
		run.Input,
		run.Output,
		string(run.Status),
		run.Message,
		run.Records,
		run.Matches,
		run.Removed,
		run.Duration.Milliseconds(),
		run.StartedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// RecordRemovals stores the audit trail of a run in one transaction.
func (j *Journal) RecordRemovals(ctx context.Context, runID string, removals []model.Removal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(runID, "runID"); err != nil {
		return err
	}
	if len(removals) == 0 {
		return nil
	}

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO removals (run_id, key_value, kept, dropped, occurrences)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range removals {
		dropped, marshalErr := json.Marshal(r.Dropped)
		if marshalErr != nil {
			return fmt.Errorf("failed to encode dropped rows: %w", marshalErr)
		}
		if _, err := stmt.ExecContext(ctx, runID, r.KeyValue, r.Kept, string(dropped), r.Occurrences); err != nil {
			return fmt.Errorf("failed to record removal: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit removals: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs first.
func (j *Journal) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT id, command, input, output, status, message,
			records, matches, removed, duration_ms, started_at
		FROM runs
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun returns a single run by ID.
func (j *Journal) GetRun(ctx context.Context, id string) (*model.Run, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := j.db.QueryRowContext(ctx, `
		SELECT id, command, input, output, status, message,
			records, matches, removed, duration_ms, started_at
		FROM runs
		WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// Removals returns the audit trail of a run in insertion order.
func (j *Journal) Removals(ctx context.Context, runID string) ([]model.Removal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT key_value, kept, dropped, occurrences
		FROM removals
		WHERE run_id = ?
		ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query removals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var removals []model.Removal
	for rows.Next() {
		var (
			r       model.Removal
			key     sql.NullString
			dropped string
		)
		if err := rows.Scan(&key, &r.Kept, &dropped, &r.Occurrences); err != nil {
			return nil, fmt.Errorf("failed to scan removal: %w", err)
		}
		r.KeyValue = key.String
		if err := json.Unmarshal([]byte(dropped), &r.Dropped); err != nil {
			slog.Warn("Failed to parse dropped rows", "error", err, "run", runID)
		}
		removals = append(removals, r)
	}
	return removals, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (model.Run, error) {
	var (
		run      model.Run
		output   sql.NullString
		message  sql.NullString
		status   string
		duration int64
	)
	err := s.Scan(
		&run.ID,
		&run.Command,
		&run.Input,
		&output,
		&status,
		&message,
		&run.Records,
		&run.Matches,
		&run.Removed,
		&duration,
		&run.StartedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Run{}, err
		}
		return model.Run{}, fmt.Errorf("failed to scan run: %w", err)
	}

	run.Output = output.String
	run.Message = message.String
	run.Status = model.RunStatus(status)
	run.Duration = time.Duration(duration) * time.Millisecond
	return run, nil
}
