package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/sift/internal/cli"
	"github.com/Veraticus/sift/internal/common"
	"github.com/Veraticus/sift/internal/config"
	"github.com/Veraticus/sift/internal/extract"
	"github.com/Veraticus/sift/internal/model"
	"github.com/Veraticus/sift/internal/service"
	"github.com/Veraticus/sift/internal/storage"
	"github.com/Veraticus/sift/internal/workbook"
)

// openJournal returns the configured journal. A journal that cannot be
// opened is reported and replaced by a no-op one.
func openJournal(ctx context.Context, s *config.Settings) service.Journal {
	if s == nil || s.Journal.Path == "" {
		return service.NopJournal{}
	}
	j, err := storage.OpenMigrated(ctx, s.Journal.Path)
	if err != nil {
		slog.Warn("Journal unavailable, run not recorded", "path", s.Journal.Path, "error", err)
		return service.NopJournal{}
	}
	return j
}

// runRecord tracks one command run for the journal.
type runRecord struct {
	journal service.Journal
	run     model.Run
	started time.Time
}

func startRun(journal service.Journal, command, input string) *runRecord {
	now := time.Now()
	return &runRecord{
		journal: journal,
		started: now,
		run:     model.Run{Command: command, Input: input, StartedAt: now},
	}
}

// finish stores the run. Journal failures are only logged.
func (r *runRecord) finish(ctx context.Context, err error, removals []model.Removal) {
	r.run.Duration = time.Since(r.started)
	r.run.Status = model.RunSucceeded
	if err != nil {
		r.run.Status = model.RunFailed
		r.run.Message = err.Error()
	}

	if recErr := r.journal.RecordRun(ctx, &r.run); recErr != nil {
		slog.Warn("Failed to record run", "command", r.run.Command, "error", recErr)
		return
	}
	if recErr := r.journal.RecordRemovals(ctx, r.run.ID, removals); recErr != nil {
		slog.Warn("Failed to record removals", "run", r.run.ID, "error", recErr)
	}
}

// guardOutput refuses to write over the input file.
func guardOutput(input, output string) error {
	in, err := filepath.Abs(input)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", input, err)
	}
	out, err := filepath.Abs(output)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", output, err)
	}
	if in == out {
		return common.NewUserError(fmt.Sprintf("output %q would overwrite the input file", output), common.ErrInvalidInput)
	}
	return nil
}

// save writes book to path, or to the alternate name when path is locked.
// It returns the file actually written.
func save(path string, book workbook.Book, style workbook.Style) (string, error) {
	target := workbook.ResolveTarget(path)
	if err := workbook.Save(target, book, style); err != nil {
		return "", err
	}
	return target, nil
}

// progressFor returns a page progress bar, or nil when there is nothing to show.
func progressFor(w io.Writer, total int, description string) extract.Progress {
	if bar := cli.NewProgress(w, total, description); bar != nil {
		return bar
	}
	return nil
}

// recordRows renders records as table rows over columns.
func recordRows(records []model.Record, columns []string) [][]string {
	rows := make([][]string, len(records))
	for i, r := range records {
		row := make([]string, len(columns))
		for j, c := range columns {
			row[j] = r.Get(c).String()
		}
		rows[i] = row
	}
	return rows
}

// presentColumns keeps the wanted columns the dataset has, in order.
func presentColumns(ds *model.Dataset, wanted []string) []string {
	var out []string
	for _, c := range wanted {
		if ds.HasColumn(c) {
			out = append(out, c)
		}
	}
	return out
}

func joinLines(records []model.Record) string {
	lines := make([]string, len(records))
	for i, r := range records {
		lines[i] = fmt.Sprint(r.Line)
	}
	return strings.Join(lines, ", ")
}

func printf(w io.Writer, format string, args ...any) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		slog.Warn("Failed to write output", "error", err)
	}
}

func printLine(w io.Writer, s string) {
	printf(w, "%s\n", s)
}
