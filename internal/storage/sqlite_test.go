package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/sift/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := OpenMigrated(context.Background(), filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func testRun(command string, started time.Time) *model.Run {
	return &model.Run{
		Command:   command,
		Input:     "/data/membres.xlsx",
		Output:    "/data/membres_nettoye.xlsx",
		Status:    model.RunSucceeded,
		Records:   120,
		Matches:   6,
		Removed:   3,
		Duration:  1500 * time.Millisecond,
		StartedAt: started,
	}
}

func TestMigrate(t *testing.T) {
	ctx := context.Background()
	j := createTestJournal(t)

	v, err := j.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, v)

	// Migrating twice is a no-op.
	require.NoError(t, j.Migrate(ctx))

	var tables int
	err = j.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sqlite_master
		WHERE type='table' AND name IN ('runs', 'removals')
	`).Scan(&tables)
	require.NoError(t, err)
	assert.Equal(t, 2, tables)
}

func TestOpen_Memory(t *testing.T) {
	ctx := context.Background()
	j, err := OpenMigrated(ctx, MemoryPath)
	require.NoError(t, err)
	defer func() { _ = j.Close() }()

	require.NoError(t, j.RecordRun(ctx, testRun("dupes check", time.Time{})))
	runs, err := j.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open("  ")
	assert.ErrorIs(t, err, ErrEmptyString)
}

func TestRecordRun(t *testing.T) {
	ctx := context.Background()
	j := createTestJournal(t)
	fixed := time.Date(2025, 12, 3, 14, 7, 8, 0, time.UTC)
	j.now = func() time.Time { return fixed }

	run := testRun("dupes remove", time.Time{})
	require.NoError(t, j.RecordRun(ctx, run))
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, fixed, run.StartedAt)

	got, err := j.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "dupes remove", got.Command)
	assert.Equal(t, model.RunSucceeded, got.Status)
	assert.Equal(t, 1500*time.Millisecond, got.Duration)
	assert.Equal(t, 3, got.Removed)
	assert.True(t, fixed.Equal(got.StartedAt))

	_, err = j.GetRun(ctx, "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestRecordRun_Validation(t *testing.T) {
	ctx := context.Background()
	j := createTestJournal(t)

	tests := []struct {
		name string
		run  *model.Run
		want error
	}{
		{"nil run", nil, ErrNilParameter},
		{"no command", &model.Run{Input: "a.xlsx", Status: model.RunSucceeded}, ErrInvalidRun},
		{"no input", &model.Run{Command: "totals", Status: model.RunSucceeded}, ErrInvalidRun},
		{"bad status", &model.Run{Command: "totals", Input: "a.xlsx", Status: "maybe"}, ErrInvalidRun},
		{"negative count", &model.Run{Command: "totals", Input: "a.xlsx", Status: model.RunFailed, Removed: -1}, ErrInvalidRun},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, j.RecordRun(ctx, tt.run), tt.want)
		})
	}
}

func TestListRuns(t *testing.T) {
	ctx := context.Background()
	j := createTestJournal(t)
	base := time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC)

	for i, cmd := range []string{"dupes check", "nomenclature", "statement"} {
		require.NoError(t, j.RecordRun(ctx, testRun(cmd, base.Add(time.Duration(i)*time.Hour))))
	}

	runs, err := j.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "statement", runs[0].Command)
	assert.Equal(t, "nomenclature", runs[1].Command)
}

func TestRecordRemovals(t *testing.T) {
	ctx := context.Background()
	j := createTestJournal(t)

	run := testRun("dupes remove", time.Time{})
	require.NoError(t, j.RecordRun(ctx, run))

	removals := []model.Removal{
		{KeyValue: "1001", Kept: "3", Dropped: []string{"7", "12"}, Occurrences: 3},
		{KeyValue: "2040", Kept: "5", Dropped: []string{"9"}, Occurrences: 2},
	}
	require.NoError(t, j.RecordRemovals(ctx, run.ID, removals))
	require.NoError(t, j.RecordRemovals(ctx, run.ID, nil))

	got, err := j.Removals(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, removals, got)

	assert.ErrorIs(t, j.RecordRemovals(ctx, "", removals), ErrEmptyString)
}
