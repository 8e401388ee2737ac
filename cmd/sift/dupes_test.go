package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/sift/internal/common"
	"github.com/Veraticus/sift/internal/config"
	"github.com/Veraticus/sift/internal/dedupe"
	"github.com/Veraticus/sift/internal/model"
	"github.com/Veraticus/sift/internal/workbook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckDuplicates(t *testing.T) {
	input := filepath.Join(t.TempDir(), "adherents.xlsx")
	writeBook(t, input, fixtureSheet{"Sheet1", [][]any{
		{"MATRICULE", "NOM"},
		{"A1", "Dupont"},
		{"A2", "Martin"},
		{"A1", "Dupont"},
		{nil, "Durand"},
		{nil, "Petit"},
	}})

	var out bytes.Buffer
	res, err := checkDuplicates(&out, checkOptions{
		Input:   input,
		Column:  "MATRICULE",
		Policy:  dedupe.ExcludeAny,
		Display: []string{"NOM", "PRENOM"},
	})
	require.NoError(t, err)

	assert.Equal(t, 5, res.Records)
	assert.Equal(t, 2, res.Missing)
	require.Len(t, res.Groups, 1)
	assert.Equal(t, 2, res.Duplicates)
	assert.Contains(t, out.String(), "2, 4")

	assert.Equal(t, workbook.Derive(input, "_doublons"), res.Output)
	export, err := workbook.Read(res.Output, workbook.ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"MATRICULE", dedupe.OccurrenceColumn, dedupe.LineColumn, "NOM"}, export.Columns)
	require.Len(t, export.Records, 2)
	assert.Equal(t, model.Number(2), export.Records[0].Get(dedupe.LineColumn))
	assert.Equal(t, model.Number(4), export.Records[1].Get(dedupe.LineColumn))
	assert.Equal(t, model.Number(2), export.Records[1].Get(dedupe.OccurrenceColumn))
}

func TestCheckDuplicates_NoDuplicate(t *testing.T) {
	input := filepath.Join(t.TempDir(), "adherents.xlsx")
	writeBook(t, input, fixtureSheet{"Sheet1", [][]any{
		{"MATRICULE"},
		{"A1"},
		{"A2"},
	}})

	var out bytes.Buffer
	res, err := checkDuplicates(&out, checkOptions{Input: input, Column: "MATRICULE", Policy: dedupe.ExcludeAny})
	require.NoError(t, err)
	assert.Empty(t, res.Groups)
	assert.Empty(t, res.Output)
	assert.Contains(t, out.String(), "No duplicate found")
	assert.NoFileExists(t, workbook.Derive(input, "_doublons"))
}

func TestCheckDuplicates_InputErrors(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "adherents.xlsx")
	writeBook(t, input, fixtureSheet{"Sheet1", [][]any{{"NOM"}, {"Dupont"}}})

	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"missing file", filepath.Join(dir, "absent.xlsx"), common.ErrMissingInput},
		{"missing column", input, common.ErrMissingColumn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := checkDuplicates(&bytes.Buffer{}, checkOptions{Input: tt.input, Column: "MATRICULE", Policy: dedupe.ExcludeAny})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want))
			assert.NoFileExists(t, workbook.Derive(tt.input, "_doublons"))
		})
	}
}

func TestPartialDuplicates(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "precomptes.xlsx")
	writeBook(t, input, fixtureSheet{"Sheet1", [][]any{
		{"ID", "NOM", "MT"},
		{1, "A", 10},
		{1, "A", 10},
		{2, "B", 20},
		{2, "C", 20},
		{3, "D", 30},
	}})

	var out bytes.Buffer
	res, err := partialDuplicates(&out, input, "", config.KeySettings{
		Full:    []string{"ID", "NOM", "MT"},
		Partial: []string{"ID", "MT"},
		Policy:  dedupe.AsEmpty,
	})
	require.NoError(t, err)

	assert.Equal(t, 5, res.Records)
	assert.Equal(t, 2, res.Full)
	assert.Equal(t, 4, res.Partial)
	assert.Equal(t, 2, res.Only)
	assert.Equal(t, 1, res.Unique())

	require.Len(t, res.Outputs, 3)
	for _, name := range []string{fullMatchesFile, partialOnlyFile, partialMatchesFile} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	only, err := workbook.Read(filepath.Join(dir, partialOnlyFile), workbook.ReadOptions{})
	require.NoError(t, err)
	require.Len(t, only.Records, 2)
	assert.Equal(t, model.Text("B"), only.Records[0].Get("NOM"))
	assert.Equal(t, model.Text("C"), only.Records[1].Get("NOM"))
}

func TestRemoveDuplicates(t *testing.T) {
	input := filepath.Join(t.TempDir(), "adherents.xlsx")
	writeBook(t, input, fixtureSheet{"Sheet1", [][]any{
		{"MATRICULE", "NOM", "MENSUALITE"},
		{"M1", "A", 100},
		{"M1", "A", 100},
		{"M2", "B", 200},
		{"M2", "C", 200},
		{"M3", "D", 300},
	}})

	var out bytes.Buffer
	res, err := removeDuplicates(&out, input, "", config.MembersSettings{
		Column:      "MATRICULE",
		IDColumn:    "ORDRE",
		AuditColumn: "DOUBLONS_SUPPRIMES",
	})
	require.NoError(t, err)

	assert.True(t, res.CreatedID)
	assert.Equal(t, 2, res.Candidates)
	assert.Equal(t, 1, res.TrueDuplicates)
	assert.Equal(t, 2, res.FalseDuplicates)
	require.Len(t, res.Removals, 1)
	assert.Equal(t, "M1", res.Removals[0].KeyValue)
	assert.Equal(t, "1", res.Removals[0].Kept)
	assert.Equal(t, []string{"2"}, res.Removals[0].Dropped)

	cleaned, err := workbook.Read(res.Output, workbook.ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"ORDRE", "MATRICULE", "NOM", "MENSUALITE", "DOUBLONS_SUPPRIMES"}, cleaned.Columns)
	require.Len(t, cleaned.Records, 4)
	assert.Equal(t, "2", cleaned.Records[0].Get("DOUBLONS_SUPPRIMES").String())

	report, err := workbook.Read(res.Report, workbook.ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{reportKeyColumn, reportCountColumn, reportKeptColumn, reportDroppedColumn}, report.Columns)
	require.Len(t, report.Records, 1)
	assert.Equal(t, model.Number(2), report.Records[0].Get(reportCountColumn))
}

func TestRemoveDuplicates_NoTrueDuplicate(t *testing.T) {
	input := filepath.Join(t.TempDir(), "adherents.xlsx")
	writeBook(t, input, fixtureSheet{"Sheet1", [][]any{
		{"ORDRE", "MATRICULE", "NOM"},
		{1, "M1", "A"},
		{2, "M1", "B"},
	}})

	var out bytes.Buffer
	res, err := removeDuplicates(&out, input, "", config.MembersSettings{
		Column:      "MATRICULE",
		IDColumn:    "ORDRE",
		AuditColumn: "DOUBLONS_SUPPRIMES",
	})
	require.NoError(t, err)

	assert.False(t, res.CreatedID)
	assert.Empty(t, res.Removals)
	assert.Equal(t, 2, res.FalseDuplicates)
	assert.FileExists(t, res.Output)
	assert.Empty(t, res.Report)
	assert.NoFileExists(t, workbook.Derive(input, removalReportSuffix))
	assert.Contains(t, out.String(), "No true duplicate found")
}

func TestDuplicateSheets(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "precomptes.xlsx")
	writeBook(t, input, fixtureSheet{"Sheet1", [][]any{
		{"ID", "NOM", "MT", "AUTRE"},
		{1, "A", "10", "a"},
		{2, "B", "20", "b"},
		{1, "A", 10, "c"},
	}})

	now := time.Date(2026, 2, 16, 14, 47, 8, 0, time.Local)
	var out bytes.Buffer
	res, removals, err := duplicateSheets(&out, input, "", config.KeySettings{
		Full:   []string{"ID", "NOM", "MT"},
		Coerce: []string{"MT"},
		Policy: dedupe.AsEmpty,
	}, now)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "precomptes_traite_20260216_144708.xlsx"), res.Output)
	assert.Equal(t, 3, res.Records)
	assert.Equal(t, 2, res.Duplicates)
	assert.Equal(t, 2, res.Kept)
	require.Len(t, removals, 1)

	sheets, err := workbook.SheetNames(res.Output)
	require.NoError(t, err)
	assert.Equal(t, []string{initialSheet, duplicatesSheet, cleanedSheet}, sheets)

	initial, err := workbook.Read(res.Output, workbook.ReadOptions{Sheet: initialSheet})
	require.NoError(t, err)
	assert.Equal(t, []string{"ID", "NOM", "MT"}, initial.Columns)
	assert.Len(t, initial.Records, 3)

	dupes, err := workbook.Read(res.Output, workbook.ReadOptions{Sheet: duplicatesSheet})
	require.NoError(t, err)
	assert.Equal(t, []string{originColumn, "ID", "NOM", "MT"}, dupes.Columns)
	require.Len(t, dupes.Records, 2)
	assert.Equal(t, model.Number(2), dupes.Records[0].Get(originColumn))
	assert.Equal(t, model.Number(4), dupes.Records[1].Get(originColumn))

	cleaned, err := workbook.Read(res.Output, workbook.ReadOptions{Sheet: cleanedSheet})
	require.NoError(t, err)
	assert.Len(t, cleaned.Records, 2)
}

func TestDuplicateSheets_MissingColumn(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "precomptes.xlsx")
	writeBook(t, input, fixtureSheet{"Sheet1", [][]any{{"ID"}, {1}}})

	_, _, err := duplicateSheets(&bytes.Buffer{}, input, "", config.KeySettings{Full: []string{"ID", "MT"}}, time.Now())
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrMissingColumn))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
