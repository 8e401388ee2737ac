package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/Veraticus/sift/internal/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareTotals(t *testing.T) {
	dir := t.TempDir()
	original := filepath.Join(dir, "precomptes.xlsx")
	writeBook(t, original, fixtureSheet{"Sheet1", [][]any{
		{"MT", "NB"},
		{10, 1},
		{20, 2},
		{30, "x"},
	}})

	cleanedRows := [][]any{
		{"MT", "NB"},
		{10, 1},
		{20, 2},
	}
	opts := config.TotalsSettings{Columns: []string{"MT", "NB"}, Sheet: "SANS_DOUBLONS", Preview: 1}

	tests := []struct {
		name   string
		sheets []fixtureSheet
	}{
		{"named sheet", []fixtureSheet{{"DONNEES_INITIALES", [][]any{{"Z"}, {1}}}, {"SANS_DOUBLONS", cleanedRows}}},
		{"first sheet fallback", []fixtureSheet{{"Feuil1", cleanedRows}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleaned := filepath.Join(t.TempDir(), "traite.xlsx")
			writeBook(t, cleaned, tt.sheets...)

			var out bytes.Buffer
			report, err := compareTotals(&out, original, cleaned, opts)
			require.NoError(t, err)

			assert.Equal(t, 3, report.RowsBefore)
			assert.Equal(t, 2, report.RowsAfter)
			assert.Equal(t, 1, report.RowsRemoved())
			require.Len(t, report.Columns, 2)
			assert.True(t, report.Columns[0].Lost().Equal(decimal.NewFromInt(30)))
			assert.True(t, report.Columns[1].Lost().IsZero())
			require.Len(t, report.Tail, 1)
			assert.Equal(t, 3, report.Tail[0].Line)
			assert.Contains(t, out.String(), "Difference")
		})
	}
}

func TestCompareTotals_MissingColumn(t *testing.T) {
	dir := t.TempDir()
	original := filepath.Join(dir, "a.xlsx")
	cleaned := filepath.Join(dir, "b.xlsx")
	writeBook(t, original, fixtureSheet{"Sheet1", [][]any{{"MT"}, {1}}})
	writeBook(t, cleaned, fixtureSheet{"Sheet1", [][]any{{"AUTRE"}, {1}}})

	_, err := compareTotals(&bytes.Buffer{}, original, cleaned, config.TotalsSettings{Columns: []string{"MT"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTRE")
}
