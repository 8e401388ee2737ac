package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/sift/internal/cli"
	"github.com/Veraticus/sift/internal/common"
	"github.com/Veraticus/sift/internal/config"
	"github.com/Veraticus/sift/internal/dedupe"
	"github.com/Veraticus/sift/internal/model"
	"github.com/Veraticus/sift/internal/workbook"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Sheets of the duplicate workbook.
const (
	initialSheet    = "DONNEES_INITIALES"
	duplicatesSheet = "DOUBLONS"
	cleanedSheet    = "SANS_DOUBLONS"
	originColumn    = "LIGNE_ORIGINE"
)

func dupesSheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets FILE",
		Short: "Write initial, duplicate and cleaned data as three sheets",
		Long: `Write a new workbook with three sheets over the full key columns:

  DONNEES_INITIALES  every row of the input
  DOUBLONS           every duplicated row, with its source line in LIGNE_ORIGINE
  SANS_DOUBLONS      the input without duplicates, first occurrence kept

The workbook is named <file>_traite_<timestamp>.xlsx.`,
		Args: cobra.ExactArgs(1),
		RunE: runDupesSheets,
	}

	cmd.Flags().StringSlice("full", nil, "key columns")
	cmd.Flags().String("policy", "", fmt.Sprintf("missing value policy %v", dedupe.Policies()))
	_ = viper.BindPFlag("dupes.sheets.full", cmd.Flags().Lookup("full"))
	_ = viper.BindPFlag("dupes.sheets.policy", cmd.Flags().Lookup("policy"))

	return cmd
}

type sheetsResult struct {
	Records    int
	Duplicates int
	Kept       int
	Output     string
}

func runDupesSheets(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	journal := openJournal(ctx, settings)
	defer func() { _ = journal.Close() }()
	run := startRun(journal, "dupes sheets", args[0])

	res, removals, err := duplicateSheets(cmd.OutOrStdout(), args[0], sheetFlag(cmd), settings.Sheets, time.Now())
	run.run.Records = res.Records
	run.run.Matches = res.Duplicates
	run.run.Removed = res.Records - res.Kept
	run.run.Output = res.Output
	run.finish(ctx, err, removals)
	return err
}

func duplicateSheets(w io.Writer, input, sheet string, keys config.KeySettings, now time.Time) (sheetsResult, []model.Removal, error) {
	ds, err := workbook.Read(input, workbook.ReadOptions{Sheet: sheet, Coerce: keys.Coerce})
	if err != nil {
		return sheetsResult{}, nil, err
	}
	if missing := ds.MissingColumns(keys.Full); len(missing) > 0 {
		return sheetsResult{}, nil, common.MissingColumnsError(missing, ds.Columns)
	}

	initial := ds.Select(keys.Full)

	dupes := &model.Dataset{Records: dedupe.Find(initial.Records, keys.Full, keys.Policy)}
	dedupe.SortByKey(dupes.Records, keys.Full)
	dupes.Columns = append(dupes.Columns, keys.Full...)
	dupes.InsertColumn(0, originColumn, func(_ int, r model.Record) model.Value {
		return model.Number(float64(r.Line))
	})

	cleaned, removals := dedupe.RemoveExact(initial, keys.Full, keys.Policy, dedupe.RemoveOptions{})

	res := sheetsResult{
		Records:    initial.Len(),
		Duplicates: dupes.Len(),
		Kept:       cleaned.Len(),
	}

	base := strings.TrimSuffix(input, filepath.Ext(input)) + "_traite"
	book := workbook.Book{Sheets: []workbook.Sheet{
		{Name: initialSheet, Data: initial},
		{Name: duplicatesSheet, Data: dupes},
		{Name: cleanedSheet, Data: cleaned},
	}}
	res.Output, err = save(workbook.Timestamped(base, now), book, workbook.StylePlain)
	if err != nil {
		return res, removals, fmt.Errorf("failed to write workbook: %w", err)
	}

	printLine(w, cli.FormatTitle("Duplicate sheets"))
	printf(w, "  Key: %s\n", strings.Join(keys.Full, ", "))
	printf(w, "  %s: %d rows\n", initialSheet, res.Records)
	printf(w, "  %s: %d rows\n", duplicatesSheet, res.Duplicates)
	printf(w, "  %s: %d rows\n", cleanedSheet, res.Kept)
	printLine(w, cli.FormatFile("Workbook", res.Output))
	return res, removals, nil
}
