package main

import (
	"fmt"
	"io"
	"slices"

	"github.com/Veraticus/sift/internal/cli"
	"github.com/Veraticus/sift/internal/common"
	"github.com/Veraticus/sift/internal/config"
	"github.com/Veraticus/sift/internal/dedupe"
	"github.com/Veraticus/sift/internal/model"
	"github.com/Veraticus/sift/internal/workbook"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Output names of the partial duplicate analysis, written next to the input.
const (
	fullMatchesFile    = "doublons_complets.xlsx"
	partialOnlyFile    = "doublons_partiels.xlsx"
	partialMatchesFile = "tous_doublons_partiels.xlsx"
)

func dupesPartialCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "partial FILE",
		Short: "Compare full-key and partial-key duplicates",
		Long: `Compare duplicates on the full key with duplicates on a partial key.

Rows matching on the partial key but not on the full key usually differ on a
single field (a misspelled name, for instance). Three workbooks are written
next to the input: full matches, partial-only matches and all partial matches.`,
		Args: cobra.ExactArgs(1),
		RunE: runDupesPartial,
	}

	cmd.Flags().StringSlice("full", nil, "full key columns")
	cmd.Flags().StringSlice("key", nil, "partial key columns")
	cmd.Flags().String("policy", "", fmt.Sprintf("missing value policy %v", dedupe.Policies()))
	_ = viper.BindPFlag("dupes.partial.full", cmd.Flags().Lookup("full"))
	_ = viper.BindPFlag("dupes.partial.partial", cmd.Flags().Lookup("key"))
	_ = viper.BindPFlag("dupes.partial.policy", cmd.Flags().Lookup("policy"))

	return cmd
}

type partialResult struct {
	Records int
	Full    int
	Partial int
	Only    int
	Outputs []string
}

// Unique is the number of rows matching no other row on the partial key.
func (r partialResult) Unique() int {
	return r.Records - r.Partial
}

func runDupesPartial(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	journal := openJournal(ctx, settings)
	defer func() { _ = journal.Close() }()
	run := startRun(journal, "dupes partial", args[0])

	res, err := partialDuplicates(cmd.OutOrStdout(), args[0], sheetFlag(cmd), settings.Partial)
	run.run.Records = res.Records
	run.run.Matches = res.Partial
	if len(res.Outputs) > 0 {
		run.run.Output = res.Outputs[0]
	}
	run.finish(ctx, err, nil)
	return err
}

func partialDuplicates(w io.Writer, input, sheet string, keys config.KeySettings) (partialResult, error) {
	ds, err := workbook.Read(input, workbook.ReadOptions{Sheet: sheet, Coerce: keys.Coerce})
	if err != nil {
		return partialResult{}, err
	}
	if missing := ds.MissingColumns(union(keys.Full, keys.Partial)); len(missing) > 0 {
		return partialResult{}, common.MissingColumnsError(missing, ds.Columns)
	}

	full := dedupe.Find(ds.Records, keys.Full, keys.Policy)
	partial := dedupe.Partial(ds.Records, keys.Partial, keys.Full, keys.Policy)
	res := partialResult{
		Records: ds.Len(),
		Full:    len(full),
		Partial: len(partial.All),
		Only:    len(partial.Only),
	}

	outputs := []struct {
		name    string
		sheet   string
		key     []string
		records []model.Record
	}{
		{fullMatchesFile, "Doublons complets", keys.Full, full},
		{partialOnlyFile, "Doublons partiels", keys.Partial, partial.Only},
		{partialMatchesFile, "Tous doublons partiels", keys.Partial, partial.All},
	}
	for _, o := range outputs {
		export := &model.Dataset{Columns: ds.Columns, Records: append([]model.Record(nil), o.records...)}
		dedupe.SortByKey(export.Records, o.key)
		path, err := save(workbook.Sibling(input, o.name), workbook.Single(o.sheet, export), workbook.StylePlain)
		if err != nil {
			return res, fmt.Errorf("failed to export %s: %w", o.name, err)
		}
		res.Outputs = append(res.Outputs, path)
	}

	printLine(w, cli.FormatTitle("Partial duplicate analysis"))
	rows := [][]string{
		{"Rows", fmt.Sprint(res.Records)},
		{"Full-key duplicates", fmt.Sprint(res.Full)},
		{"Partial-key duplicates", fmt.Sprint(res.Partial)},
		{"Partial only", fmt.Sprint(res.Only)},
		{"Unique on partial key", fmt.Sprint(res.Unique())},
	}
	printLine(w, cli.RenderTable([]string{"", "Rows"}, rows))
	if res.Only > 0 {
		printLine(w, cli.FormatWarning(fmt.Sprintf("%d rows match on the partial key only", res.Only)))
	}
	for _, p := range res.Outputs {
		printLine(w, cli.FormatFile("Written", p))
	}
	return res, nil
}

// union returns the columns of a then the ones of b not already in a.
func union(a, b []string) []string {
	out := append([]string(nil), a...)
	for _, c := range b {
		if !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	return out
}
