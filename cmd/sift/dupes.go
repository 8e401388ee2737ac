package main

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/Veraticus/sift/internal/cli"
	"github.com/Veraticus/sift/internal/common"
	"github.com/Veraticus/sift/internal/dedupe"
	"github.com/Veraticus/sift/internal/model"
	"github.com/Veraticus/sift/internal/workbook"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func dupesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dupes",
		Short: "Find and remove duplicate rows in spreadsheets",
		Long: `Find and remove duplicate rows in spreadsheets.

Detection commands only write side files. Removal writes a cleaned copy and a
report of every dropped row; the input file is never modified.`,
	}

	cmd.PersistentFlags().String("sheet", "", "sheet to read (default: first sheet)")

	cmd.AddCommand(dupesCheckCmd())
	cmd.AddCommand(dupesPartialCmd())
	cmd.AddCommand(dupesRemoveCmd())
	cmd.AddCommand(dupesSheetsCmd())
	return cmd
}

func dupesCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check FILE [COLUMN]",
		Short: "Check a column for duplicate values",
		Long: `Check one column for values appearing more than once.

Each duplicated value is listed with its spreadsheet lines, and the duplicated
rows are exported to <file>_doublons.xlsx with Occurrence and Ligne_Excel
columns next to the checked column.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runDupesCheck,
	}

	cmd.Flags().String("policy", "", fmt.Sprintf("missing value policy %v", dedupe.Policies()))
	_ = viper.BindPFlag("dupes.check.policy", cmd.Flags().Lookup("policy"))

	return cmd
}

type checkOptions struct {
	Input   string
	Sheet   string
	Column  string
	Policy  dedupe.MissingPolicy
	Display []string
}

type checkResult struct {
	Records    int
	Missing    int
	Groups     []model.DuplicateGroup
	Duplicates int
	Output     string
}

func runDupesCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s := settings

	opts := checkOptions{
		Input:   args[0],
		Sheet:   sheetFlag(cmd),
		Column:  s.Check.Column,
		Policy:  s.Check.Policy,
		Display: s.Check.Display,
	}
	if len(args) > 1 {
		opts.Column = args[1]
	}

	journal := openJournal(ctx, s)
	defer func() { _ = journal.Close() }()
	run := startRun(journal, "dupes check", opts.Input)

	res, err := checkDuplicates(cmd.OutOrStdout(), opts)
	run.run.Records = res.Records
	run.run.Matches = res.Duplicates
	run.run.Output = res.Output
	run.finish(ctx, err, nil)
	return err
}

func sheetFlag(cmd *cobra.Command) string {
	sheet, _ := cmd.Flags().GetString("sheet")
	return sheet
}

func checkDuplicates(w io.Writer, opts checkOptions) (checkResult, error) {
	ds, err := workbook.Read(opts.Input, workbook.ReadOptions{Sheet: opts.Sheet})
	if err != nil {
		return checkResult{}, err
	}
	if missing := ds.MissingColumns([]string{opts.Column}); len(missing) > 0 {
		return checkResult{}, common.MissingColumnsError(missing, ds.Columns)
	}

	key := []string{opts.Column}
	res := checkResult{
		Records: ds.Len(),
		Missing: ds.CountMissing(opts.Column),
		Groups:  dedupe.Groups(ds.Records, key, opts.Policy),
	}
	for _, g := range res.Groups {
		res.Duplicates += len(g.Records)
	}

	printLine(w, cli.FormatTitle("Duplicate check: "+opts.Column))
	printf(w, "  Rows: %d\n", res.Records)
	printf(w, "  Values in %q: %d\n", opts.Column, res.Records-res.Missing)
	printf(w, "  Missing in %q: %d (policy %s)\n\n", opts.Column, res.Missing, opts.Policy)

	if len(res.Groups) == 0 {
		printLine(w, cli.FormatSuccess(fmt.Sprintf("No duplicate found in %q", opts.Column)))
		return res, nil
	}

	printLine(w, cli.FormatWarning(fmt.Sprintf("%d duplicated rows, %d distinct values", res.Duplicates, len(res.Groups))))

	sorted := append([]model.DuplicateGroup(nil), res.Groups...)
	sortGroups(sorted)
	rows := make([][]string, len(sorted))
	for i, g := range sorted {
		rows[i] = []string{g.Values[0].String(), fmt.Sprint(len(g.Records)), joinLines(g.Records)}
	}
	printLine(w, cli.RenderTable([]string{opts.Column, "Occurrences", "Lines"}, rows))

	display := presentColumns(ds, append([]string{opts.Column}, opts.Display...))
	export := dedupe.Annotate(ds.Columns, res.Groups, opts.Column)
	printLine(w, cli.RenderTable(append([]string{dedupe.LineColumn}, display...), detailRows(export, display)))

	res.Output, err = save(workbook.Derive(opts.Input, "_doublons"), workbook.Single("Doublons", export), workbook.StylePlain)
	if err != nil {
		return res, fmt.Errorf("failed to export duplicates: %w", err)
	}
	printLine(w, cli.FormatFile("Duplicates exported", res.Output))
	slog.Debug("Duplicate check done", "column", opts.Column, "groups", len(res.Groups))
	return res, nil
}

func detailRows(export *model.Dataset, display []string) [][]string {
	columns := append([]string{dedupe.LineColumn}, display...)
	return recordRows(export.Records, columns)
}

// sortGroups orders groups by key value.
func sortGroups(groups []model.DuplicateGroup) {
	slices.SortStableFunc(groups, func(a, b model.DuplicateGroup) int {
		for i, n := 0, min(len(a.Values), len(b.Values)); i < n; i++ {
			if c := dedupe.CompareValues(a.Values[i], b.Values[i]); c != 0 {
				return c
			}
		}
		return len(a.Values) - len(b.Values)
	})
}
