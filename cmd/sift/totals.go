package main

import (
	"fmt"
	"io"
	"slices"

	"github.com/Veraticus/sift/internal/cli"
	"github.com/Veraticus/sift/internal/config"
	"github.com/Veraticus/sift/internal/totals"
	"github.com/Veraticus/sift/internal/workbook"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func totalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "totals ORIGINAL CLEANED",
		Short: "Compare row counts and column sums before and after cleaning",
		Long: `Compare row counts and column sums of a spreadsheet and its cleaned copy.

The cleaned workbook is read from its SANS_DOUBLONS sheet when it has one, so
the output of "dupes sheets" can be checked directly.`,
		Args: cobra.ExactArgs(2),
		RunE: runTotals,
	}

	cmd.Flags().StringSlice("columns", nil, "columns to sum")
	cmd.Flags().String("sheet", "", "sheet read from the cleaned workbook")
	cmd.Flags().Int("preview", 0, "number of trailing cleaned rows to print")
	_ = viper.BindPFlag("totals.columns", cmd.Flags().Lookup("columns"))
	_ = viper.BindPFlag("totals.sheet", cmd.Flags().Lookup("sheet"))
	_ = viper.BindPFlag("totals.preview", cmd.Flags().Lookup("preview"))

	return cmd
}

func runTotals(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	journal := openJournal(ctx, settings)
	defer func() { _ = journal.Close() }()
	run := startRun(journal, "totals", args[0])
	run.run.Output = args[1]

	report, err := compareTotals(cmd.OutOrStdout(), args[0], args[1], settings.Totals)
	run.run.Records = report.RowsBefore
	run.run.Removed = report.RowsRemoved()
	run.finish(ctx, err, nil)
	return err
}

func compareTotals(w io.Writer, original, cleaned string, opts config.TotalsSettings) (totals.Report, error) {
	before, err := workbook.Read(original, workbook.ReadOptions{})
	if err != nil {
		return totals.Report{}, err
	}

	sheets, err := workbook.SheetNames(cleaned)
	if err != nil {
		return totals.Report{}, err
	}
	sheet := ""
	if slices.Contains(sheets, opts.Sheet) {
		sheet = opts.Sheet
	}
	after, err := workbook.Read(cleaned, workbook.ReadOptions{Sheet: sheet})
	if err != nil {
		return totals.Report{}, err
	}

	report, err := totals.Compare(before, after, opts.Columns, opts.Preview)
	if err != nil {
		return totals.Report{}, err
	}

	printLine(w, cli.FormatTitle("Totals"))
	rows := [][]string{{"Rows", fmt.Sprint(report.RowsBefore), fmt.Sprint(report.RowsAfter), fmt.Sprint(report.RowsRemoved())}}
	for _, c := range report.Columns {
		rows = append(rows, []string{c.Column, c.Before.StringFixed(0), c.After.StringFixed(0), c.Lost().StringFixed(0)})
	}
	printLine(w, cli.RenderTable([]string{"", "Original", "Cleaned", "Difference"}, rows))

	summary := fmt.Sprintf("Rows removed: %d", report.RowsRemoved())
	for _, c := range report.Columns {
		summary += fmt.Sprintf("\n%s lost: %s", c.Column, c.Lost().StringFixed(0))
	}
	printLine(w, cli.RenderBox(cli.ChartIcon+" Difference", summary))

	if len(report.Tail) > 0 {
		printLine(w, cli.FormatInfo(fmt.Sprintf("Last %d rows of the cleaned sheet", len(report.Tail))))
		printLine(w, cli.RenderTable(after.Columns, recordRows(report.Tail, after.Columns)))
	}
	return report, nil
}
