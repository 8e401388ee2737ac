package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/Veraticus/sift/internal/cli"
	"github.com/Veraticus/sift/internal/config"
	"github.com/Veraticus/sift/internal/dedupe"
	"github.com/Veraticus/sift/internal/model"
	"github.com/Veraticus/sift/internal/workbook"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Columns of the removal report.
const (
	reportKeyColumn     = "matricule"
	reportCountColumn   = "nb_occurrences"
	reportKeptColumn    = "ligne_conservee"
	reportDroppedColumn = "lignes_supprimees"
)

const (
	cleanedOutputSuffix  = "_nettoye"
	cleanedOutputSheet   = "Adherents"
	removalReportSuffix  = "_rapport_suppressions"
	removalReportSheet   = "Suppressions"
	// maxRemovalsInSummary bounds the console listing; the report has them all.
	maxRemovalsInSummary = 20
)

func dupesRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove FILE [COLUMN]",
		Short: "Remove true duplicates from a members file",
		Long: `Remove rows that repeat another row on COLUMN and on every other column.

Rows sharing COLUMN but differing elsewhere are kept and reported as false
duplicates. The cleaned copy is written to <file>_nettoye.xlsx with the
identifiers of the removed rows in DOUBLONS_SUPPRIMES, and every removal is
listed in <file>_rapport_suppressions.xlsx.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runDupesRemove,
	}

	cmd.Flags().String("id-column", "", "column identifying rows in the audit trail")
	_ = viper.BindPFlag("dupes.members.id_column", cmd.Flags().Lookup("id-column"))

	return cmd
}

type removeResult struct {
	dedupe.PrimaryResult
	Records int
	Missing int
	Output  string
	Report  string
}

func runDupesRemove(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	members := settings.Members
	if len(args) > 1 {
		members.Column = args[1]
	}

	journal := openJournal(ctx, settings)
	defer func() { _ = journal.Close() }()
	run := startRun(journal, "dupes remove", args[0])

	res, err := removeDuplicates(cmd.OutOrStdout(), args[0], sheetFlag(cmd), members)
	run.run.Records = res.Records
	run.run.Matches = res.Candidates
	run.run.Removed = res.TrueDuplicates
	run.run.Output = res.Output
	run.finish(ctx, err, res.Removals)
	return err
}

func removeDuplicates(w io.Writer, input, sheet string, members config.MembersSettings) (removeResult, error) {
	ds, err := workbook.Read(input, workbook.ReadOptions{Sheet: sheet, Coerce: members.Coerce})
	if err != nil {
		return removeResult{}, err
	}

	primary, err := dedupe.RemoveByPrimary(ds, members.Column, dedupe.PrimaryOptions{
		AuditColumn: members.AuditColumn,
		IDColumn:    members.IDColumn,
	})
	if err != nil {
		return removeResult{}, err
	}
	res := removeResult{
		PrimaryResult: primary,
		Records:       ds.Len(),
		Missing:       ds.CountMissing(members.Column),
	}

	printLine(w, cli.FormatTitle("Members cleanup: "+members.Column))
	if res.CreatedID {
		printLine(w, cli.FormatWarning(fmt.Sprintf("Column %q not found, rows numbered 1..%d", members.IDColumn, res.Records)))
	}
	printf(w, "  Rows: %d\n", res.Records)
	printf(w, "  Values in %q: %d\n", members.Column, res.Records-res.Missing)
	printf(w, "  Missing in %q: %d\n", members.Column, res.Missing)
	printf(w, "  Values seen more than once: %d\n", res.Candidates)
	printf(w, "  True duplicates: %d\n", res.TrueDuplicates)
	printf(w, "  False duplicates: %d\n\n", res.FalseDuplicates)

	if len(res.Removals) > 0 {
		rows := make([][]string, 0, len(res.Removals))
		for i, r := range res.Removals {
			if i == maxRemovalsInSummary {
				printLine(w, cli.FormatInfo(fmt.Sprintf("%d more in the report", len(res.Removals)-i)))
				break
			}
			rows = append(rows, []string{r.KeyValue, fmt.Sprint(r.Occurrences), r.Kept, strings.Join(r.Dropped, dedupe.AuditSeparator)})
		}
		printLine(w, cli.RenderTable([]string{members.Column, "Occurrences", "Kept", "Removed"}, rows))
	}

	res.Output, err = save(workbook.Derive(input, cleanedOutputSuffix), workbook.Single(cleanedOutputSheet, res.Cleaned), workbook.StylePlain)
	if err != nil {
		return res, fmt.Errorf("failed to write cleaned file: %w", err)
	}
	printLine(w, cli.FormatFile("Cleaned file", res.Output))
	printf(w, "  Rows before: %d, after: %d\n", res.Records, res.Cleaned.Len())

	if len(res.Removals) == 0 {
		printLine(w, cli.FormatSuccess("No true duplicate found"))
		if res.FalseDuplicates > 0 {
			printLine(w, cli.FormatWarning(fmt.Sprintf("%d rows share %q with different data and were kept", res.FalseDuplicates, members.Column)))
		}
		return res, nil
	}

	res.Report, err = save(workbook.Derive(input, removalReportSuffix), workbook.Single(removalReportSheet, removalReport(res.Removals)), workbook.StyleReport)
	if err != nil {
		return res, fmt.Errorf("failed to write removal report: %w", err)
	}
	printLine(w, cli.FormatFile("Removal report", res.Report))
	return res, nil
}

// removalReport lists one row per folded group.
func removalReport(removals []model.Removal) *model.Dataset {
	ds := &model.Dataset{Columns: []string{reportKeyColumn, reportCountColumn, reportKeptColumn, reportDroppedColumn}}
	for i, r := range removals {
		rec := model.NewRecord(i + 2)
		rec.Set(reportKeyColumn, model.Text(r.KeyValue))
		rec.Set(reportCountColumn, model.Number(float64(r.Occurrences)))
		rec.Set(reportKeptColumn, model.Text(r.Kept))
		rec.Set(reportDroppedColumn, model.Text(strings.Join(r.Dropped, dedupe.AuditSeparator)))
		ds.Records = append(ds.Records, rec)
	}
	return ds
}
