package main

import (
	"context"
	"fmt"
	"io"

	"github.com/Veraticus/sift/internal/cli"
	"github.com/Veraticus/sift/internal/config"
	"github.com/Veraticus/sift/internal/extract"
	"github.com/Veraticus/sift/internal/pattern"
	"github.com/Veraticus/sift/internal/workbook"
	"github.com/spf13/cobra"
)

const statementSheet = "Etat"

func statementCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "statement PDF",
		Short: "Extract the tables of a payroll statement PDF",
		Long: `Extract the tables of a payroll statement PDF to a single sheet.

Each page gives one table whose first row is its header. Tables are
concatenated on their column names, and repeated headers and page footers are
removed. With --include-text, the closing text of the document is kept in an
Extra_Text column, and a text-only sheet is written when no table is found.`,
		Args: cobra.ExactArgs(1),
		RunE: runStatement,
	}

	addPDFFlags(cmd)
	cmd.Flags().Bool("include-text", false, "keep non-tabular text in an Extra_Text column")
	return cmd
}

func runStatement(cmd *cobra.Command, args []string) error {
	req := pdfRequestFrom(cmd, args)
	includeText, _ := cmd.Flags().GetBool("include-text")

	handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx := handler.HandleInterrupts(cmd.Context(), "Extraction")

	journal := openJournal(ctx, settings)
	defer func() { _ = journal.Close() }()
	run := startRun(journal, "statement", req.Input)

	res, output, err := extractStatement(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), req, settings.Statement, includeText)
	if res != nil && res.Dataset != nil {
		run.run.Records = res.Dataset.Len()
		run.run.Removed = dropTotal(res.Dropped)
	}
	run.run.Output = output
	run.finish(context.WithoutCancel(ctx), err, nil)
	return err
}

func extractStatement(ctx context.Context, w, progress io.Writer, req pdfRequest, s config.StatementSettings, includeText bool) (*extract.StatementResult, string, error) {
	doc, pages, err := openPDF(req, s.XTolerance, s.YTolerance)
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = doc.Close() }()

	res, err := extract.Statement(ctx, doc, extract.StatementOptions{
		Pages:           pages,
		Gap:             s.Gap,
		AnchorTolerance: s.AnchorTolerance,
		YTolerance:      s.YTolerance,
		Rules:           pattern.NewTable(s.Rules),
		Blocks:          s.Blocks,
		IncludeText:     includeText,
		Progress:        progressFor(progress, len(pages), "Reading pages"),
	})
	if err != nil {
		printFailures(w, failuresOf(res))
		return res, "", err
	}
	printLine(progress, "")

	output, err := save(req.Output, workbook.Single(statementSheet, res.Dataset), workbook.StyleReport)
	if err != nil {
		return res, "", fmt.Errorf("failed to write %s: %w", req.Output, err)
	}

	printLine(w, cli.FormatTitle("Statement extraction"))
	if res.TextOnly {
		printLine(w, cli.FormatWarning("No table found, text lines exported"))
	} else {
		printf(w, "  Tables: %d\n", res.Tables)
	}
	printf(w, "  Rows: %d\n", res.Dataset.Len())
	if res.ExtraText != "" {
		printf(w, "  %s: %s\n", extract.ExtraTextColumn, res.ExtraText)
	}
	printDropped(w, res.Dropped)
	printFailures(w, res.Failures)
	printLine(w, cli.FormatFile("Workbook", output))
	return res, output, nil
}

func failuresOf(res *extract.StatementResult) []extract.PageError {
	if res == nil {
		return nil
	}
	return res.Failures
}
