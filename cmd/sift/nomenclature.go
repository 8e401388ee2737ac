package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/Veraticus/sift/internal/cli"
	"github.com/Veraticus/sift/internal/common"
	"github.com/Veraticus/sift/internal/config"
	"github.com/Veraticus/sift/internal/extract"
	"github.com/Veraticus/sift/internal/layout"
	"github.com/Veraticus/sift/internal/pattern"
	"github.com/Veraticus/sift/internal/pdftext"
	"github.com/Veraticus/sift/internal/workbook"
	"github.com/spf13/cobra"
)

const nomenclatureSheet = "Nomenclature"

func nomenclatureCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nomenclature PDF",
		Short: "Extract the product table of a nomenclature PDF",
		Long: `Extract the product table of a nomenclature PDF to a spreadsheet.

Columns are inferred from the first header line found in the document. Rows
without an index are merged into the record they continue, page numbers and
repeated headers are dropped, and records sharing an index are merged.`,
		Args: cobra.ExactArgs(1),
		RunE: runNomenclature,
	}

	addPDFFlags(cmd)
	return cmd
}

// addPDFFlags registers the flags shared by the PDF extraction commands.
func addPDFFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", "", "output workbook (default: <pdf>.xlsx)")
	cmd.Flags().StringP("pages", "p", "", `pages to read, e.g. "1-3,7" (default: all)`)
}

type pdfRequest struct {
	Input  string
	Output string
	Pages  string
}

func pdfRequestFrom(cmd *cobra.Command, args []string) pdfRequest {
	req := pdfRequest{Input: args[0]}
	req.Output, _ = cmd.Flags().GetString("output")
	req.Pages, _ = cmd.Flags().GetString("pages")
	if req.Output == "" {
		req.Output = workbook.Derive(req.Input, "")
	}
	return req
}

// openPDF opens the document and resolves the page selection.
func openPDF(req pdfRequest, xTol, yTol float64) (*pdftext.Document, []int, error) {
	if err := guardOutput(req.Input, req.Output); err != nil {
		return nil, nil, err
	}
	doc, err := pdftext.Open(req.Input, pdftext.Options{XTolerance: xTol, YTolerance: yTol})
	if err != nil {
		return nil, nil, err
	}
	pages, err := pdftext.ParsePages(req.Pages, doc.PageCount())
	if err != nil {
		_ = doc.Close()
		return nil, nil, err
	}
	if len(pages) == 0 {
		_ = doc.Close()
		return nil, nil, common.NewUserError(
			fmt.Sprintf("no page of %q selected by %q (document has %d pages)", req.Input, req.Pages, doc.PageCount()),
			common.ErrInvalidInput)
	}
	return doc, pages, nil
}

func runNomenclature(cmd *cobra.Command, args []string) error {
	req := pdfRequestFrom(cmd, args)

	handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx := handler.HandleInterrupts(cmd.Context(), "Extraction")

	journal := openJournal(ctx, settings)
	defer func() { _ = journal.Close() }()
	run := startRun(journal, "nomenclature", req.Input)

	res, output, err := extractNomenclature(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), req, settings.Nomenclature)
	if res != nil && res.Dataset != nil {
		run.run.Records = res.Dataset.Len()
		run.run.Removed = dropTotal(res.Dropped)
	}
	run.run.Output = output
	run.finish(context.WithoutCancel(ctx), err, nil)
	return err
}

func extractNomenclature(ctx context.Context, w, progress io.Writer, req pdfRequest, s config.NomenclatureSettings) (*extract.NomenclatureResult, string, error) {
	doc, pages, err := openPDF(req, s.XTolerance, s.YTolerance)
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = doc.Close() }()

	detector := layout.NewDetector(s.Labels, s.Required)
	if s.Margin > 0 {
		detector.Margin = s.Margin
	}

	res, err := extract.Nomenclature(ctx, doc, extract.NomenclatureOptions{
		Detector:    detector,
		IndexColumn: s.IndexColumn,
		Focus:       s.Focus,
		Merge: extract.MergeOptions{
			Index:     s.IndexColumn,
			Columns:   s.Merge,
			Delimiter: s.Delimiter,
		},
		Rules:    pattern.NewTable(s.Rules),
		Pages:    pages,
		Progress: progressFor(progress, len(pages), "Reading pages"),
	})
	if err != nil {
		return res, "", err
	}
	printLine(progress, "")

	output, err := save(req.Output, workbook.Single(nomenclatureSheet, res.Dataset), workbook.StyleReport)
	if err != nil {
		return res, "", fmt.Errorf("failed to write %s: %w", req.Output, err)
	}

	printLine(w, cli.FormatTitle("Nomenclature extraction"))
	printf(w, "  Columns: %v\n", res.Layout.Names())
	printf(w, "  Pages read: %d, skipped: %d\n", res.PagesRead, res.PagesSkipped)
	printf(w, "  Records: %d\n", res.Dataset.Len())
	printDropped(w, res.Dropped)
	printFailures(w, res.Failures)
	printLine(w, cli.FormatFile("Workbook", output))
	return res, output, nil
}

func printDropped(w io.Writer, dropped map[string]int) {
	if len(dropped) == 0 {
		return
	}
	labels := make([]string, 0, len(dropped))
	for label := range dropped {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		printf(w, "  Dropped %s: %d\n", label, dropped[label])
	}
}

func printFailures(w io.Writer, failures []extract.PageError) {
	for _, f := range failures {
		slog.Debug("Page failure", "page", f.Page, "error", f.Err)
		printLine(w, cli.FormatWarning(f.Error()))
	}
}

func dropTotal(dropped map[string]int) int {
	n := 0
	for _, c := range dropped {
		n += c
	}
	return n
}
