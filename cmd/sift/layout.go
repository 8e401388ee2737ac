package main

import (
	"fmt"
	"io"

	"github.com/Veraticus/sift/internal/cli"
	"github.com/Veraticus/sift/internal/config"
	"github.com/Veraticus/sift/internal/extract"
	"github.com/Veraticus/sift/internal/layout"
	"github.com/Veraticus/sift/internal/pdftext"
	"github.com/spf13/cobra"
)

// maxInspectedLines bounds the lines printed by the layout command.
const maxInspectedLines = 30

func layoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layout PDF",
		Short: "Show how a PDF page is read",
		Long: `Show the text lines of one PDF page with their word positions, the
detected header line and the column layout inferred from it. Use it to tune
header labels and tolerances before running an extraction.`,
		Args: cobra.ExactArgs(1),
		RunE: runLayout,
	}

	cmd.Flags().Int("page", 1, "page to inspect")
	cmd.Flags().Int("lines", maxInspectedLines, "number of lines to print")
	return cmd
}

func runLayout(cmd *cobra.Command, args []string) error {
	page, _ := cmd.Flags().GetInt("page")
	lines, _ := cmd.Flags().GetInt("lines")
	return inspectLayout(cmd.OutOrStdout(), args[0], page, lines, settings.Nomenclature)
}

func inspectLayout(w io.Writer, input string, page, maxLines int, s config.NomenclatureSettings) error {
	doc, err := pdftext.Open(input, pdftext.Options{XTolerance: s.XTolerance, YTolerance: s.YTolerance})
	if err != nil {
		return err
	}
	defer func() { _ = doc.Close() }()

	detector := layout.NewDetector(s.Labels, s.Required)
	if s.Margin > 0 {
		detector.Margin = s.Margin
	}

	ins, err := extract.Inspect(doc, page, detector)
	if err != nil {
		return err
	}
	printInspection(w, ins, maxLines)
	return nil
}

func printInspection(w io.Writer, ins extract.Inspection, maxLines int) {
	printLine(w, cli.FormatTitle(fmt.Sprintf("Page %d (width %.0f)", ins.Page, ins.Width)))

	rows := make([][]string, 0, min(len(ins.Lines), maxLines))
	for i, l := range ins.Lines {
		if maxLines > 0 && i == maxLines {
			break
		}
		x := ""
		if len(l.Words) > 0 {
			x = fmt.Sprintf("%.1f", l.Words[0].X0)
		}
		marker := ""
		if i == ins.Header {
			marker = "header"
		}
		rows = append(rows, []string{fmt.Sprint(l.Top), x, fmt.Sprint(len(l.Words)), l.Text(), marker})
	}
	printLine(w, cli.RenderTable([]string{"Top", "X", "Words", "Text", ""}, rows))
	if maxLines > 0 && len(ins.Lines) > maxLines {
		printLine(w, cli.FormatInfo(fmt.Sprintf("%d more lines", len(ins.Lines)-maxLines)))
	}

	header, ok := ins.HeaderLine()
	if !ok {
		printLine(w, cli.FormatWarning("No header line found on this page"))
		return
	}
	printLine(w, cli.FormatSuccess("Header: "+header.Text()))
	if !ins.Found {
		printLine(w, cli.FormatWarning("Header labels did not match any known column"))
		return
	}

	cols := make([][]string, len(ins.Layout.Columns))
	for i, c := range ins.Layout.Columns {
		cols[i] = []string{c.Name, fmt.Sprintf("%.1f", c.X), fmt.Sprintf("%.1f", ins.Layout.Edges[i]), fmt.Sprintf("%.1f", ins.Layout.Edges[i+1])}
	}
	printLine(w, cli.RenderTable([]string{"Column", "Label X", "From", "To"}, cols))
}
