package extract

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Veraticus/sift/internal/common"
	"github.com/Veraticus/sift/internal/layout"
	"github.com/Veraticus/sift/internal/model"
	"github.com/Veraticus/sift/internal/pattern"
)

// PageColumn holds the source page of every extracted record.
const PageColumn = "Page"

// NomenclatureOptions configures the nomenclature pipeline.
type NomenclatureOptions struct {
	Detector *layout.Detector
	// IndexColumn identifies a record; rows without it are continuations.
	IndexColumn string
	// Focus columns lead the output; a line empty on all of them is skipped.
	Focus []string
	Merge MergeOptions
	Rules pattern.Classifier
	// Pages to read, 1-based. Nil means every page; an empty selection reads none.
	Pages    []int
	Progress Progress
	Logger   *slog.Logger
}

// NomenclatureResult is the outcome of a nomenclature extraction.
type NomenclatureResult struct {
	Dataset      *model.Dataset
	Layout       model.ColumnLayout
	PagesRead    int
	PagesSkipped int
	Failures     []PageError
	// Dropped counts the boilerplate rows removed per rule.
	Dropped map[string]int
}

// Nomenclature rebuilds the product table of a nomenclature PDF. The column
// layout comes from the first page carrying a complete header and is reused
// for every other page. Pages without a header or that fail to parse yield no
// rows.
func Nomenclature(ctx context.Context, src PageSource, opts NomenclatureOptions) (*NomenclatureResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Detector == nil {
		opts.Detector = layout.NewDetector(nil, nil)
	}
	if opts.Merge.Index == "" {
		opts.Merge.Index = opts.IndexColumn
	}

	pages := opts.Pages
	if pages == nil {
		pages = allPages(src.PageCount())
	}

	res := &NomenclatureResult{Dropped: make(map[string]int)}
	var rows []Row

	for _, n := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pageRows, err := res.page(src, n, opts)
		advance(opts.Progress)
		if err != nil {
			res.Failures = append(res.Failures, PageError{Page: n, Err: err})
			res.PagesSkipped++
			logger.Warn("Skipping page", "page", n, "error", err)
			continue
		}
		res.PagesRead++
		rows = append(rows, pageRows...)
	}

	if res.Layout.Empty() {
		return res, common.NewUserError("no header line found in the selected pages", common.ErrNoLayout)
	}

	rows = MergeContinuations(rows, opts.Merge)
	rows = MergeByIndex(rows, opts.Merge)

	res.Dataset = nomenclatureDataset(rows, res.Layout, opts)
	logger.Info("Nomenclature extracted",
		"records", res.Dataset.Len(),
		"pages_read", res.PagesRead,
		"pages_skipped", res.PagesSkipped)
	return res, nil
}

// page builds the rows of one page, reusing the layout found so far.
func (res *NomenclatureResult) page(src PageSource, n int, opts NomenclatureOptions) ([]Row, error) {
	page, err := src.Words(n)
	if err != nil {
		return nil, err
	}
	lines := page.Lines()

	if res.Layout.Empty() {
		if l, ok := opts.Detector.Detect(lines, page.Width); ok && hasColumns(l, opts) {
			res.Layout = l
		}
	}
	if res.Layout.Empty() {
		return nil, common.ErrNoLayout
	}

	idx, ok := opts.Detector.FindHeader(lines)
	if !ok {
		return nil, common.ErrNoLayout
	}

	order := res.Layout.Names()
	var (
		rows    []Row
		current *Row
	)
	for _, line := range layout.Body(lines, idx) {
		cells := res.Layout.Split(line)
		if !anyValue(cells, opts.Focus) {
			continue
		}

		if opts.Rules != nil && !indexOnly(cells, opts.Merge.Index) {
			d := opts.Rules.Classify(pattern.Row{Cells: cells, Order: order})
			if d.Dropped() {
				res.Dropped[d.Rule]++
				continue
			}
		}

		row := Row{Page: n, Cells: cells}
		if opts.Merge.indexOf(row) == "" && current != nil {
			opts.Merge.appendRow(current, row)
			continue
		}
		if current != nil {
			rows = append(rows, *current)
		}
		current = &row
	}
	if current != nil {
		rows = append(rows, *current)
	}
	return rows, nil
}

func hasColumns(l model.ColumnLayout, opts NomenclatureOptions) bool {
	if opts.IndexColumn != "" && !l.Has(opts.IndexColumn) {
		return false
	}
	for _, c := range opts.Focus {
		if !l.Has(c) {
			return false
		}
	}
	return true
}

func anyValue(cells map[string]string, columns []string) bool {
	if len(columns) == 0 {
		for _, v := range cells {
			if v != "" {
				return true
			}
		}
		return false
	}
	for _, c := range columns {
		if cells[c] != "" {
			return true
		}
	}
	return false
}

// indexOnly reports whether the index is the only value of the line. Such a
// line opens a record whose text follows, so it is never classified.
func indexOnly(cells map[string]string, index string) bool {
	if index == "" || strings.TrimSpace(cells[index]) == "" {
		return false
	}
	for c, v := range cells {
		if c != index && strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func allPages(total int) []int {
	pages := make([]int, total)
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}

// nomenclatureDataset orders the output as Page, the focus columns, then the
// remaining layout columns left to right.
func nomenclatureDataset(rows []Row, l model.ColumnLayout, opts NomenclatureOptions) *model.Dataset {
	columns := []string{PageColumn}
	seen := map[string]bool{PageColumn: true}
	add := func(c string) {
		if !seen[c] {
			seen[c] = true
			columns = append(columns, c)
		}
	}
	if opts.IndexColumn != "" {
		add(opts.IndexColumn)
	}
	for _, c := range opts.Focus {
		add(c)
	}
	for _, c := range l.Names() {
		add(c)
	}

	ds := &model.Dataset{Columns: columns}
	for i, r := range rows {
		if !anyValue(r.Cells, nil) {
			continue
		}
		rec := model.NewRecord(i + 1)
		rec.Page = r.Page
		rec.Set(PageColumn, model.Number(float64(r.Page)))
		for _, c := range columns[1:] {
			rec.Set(c, model.Text(r.Get(c)))
		}
		ds.Records = append(ds.Records, rec)
	}
	return ds
}
