package extract

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/Veraticus/sift/internal/common"
	"github.com/Veraticus/sift/internal/model"
	"github.com/Veraticus/sift/internal/pattern"
	"github.com/Veraticus/sift/internal/pdftext"
)

// ExtraTextColumn holds non-tabular text captured from the document.
const ExtraTextColumn = "Extra_Text"

// Statement table defaults, in points.
const (
	DefaultGap             = 8.0
	DefaultAnchorTolerance = 12.0
)

// StatementOptions configures the payroll statement pipeline.
type StatementOptions struct {
	// Pages to read, 1-based. Nil means every page; an empty selection reads none.
	Pages []int
	// Gap is the horizontal distance between two words that starts a new cell.
	Gap float64
	// AnchorTolerance is how far a cell may sit from a column and still
	// belong to it.
	AnchorTolerance float64
	YTolerance      float64
	Rules           pattern.Classifier
	Blocks          []pattern.BlockRule
	// IncludeText captures the trailing text line when no cell contains it,
	// and falls back to a text-only table when no table survives.
	IncludeText bool
	Progress    Progress
	Logger      *slog.Logger
}

// StatementResult is the outcome of a statement extraction.
type StatementResult struct {
	Dataset *model.Dataset
	// TextOnly is set when the dataset is the Extra_Text fallback.
	TextOnly  bool
	Tables    int
	Failures  []PageError
	Dropped   map[string]int
	ExtraText string
}

type table struct {
	page   int
	header []string
	rows   [][]string
}

// Statement rebuilds the tables of a payroll statement PDF. Every page gives a
// table whose first row is its header; the tables are concatenated on their
// column names and the repeated header blocks are stripped.
func Statement(ctx context.Context, src PageSource, opts StatementOptions) (*StatementResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Gap <= 0 {
		opts.Gap = DefaultGap
	}
	if opts.AnchorTolerance <= 0 {
		opts.AnchorTolerance = DefaultAnchorTolerance
	}
	if opts.YTolerance <= 0 {
		opts.YTolerance = pdftext.DefaultYTolerance
	}

	pages := opts.Pages
	if pages == nil {
		pages = allPages(src.PageCount())
	}

	res := &StatementResult{Dropped: make(map[string]int)}
	var (
		tables []table
		text   []string
	)

	for _, n := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := src.Words(n)
		advance(opts.Progress)
		if err != nil {
			res.Failures = append(res.Failures, PageError{Page: n, Err: err})
			logger.Warn("Skipping page", "page", n, "error", err)
			continue
		}

		lines := pdftext.ClusterLines(page.Words, opts.YTolerance)
		for _, l := range lines {
			if t := strings.TrimSpace(l.Text()); t != "" {
				text = append(text, t)
			}
		}

		if t, ok := pageTable(n, lines, opts); ok {
			tables = append(tables, t)
		}
	}
	res.Tables = len(tables)

	ds := concatTables(tables)
	if ds.Len() > 0 {
		ds = strip(ds, opts, res.Dropped)
	}

	if ds.Len() == 0 {
		if !opts.IncludeText || len(text) == 0 {
			return res, common.NewUserError("no table found in the selected pages", common.ErrNoData)
		}
		res.TextOnly = true
		res.Dataset = textDataset(text)
		logger.Info("No table found, exporting text only", "lines", len(text))
		return res, nil
	}

	if opts.IncludeText && len(text) > 0 {
		last := text[len(text)-1]
		if !containsText(ds, last) {
			res.ExtraText = last
			appendExtraText(ds, last)
		}
	}

	res.Dataset = ds
	logger.Info("Statement extracted", "tables", res.Tables, "records", ds.Len())
	return res, nil
}

type cell struct {
	text   string
	x0, x1 float64
}

// splitCells cuts a line into cells wherever two words are further apart
// than gap.
func splitCells(line model.Line, gap float64) []cell {
	var cells []cell
	for _, w := range line.Words {
		if n := len(cells); n > 0 && w.X0-cells[n-1].x1 <= gap {
			cells[n-1].text += " " + w.Text
			cells[n-1].x1 = math.Max(cells[n-1].x1, w.X1)
			continue
		}
		cells = append(cells, cell{text: w.Text, x0: w.X0, x1: w.X1})
	}
	return cells
}

type span struct {
	x0, x1 float64
}

func (s span) overlap(c cell) float64 {
	return math.Min(s.x1, c.x1) - math.Max(s.x0, c.x0)
}

func (s span) distance(c cell) float64 {
	switch {
	case c.x1 < s.x0:
		return s.x0 - c.x1
	case c.x0 > s.x1:
		return c.x0 - s.x1
	default:
		return 0
	}
}

// columnSpans derives the column intervals of a page. The rows with the most
// common cell count define the base columns; cells of other rows lying
// further than tol from every column open a column of their own.
func columnSpans(rows [][]cell, tol float64) []span {
	freq := make(map[int]int)
	for _, r := range rows {
		freq[len(r)]++
	}
	mode, best := 0, 0
	for n, f := range freq {
		if n == 0 {
			continue
		}
		if f > best || (f == best && n > mode) {
			mode, best = n, f
		}
	}

	var intervals []span
	for _, r := range rows {
		if len(r) != mode {
			continue
		}
		for _, c := range r {
			intervals = append(intervals, span{c.x0, c.x1})
		}
	}
	spans := union(intervals)

	var extra []span
	for _, r := range rows {
		if len(r) == mode {
			continue
		}
		for _, c := range r {
			if i := nearest(spans, c); i < 0 || spans[i].distance(c) > tol {
				extra = append(extra, span{c.x0, c.x1})
			}
		}
	}
	if len(extra) > 0 {
		spans = union(append(spans, extra...))
	}
	return spans
}

// union merges overlapping intervals.
func union(intervals []span) []span {
	if len(intervals) == 0 {
		return nil
	}
	sort.Slice(intervals, func(i, j int) bool { return intervals[i].x0 < intervals[j].x0 })

	out := []span{intervals[0]}
	for _, iv := range intervals[1:] {
		cur := &out[len(out)-1]
		if iv.x0 <= cur.x1 {
			cur.x1 = math.Max(cur.x1, iv.x1)
			continue
		}
		out = append(out, iv)
	}
	return out
}

// nearest returns the span with the largest overlap with c, or the closest
// one when none overlaps. It returns -1 when there are no spans.
func nearest(spans []span, c cell) int {
	idx, bestOverlap := -1, 0.0
	for i, s := range spans {
		if o := s.overlap(c); o > bestOverlap {
			idx, bestOverlap = i, o
		}
	}
	if idx >= 0 {
		return idx
	}

	bestDist := math.Inf(1)
	for i, s := range spans {
		if d := s.distance(c); d < bestDist {
			idx, bestDist = i, d
		}
	}
	return idx
}

// pageTable builds the table of one page. The first non-empty row is the
// header.
func pageTable(page int, lines []model.Line, opts StatementOptions) (table, bool) {
	var rows [][]cell
	for _, l := range lines {
		if cells := splitCells(l, opts.Gap); len(cells) > 0 {
			rows = append(rows, cells)
		}
	}
	if len(rows) == 0 {
		return table{}, false
	}

	spans := columnSpans(rows, opts.AnchorTolerance)
	grid := make([][]string, len(rows))
	for i, r := range rows {
		grid[i] = make([]string, len(spans))
		for _, c := range r {
			j := nearest(spans, c)
			if grid[i][j] != "" {
				grid[i][j] += " "
			}
			grid[i][j] += c.text
		}
	}

	return table{page: page, header: headerNames(grid[0]), rows: grid[1:]}, true
}

// headerNames names blank header cells Column_<position> and suffixes
// repeated names with _2, _3...
func headerNames(raw []string) []string {
	out := make([]string, len(raw))
	for i, h := range raw {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Column_%d", i+1)
		}
		out[i] = h
	}
	return model.UniqueNames(out, "")
}

// concatTables aligns the tables on their column names, in first-seen order.
func concatTables(tables []table) *model.Dataset {
	var names []string
	seen := make(map[string]bool)
	for _, t := range tables {
		for _, h := range t.header {
			if !seen[h] {
				seen[h] = true
				names = append(names, h)
			}
		}
	}

	ds := &model.Dataset{Columns: names}
	line := 0
	for _, t := range tables {
		for _, row := range t.rows {
			line++
			rec := model.NewRecord(line)
			rec.Page = t.page
			for i, v := range row {
				if i < len(t.header) {
					rec.Set(t.header[i], model.Text(strings.TrimSpace(v)))
				}
			}
			ds.Records = append(ds.Records, rec)
		}
	}
	return ds
}

// strip removes the header blocks and header-like rows of the concatenated
// table.
func strip(ds *model.Dataset, opts StatementOptions, dropped map[string]int) *model.Dataset {
	rows := make([]pattern.Row, len(ds.Records))
	for i, r := range ds.Records {
		cells := make(map[string]string, len(ds.Columns))
		for _, c := range ds.Columns {
			cells[c] = r.Get(c).String()
		}
		rows[i] = pattern.Row{Cells: cells, Order: ds.Columns}
	}

	res := pattern.Strip(rows, opts.Blocks, opts.Rules)
	for label, n := range res.Dropped {
		dropped[label] += n
	}

	out := &model.Dataset{Columns: ds.Columns}
	for i, r := range ds.Records {
		if res.Keep[i] && len(rows[i].NonEmpty()) > 0 {
			out.Records = append(out.Records, r)
		}
	}
	return out
}

func textDataset(lines []string) *model.Dataset {
	ds := &model.Dataset{Columns: []string{ExtraTextColumn}}
	for i, l := range lines {
		rec := model.NewRecord(i + 1)
		rec.Set(ExtraTextColumn, model.Text(l))
		ds.Records = append(ds.Records, rec)
	}
	return ds
}

func containsText(ds *model.Dataset, s string) bool {
	for _, r := range ds.Records {
		for _, c := range ds.Columns {
			if strings.Contains(r.Get(c).String(), s) {
				return true
			}
		}
	}
	return false
}

func appendExtraText(ds *model.Dataset, s string) {
	if !ds.HasColumn(ExtraTextColumn) {
		ds.Columns = append(ds.Columns, ExtraTextColumn)
	}
	rec := model.NewRecord(ds.Len() + 1)
	rec.Set(ExtraTextColumn, model.Text(s))
	ds.Records = append(ds.Records, rec)
}
