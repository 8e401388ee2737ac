package model

import (
	"sort"
	"strings"
)

// Word is a run of glyphs on a PDF page, in top-down page coordinates.
type Word struct {
	Text   string
	X0     float64
	X1     float64
	Top    float64
	Bottom float64
}

// Line is the set of words sharing a rounded top coordinate.
type Line struct {
	Words []Word
	Top   int
}

// Text joins the words of the line with single spaces.
func (l Line) Text() string {
	parts := make([]string, len(l.Words))
	for i, w := range l.Words {
		parts[i] = w.Text
	}
	return strings.Join(parts, " ")
}

// Column is a named column anchored at the x position of its header label.
type Column struct {
	Name string
	X    float64
}

// ColumnLayout maps horizontal positions to column names. It is inferred once
// from a header line and not modified afterwards.
type ColumnLayout struct {
	Columns []Column
	// Edges has len(Columns)+1 entries; column i owns [Edges[i], Edges[i+1]).
	Edges []float64
	// HeaderTop is the rounded top of the header line the layout came from.
	HeaderTop int
}

// NewColumnLayout sorts the columns left to right and derives the edges:
// a small margin left of the first label, midpoints between adjacent labels,
// and the right edge of the page.
func NewColumnLayout(columns []Column, pageWidth, margin float64) ColumnLayout {
	cols := append([]Column(nil), columns...)
	sort.SliceStable(cols, func(i, j int) bool { return cols[i].X < cols[j].X })
	if len(cols) == 0 {
		return ColumnLayout{}
	}

	edges := make([]float64, 0, len(cols)+1)
	first := cols[0].X - margin
	if first < 0 {
		first = 0
	}
	edges = append(edges, first)
	for i := 0; i < len(cols)-1; i++ {
		edges = append(edges, (cols[i].X+cols[i+1].X)/2)
	}
	edges = append(edges, pageWidth-2)

	return ColumnLayout{Columns: cols, Edges: edges}
}

// Empty reports whether no layout was detected.
func (l ColumnLayout) Empty() bool {
	return len(l.Columns) == 0
}

// Names returns the column names left to right.
func (l ColumnLayout) Names() []string {
	names := make([]string, len(l.Columns))
	for i, c := range l.Columns {
		names[i] = c.Name
	}
	return names
}

// Has reports whether the layout contains the named column.
func (l ColumnLayout) Has(name string) bool {
	for _, c := range l.Columns {
		if c.Name == name {
			return true
		}
	}
	return false
}

// Assign returns the column whose interval contains x.
func (l ColumnLayout) Assign(x float64) (string, bool) {
	for i := range l.Columns {
		if x >= l.Edges[i] && x < l.Edges[i+1] {
			return l.Columns[i].Name, true
		}
	}
	return "", false
}

// Split assigns every word of the line to a column and space-joins the words
// that land in the same column. Words outside every interval are dropped.
func (l ColumnLayout) Split(line Line) map[string]string {
	parts := make(map[string][]string, len(l.Columns))
	for _, w := range line.Words {
		name, ok := l.Assign(w.X0)
		if !ok {
			continue
		}
		parts[name] = append(parts[name], w.Text)
	}

	cells := make(map[string]string, len(parts))
	for name, words := range parts {
		cells[name] = strings.TrimSpace(strings.Join(words, " "))
	}
	return cells
}
