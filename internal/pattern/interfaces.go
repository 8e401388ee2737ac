// Package pattern decides which reconstructed rows are layout boilerplate
// (repeated titles, page footers, header blocks) through declared rule tables.
package pattern

import (
	"regexp"
	"strconv"
	"strings"
)

// Action is what a matching rule does with a row.
type Action string

// Rule actions.
const (
	Drop Action = "drop"
	Keep Action = "keep"
)

// Row is the view of a reconstructed row the rules evaluate.
type Row struct {
	// Cells holds the text of each column.
	Cells map[string]string
	// Order lists the columns in display order.
	Order []string
}

// NewRow builds a row from positional cells.
func NewRow(cells []string) Row {
	r := Row{Cells: make(map[string]string, len(cells)), Order: make([]string, len(cells))}
	for i, c := range cells {
		name := strconv.Itoa(i)
		r.Order[i] = name
		r.Cells[name] = c
	}
	return r
}

// Field returns the trimmed text of a column.
func (r Row) Field(name string) string {
	return strings.TrimSpace(r.Cells[name])
}

// NonEmpty returns the trimmed non-empty cells in display order.
func (r Row) NonEmpty() []string {
	var out []string
	for _, c := range r.Order {
		if v := r.Field(c); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Text joins the non-empty cells with spaces.
func (r Row) Text() string {
	return strings.Join(r.NonEmpty(), " ")
}

var numericLike = regexp.MustCompile(`^[\d\s,./-]+$`)

// IsNumericLike reports whether a token reads as an amount or identifier,
// such as "8 160 000" or "01/12/2025".
func IsNumericLike(s string) bool {
	return numericLike.MatchString(strings.ReplaceAll(s, "\u00a0", " "))
}

// Numeric counts the numeric-like cells.
func (r Row) Numeric() int {
	n := 0
	for _, v := range r.NonEmpty() {
		if IsNumericLike(v) {
			n++
		}
	}
	return n
}

// Decision is the outcome of classifying a row.
type Decision struct {
	Action Action
	// Rule is the label of the deciding rule, empty when no rule matched.
	Rule string
}

// Dropped reports whether the row must be discarded.
func (d Decision) Dropped() bool {
	return d.Action == Drop
}

// Classifier decides whether a row is kept.
type Classifier interface {
	Classify(row Row) Decision
}
