// Package model defines the tabular types shared by the spreadsheet and PDF pipelines.
package model

import (
	"strconv"
	"strings"
)

// ValueKind tells how a cell value was read.
type ValueKind int

const (
	// KindEmpty is a blank or unparseable cell.
	KindEmpty ValueKind = iota
	// KindString is a text cell.
	KindString
	// KindNumber is a numeric cell.
	KindNumber
)

// Value is a single cell of a Record.
type Value struct {
	Str  string
	Num  float64
	Kind ValueKind
}

// Empty returns the missing value.
func Empty() Value {
	return Value{}
}

// Text returns a string value. Blank strings are treated as missing.
func Text(s string) Value {
	if strings.TrimSpace(s) == "" {
		return Value{}
	}
	return Value{Kind: KindString, Str: s}
}

// Number returns a numeric value.
func Number(n float64) Value {
	return Value{Kind: KindNumber, Num: n}
}

// IsEmpty reports whether the value is missing.
func (v Value) IsEmpty() bool {
	return v.Kind == KindEmpty
}

// String renders the value the way it is written back to a sheet.
func (v Value) String() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	default:
		return ""
	}
}

// Any returns the value as the cell content to store: nil, string or float64.
func (v Value) Any() any {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return v.Num
	default:
		return nil
	}
}

// Equal is field-wise exact equality. A number and a string never match,
// even when they print the same.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindString:
		return v.Str == o.Str
	case KindNumber:
		return v.Num == o.Num
	default:
		return true
	}
}

// token encodes the value for use inside a grouping key.
func (v Value) token() string {
	switch v.Kind {
	case KindString:
		return "s:" + v.Str
	case KindNumber:
		return "n:" + strconv.FormatFloat(v.Num, 'g', -1, 64)
	default:
		return "-"
	}
}

// Record is one logical row of a table, tagged with where it came from.
type Record struct {
	Fields map[string]Value
	// Line is the spreadsheet line the record was read from (header is line 1).
	Line int
	// Page is the PDF page the record was reconstructed from, 0 for spreadsheets.
	Page int
}

// NewRecord creates an empty record for the given source line.
func NewRecord(line int) Record {
	return Record{Line: line, Fields: make(map[string]Value)}
}

// Get returns the value of a column, missing when absent.
func (r Record) Get(column string) Value {
	if r.Fields == nil {
		return Value{}
	}
	return r.Fields[column]
}

// Set stores a column value.
func (r *Record) Set(column string, v Value) {
	if r.Fields == nil {
		r.Fields = make(map[string]Value)
	}
	r.Fields[column] = v
}

// Clone deep-copies the record.
func (r Record) Clone() Record {
	c := Record{Line: r.Line, Page: r.Page, Fields: make(map[string]Value, len(r.Fields))}
	for k, v := range r.Fields {
		c.Fields[k] = v
	}
	return c
}

// Key returns the values of the given columns, in order.
func (r Record) Key(columns []string) []Value {
	key := make([]Value, len(columns))
	for i, c := range columns {
		key[i] = r.Get(c)
	}
	return key
}

// KeyString joins the key values of the given columns into a comparable string.
// Every token is prefixed with its length, so two records have the same
// KeyString exactly when every key field is Equal.
func (r Record) KeyString(columns []string) string {
	var b strings.Builder
	for _, c := range columns {
		tok := r.Get(c).token()
		b.WriteString(strconv.Itoa(len(tok)))
		b.WriteByte(':')
		b.WriteString(tok)
	}
	return b.String()
}

// Dataset is an ordered set of columns and the records read under them.
type Dataset struct {
	Columns []string
	Records []Record
}

// HasColumn reports whether the dataset declares the column.
func (d *Dataset) HasColumn(column string) bool {
	for _, c := range d.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// MissingColumns returns the requested columns not present in the dataset.
func (d *Dataset) MissingColumns(columns []string) []string {
	var missing []string
	for _, c := range columns {
		if !d.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	return missing
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.Records)
}

// CountMissing counts the records with no value in the column.
func (d *Dataset) CountMissing(column string) int {
	n := 0
	for _, r := range d.Records {
		if r.Get(column).IsEmpty() {
			n++
		}
	}
	return n
}

// Clone deep-copies the dataset.
func (d *Dataset) Clone() *Dataset {
	c := &Dataset{
		Columns: append([]string(nil), d.Columns...),
		Records: make([]Record, len(d.Records)),
	}
	for i, r := range d.Records {
		c.Records[i] = r.Clone()
	}
	return c
}

// InsertColumn adds a column at position idx (clamped), filling records with fill.
// It is a no-op when the column already exists.
func (d *Dataset) InsertColumn(idx int, column string, fill func(i int, r Record) Value) {
	if d.HasColumn(column) {
		return
	}
	if idx < 0 {
		idx = 0
	}
	if idx > len(d.Columns) {
		idx = len(d.Columns)
	}
	d.Columns = append(d.Columns[:idx], append([]string{column}, d.Columns[idx:]...)...)
	for i := range d.Records {
		v := Empty()
		if fill != nil {
			v = fill(i, d.Records[i])
		}
		d.Records[i].Set(column, v)
	}
}

// Select returns a dataset restricted to the given columns, sharing no state.
func (d *Dataset) Select(columns []string) *Dataset {
	out := &Dataset{Columns: append([]string(nil), columns...), Records: make([]Record, len(d.Records))}
	for i, r := range d.Records {
		nr := Record{Line: r.Line, Page: r.Page, Fields: make(map[string]Value, len(columns))}
		for _, c := range columns {
			nr.Fields[c] = r.Get(c)
		}
		out.Records[i] = nr
	}
	return out
}

// UniqueNames makes column names usable as keys: blank names become blank
// and repeated names get a _2, _3... suffix.
func UniqueNames(names []string, blank string) []string {
	out := make([]string, len(names))
	seen := make(map[string]int, len(names))
	for i, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			n = blank
		}
		seen[n]++
		if c := seen[n]; c > 1 {
			candidate := n + "_" + strconv.Itoa(c)
			for seen[candidate] > 0 {
				c++
				candidate = n + "_" + strconv.Itoa(c)
			}
			seen[n] = c
			seen[candidate]++
			n = candidate
		}
		out[i] = n
	}
	return out
}
