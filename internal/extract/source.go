// Package extract rebuilds tables from the text layer of PDF documents.
package extract

import (
	"fmt"

	"github.com/Veraticus/sift/internal/pdftext"
)

// PageSource provides the words of PDF pages.
type PageSource interface {
	PageCount() int
	Words(page int) (pdftext.Page, error)
}

// Progress is advanced once per processed page.
type Progress interface {
	Add(n int) error
}

// PageError is a page that could not be processed. It never stops a run.
type PageError struct {
	Page int
	Err  error
}

func (e PageError) Error() string {
	return fmt.Sprintf("page %d: %v", e.Page, e.Err)
}

func (e PageError) Unwrap() error {
	return e.Err
}

func advance(p Progress) {
	if p != nil {
		_ = p.Add(1)
	}
}

// Row is a reconstructed table row.
type Row struct {
	Page  int
	Cells map[string]string
}

// Get returns the trimmed text of a column.
func (r Row) Get(column string) string {
	if r.Cells == nil {
		return ""
	}
	return r.Cells[column]
}

func (r *Row) set(column, value string) {
	if r.Cells == nil {
		r.Cells = make(map[string]string)
	}
	r.Cells[column] = value
}

func (r Row) clone() Row {
	c := Row{Page: r.Page, Cells: make(map[string]string, len(r.Cells))}
	for k, v := range r.Cells {
		c.Cells[k] = v
	}
	return c
}
