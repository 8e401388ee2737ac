package dedupe

import (
	"slices"

	"github.com/Veraticus/sift/internal/model"
)

// Columns added to a duplicate export.
const (
	OccurrenceColumn = "Occurrence"
	LineColumn       = "Ligne_Excel"
)

// Annotate flattens duplicate groups into an export dataset. Occurrence (1-based
// within the group) and Ligne_Excel (source spreadsheet line) are inserted
// right after keyColumn, and rows are sorted by key value then occurrence.
func Annotate(columns []string, groups []model.DuplicateGroup, keyColumn string) *model.Dataset {
	out := &model.Dataset{}

	pos := slices.Index(columns, keyColumn) + 1
	out.Columns = append(out.Columns, columns[:pos]...)
	out.Columns = append(out.Columns, OccurrenceColumn, LineColumn)
	out.Columns = append(out.Columns, columns[pos:]...)

	for _, g := range groups {
		for n, r := range g.Records {
			c := r.Clone()
			c.Set(OccurrenceColumn, model.Number(float64(n+1)))
			c.Set(LineColumn, model.Number(float64(r.Line)))
			out.Records = append(out.Records, c)
		}
	}

	SortByKey(out.Records, []string{keyColumn, OccurrenceColumn})
	return out
}
