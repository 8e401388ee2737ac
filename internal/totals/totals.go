// Package totals reconciles row counts and column sums between a source
// spreadsheet and its cleaned copy.
package totals

import (
	"strings"

	"github.com/Veraticus/sift/internal/common"
	"github.com/Veraticus/sift/internal/model"
	"github.com/shopspring/decimal"
)

// ColumnTotal is the sum of one column before and after cleaning.
type ColumnTotal struct {
	Column string
	Before decimal.Decimal
	After  decimal.Decimal
}

// Lost is the part of the original sum no longer present in the cleaned sheet.
func (c ColumnTotal) Lost() decimal.Decimal {
	return c.Before.Sub(c.After)
}

// Report is the outcome of Compare.
type Report struct {
	RowsBefore int
	RowsAfter  int
	Columns    []ColumnTotal
	// Tail holds the last cleaned records, for a visual check of the sheet end.
	Tail []model.Record
}

// RowsRemoved is the difference in row count.
func (r Report) RowsRemoved() int {
	return r.RowsBefore - r.RowsAfter
}

// Compare sums columns over both datasets. Values that are not numeric are
// ignored. A column absent from either side aborts the comparison.
func Compare(original, cleaned *model.Dataset, columns []string, preview int) (Report, error) {
	if missing := original.MissingColumns(columns); len(missing) > 0 {
		return Report{}, common.MissingColumnsError(missing, original.Columns)
	}
	if missing := cleaned.MissingColumns(columns); len(missing) > 0 {
		return Report{}, common.MissingColumnsError(missing, cleaned.Columns)
	}

	report := Report{
		RowsBefore: original.Len(),
		RowsAfter:  cleaned.Len(),
	}
	for _, c := range columns {
		report.Columns = append(report.Columns, ColumnTotal{
			Column: c,
			Before: Sum(original, c),
			After:  Sum(cleaned, c),
		})
	}

	if preview > 0 {
		start := max(0, cleaned.Len()-preview)
		report.Tail = cleaned.Records[start:]
	}

	return report, nil
}

// Sum adds the numeric values of a column.
func Sum(ds *model.Dataset, column string) decimal.Decimal {
	total := decimal.Zero
	for _, r := range ds.Records {
		if d, ok := Decimal(r.Get(column)); ok {
			total = total.Add(d)
		}
	}
	return total
}

// Decimal converts a cell to a decimal. Text is accepted when it reads as a
// number once spaces are removed and a decimal comma is replaced by a dot.
func Decimal(v model.Value) (decimal.Decimal, bool) {
	switch v.Kind {
	case model.KindNumber:
		return decimal.NewFromFloat(v.Num), true
	case model.KindString:
		s := strings.NewReplacer(" ", "", "\u00a0", "", ",", ".").Replace(strings.TrimSpace(v.Str))
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	default:
		return decimal.Zero, false
	}
}
