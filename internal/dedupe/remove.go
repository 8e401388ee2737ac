package dedupe

import (
	"strconv"
	"strings"

	"github.com/Veraticus/sift/internal/common"
	"github.com/Veraticus/sift/internal/model"
)

// AuditSeparator joins the identifiers of the rows folded into a kept row.
const AuditSeparator = ", "

// RemoveOptions configures keep-first removal.
type RemoveOptions struct {
	// AuditColumn receives the identifiers of the dropped rows on the kept row.
	// Empty disables the audit trail.
	AuditColumn string
	// IDColumn identifies rows in the audit trail. Rows without a value fall
	// back to their spreadsheet line.
	IDColumn string
}

// RemoveExact keeps the first record of every duplicate group over key and
// drops the rest. The input dataset is left untouched.
func RemoveExact(ds *model.Dataset, key []string, policy MissingPolicy, opts RemoveOptions) (*model.Dataset, []model.Removal) {
	out := ds.Clone()
	if opts.AuditColumn != "" {
		out.InsertColumn(len(out.Columns), opts.AuditColumn, nil)
	}

	removals, dropped := fold(out.Records, index(out.Records, key, policy), opts)
	out.Records = without(out.Records, dropped)
	return out, removals
}

// PrimaryOptions configures the members cleanup.
type PrimaryOptions struct {
	// IgnoreColumns are left out of the row comparison.
	IgnoreColumns []string
	AuditColumn   string
	// IDColumn is numbered 1..n when the sheet does not carry it.
	IDColumn string
}

// PrimaryResult is the outcome of RemoveByPrimary.
type PrimaryResult struct {
	Cleaned  *model.Dataset
	Removals []model.Removal
	// Candidates is the number of primary values seen more than once.
	Candidates int
	// TrueDuplicates is the number of dropped rows.
	TrueDuplicates int
	// FalseDuplicates counts rows sharing a primary value with other rows
	// while differing from all of them elsewhere.
	FalseDuplicates int
	// CreatedID is set when IDColumn had to be numbered.
	CreatedID bool
}

// RemoveByPrimary removes rows that repeat another row on the primary column
// and on every other column except the ignored ones. Rows with a missing
// primary value are never candidates.
func RemoveByPrimary(ds *model.Dataset, primary string, opts PrimaryOptions) (PrimaryResult, error) {
	if !ds.HasColumn(primary) {
		return PrimaryResult{}, common.MissingColumnsError([]string{primary}, ds.Columns)
	}

	out := ds.Clone()
	res := PrimaryResult{Cleaned: out}

	if opts.IDColumn != "" && !out.HasColumn(opts.IDColumn) {
		out.InsertColumn(0, opts.IDColumn, func(i int, _ model.Record) model.Value {
			return model.Number(float64(i + 1))
		})
		res.CreatedID = true
	}
	if opts.AuditColumn != "" {
		out.InsertColumn(len(out.Columns), opts.AuditColumn, nil)
	}

	skip := map[string]bool{opts.IDColumn: true, opts.AuditColumn: true}
	for _, c := range opts.IgnoreColumns {
		skip[c] = true
	}
	var compared []string
	for _, c := range out.Columns {
		if !skip[c] {
			compared = append(compared, c)
		}
	}

	dropped := make(map[int]bool)
	for _, candidate := range index(out.Records, []string{primary}, ExcludeAny) {
		if len(candidate.idx) < 2 {
			continue
		}
		res.Candidates++

		subset := make([]model.Record, len(candidate.idx))
		for j, i := range candidate.idx {
			subset[j] = out.Records[i]
		}

		for _, same := range index(subset, compared, AsEmpty) {
			if len(same.idx) < 2 {
				res.FalseDuplicates++
				continue
			}

			positions := make([]int, len(same.idx))
			for j, k := range same.idx {
				positions[j] = candidate.idx[k]
			}
			removal := foldOne(out.Records, positions, subset[same.idx[0]].Get(primary).String(), opts)
			res.Removals = append(res.Removals, removal)
			res.TrueDuplicates += len(positions) - 1
			for _, i := range positions[1:] {
				dropped[i] = true
			}
		}
	}

	out.Records = without(out.Records, dropped)
	return res, nil
}

func fold(records []model.Record, buckets []*bucket, opts RemoveOptions) ([]model.Removal, map[int]bool) {
	var removals []model.Removal
	dropped := make(map[int]bool)

	for _, b := range buckets {
		if len(b.idx) < 2 {
			continue
		}
		parts := make([]string, len(b.values))
		for i, v := range b.values {
			parts[i] = v.String()
		}
		removals = append(removals, foldOne(records, b.idx, strings.Join(parts, " / "), PrimaryOptions{
			AuditColumn: opts.AuditColumn,
			IDColumn:    opts.IDColumn,
		}))
		for _, i := range b.idx[1:] {
			dropped[i] = true
		}
	}

	return removals, dropped
}

// foldOne keeps records[positions[0]] and writes the audit trail of the others onto it.
func foldOne(records []model.Record, positions []int, keyValue string, opts PrimaryOptions) model.Removal {
	kept := &records[positions[0]]
	removal := model.Removal{
		KeyValue:    keyValue,
		Kept:        identify(*kept, opts.IDColumn),
		Occurrences: len(positions),
	}
	for _, i := range positions[1:] {
		removal.Dropped = append(removal.Dropped, identify(records[i], opts.IDColumn))
	}
	if opts.AuditColumn != "" {
		kept.Set(opts.AuditColumn, model.Text(strings.Join(removal.Dropped, AuditSeparator)))
	}
	return removal
}

func identify(r model.Record, idColumn string) string {
	if idColumn != "" {
		if v := r.Get(idColumn); !v.IsEmpty() {
			return v.String()
		}
	}
	return strconv.Itoa(r.Line)
}

func without(records []model.Record, dropped map[int]bool) []model.Record {
	if len(dropped) == 0 {
		return records
	}
	out := make([]model.Record, 0, len(records)-len(dropped))
	for i, r := range records {
		if !dropped[i] {
			out = append(out, r)
		}
	}
	return out
}
