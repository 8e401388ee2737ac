package extract

import "strings"

// DefaultDelimiter separates the texts of merged rows.
const DefaultDelimiter = " | "

// MergeOptions configures row merging.
type MergeOptions struct {
	// Index is the column that identifies a record.
	Index string
	// Columns are concatenated when rows merge. Other columns only take the
	// value of the merged row when they are still empty.
	Columns   []string
	Delimiter string
}

func (o MergeOptions) delimiter() string {
	if o.Delimiter == "" {
		return DefaultDelimiter
	}
	return o.Delimiter
}

// appendRow folds src into dst after dst's own text.
func (o MergeOptions) appendRow(dst *Row, src Row) {
	o.fold(dst, src, func(have, add string) string { return have + o.delimiter() + add })
}

// mergeRow folds src into dst after dst's own text, skipping texts dst
// already holds either whole or as one of its delimited parts.
func (o MergeOptions) mergeRow(dst *Row, src Row) {
	o.fold(dst, src, func(have, add string) string {
		if containsPart(have, add, o.delimiter()) {
			return have
		}
		return have + o.delimiter() + add
	})
}

func containsPart(have, add, delimiter string) bool {
	add = strings.TrimSpace(add)
	if strings.TrimSpace(have) == add {
		return true
	}
	for _, part := range strings.Split(have, delimiter) {
		if strings.TrimSpace(part) == add {
			return true
		}
	}
	return false
}

// prependRow folds src into dst before dst's own text.
func (o MergeOptions) prependRow(dst *Row, src Row) {
	o.fold(dst, src, func(have, add string) string { return add + o.delimiter() + have })
}

func (o MergeOptions) fold(dst *Row, src Row, join func(have, add string) string) {
	merged := make(map[string]bool, len(o.Columns))
	for _, c := range o.Columns {
		merged[c] = true
		add := src.Get(c)
		if add == "" {
			continue
		}
		if have := dst.Get(c); have != "" {
			dst.set(c, join(have, add))
		} else {
			dst.set(c, add)
		}
	}
	for c, v := range src.Cells {
		if merged[c] || c == o.Index || v == "" {
			continue
		}
		if dst.Get(c) == "" {
			dst.set(c, v)
		}
	}
}

func (o MergeOptions) indexOf(r Row) string {
	return strings.TrimSpace(r.Get(o.Index))
}

// MergeContinuations folds every row without an index into the closest
// indexed row: the previous one, or for leading rows the first one that
// follows. Leading rows keep their reading order.
func MergeContinuations(rows []Row, opts MergeOptions) []Row {
	var (
		merged  []Row
		pending []Row
	)

	for _, r := range rows {
		r = r.clone()
		if opts.indexOf(r) == "" {
			if len(merged) > 0 {
				opts.appendRow(&merged[len(merged)-1], r)
			} else {
				pending = append(pending, r)
			}
			continue
		}

		for i := len(pending) - 1; i >= 0; i-- {
			opts.prependRow(&r, pending[i])
		}
		pending = nil
		merged = append(merged, r)
	}

	return merged
}

// MergeByIndex collapses rows sharing an index value into the first of them,
// keeping first-occurrence order. A text already present in the first row is
// not repeated. Rows without an index are dropped.
func MergeByIndex(rows []Row, opts MergeOptions) []Row {
	byIndex := make(map[string]int)
	var out []Row

	for _, r := range rows {
		idx := opts.indexOf(r)
		if idx == "" {
			continue
		}
		if pos, ok := byIndex[idx]; ok {
			opts.mergeRow(&out[pos], r)
			continue
		}
		byIndex[idx] = len(out)
		out = append(out, r.clone())
	}

	return out
}
