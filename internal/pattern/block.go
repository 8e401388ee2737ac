package pattern

import "regexp"

// BlockRule matches a run of consecutive rows, one pattern per row, such as
// the multi-line header printed at the top of every statement page.
type BlockRule struct {
	Label string
	Lines []*regexp.Regexp
	// Every row of the block must stay within these limits. Zero means no limit.
	MaxCells   int
	MaxNumeric int
}

// Find returns the positions of the rows covered by a complete block.
func (b BlockRule) Find(rows []Row) map[int]bool {
	covered := make(map[int]bool)
	if len(b.Lines) == 0 {
		return covered
	}

	for i := 0; i+len(b.Lines) <= len(rows); i++ {
		if b.matchesAt(rows, i) {
			for j := range b.Lines {
				covered[i+j] = true
			}
		}
	}
	return covered
}

func (b BlockRule) matchesAt(rows []Row, start int) bool {
	for j, re := range b.Lines {
		row := rows[start+j]
		cells := row.NonEmpty()
		if len(cells) == 0 {
			return false
		}
		if b.MaxCells > 0 && len(cells) > b.MaxCells {
			return false
		}
		if b.MaxNumeric > 0 && row.Numeric() > b.MaxNumeric {
			return false
		}
		if !re.MatchString(row.Text()) {
			return false
		}
	}
	return true
}

// Result records why rows were dropped.
type Result struct {
	// Keep tells for every input row whether it survives.
	Keep []bool
	// Dropped counts the dropped rows per rule label.
	Dropped map[string]int
}

// Kept returns the number of surviving rows.
func (r Result) Kept() int {
	n := 0
	for _, k := range r.Keep {
		if k {
			n++
		}
	}
	return n
}

// Strip removes complete blocks first, then classifies the remaining rows
// one by one.
func Strip(rows []Row, blocks []BlockRule, c Classifier) Result {
	res := Result{Keep: make([]bool, len(rows)), Dropped: make(map[string]int)}
	for i := range res.Keep {
		res.Keep[i] = true
	}

	for _, b := range blocks {
		for i := range b.Find(rows) {
			if res.Keep[i] {
				res.Keep[i] = false
				res.Dropped[b.Label]++
			}
		}
	}

	if c == nil {
		return res
	}
	for i, row := range rows {
		if !res.Keep[i] {
			continue
		}
		if d := c.Classify(row); d.Dropped() {
			res.Keep[i] = false
			res.Dropped[d.Rule]++
		}
	}
	return res
}
