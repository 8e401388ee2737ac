package pattern

import (
	"regexp"
	"sort"
)

// Rule is one entry of a boilerplate table. A rule applies when its guards
// hold and its pattern matches; the highest priority applying rule decides.
type Rule struct {
	Label   string
	Pattern *regexp.Regexp
	// Field is the column the pattern is matched against. Empty means the
	// whole row text.
	Field    string
	Priority int
	Action   Action
	// MaxCells limits the number of non-empty cells. Zero means no limit.
	MaxCells int
	// MinNumeric and MaxNumeric bound the count of numeric-like cells.
	// Zero means no bound.
	MinNumeric int
	MaxNumeric int
	// NoDigits restricts the rule to rows without any digit.
	NoDigits bool
}

// Table evaluates rules by descending priority. Rules of equal priority keep
// their declaration order.
type Table struct {
	rules []Rule
}

// NewTable creates a table from rules.
func NewTable(rules []Rule) *Table {
	sorted := append([]Rule(nil), rules...)
	sortByPriority(sorted)
	return &Table{rules: sorted}
}

// Rules returns the rules in evaluation order.
func (t *Table) Rules() []Rule {
	return append([]Rule(nil), t.rules...)
}

// Classify returns the decision of the first applying rule, Keep otherwise.
func (t *Table) Classify(row Row) Decision {
	for _, rule := range t.rules {
		if matchesRule(row, rule) {
			return Decision{Action: rule.Action, Rule: rule.Label}
		}
	}
	return Decision{Action: Keep}
}

func matchesRule(row Row, rule Rule) bool {
	if !matchesGuards(row, rule) {
		return false
	}
	return matchesPattern(row, rule)
}

func matchesGuards(row Row, rule Rule) bool {
	cells := row.NonEmpty()
	if len(cells) == 0 {
		return false
	}
	if rule.MaxCells > 0 && len(cells) > rule.MaxCells {
		return false
	}

	if rule.MinNumeric > 0 || rule.MaxNumeric > 0 {
		numeric := row.Numeric()
		if rule.MinNumeric > 0 && numeric < rule.MinNumeric {
			return false
		}
		if rule.MaxNumeric > 0 && numeric > rule.MaxNumeric {
			return false
		}
	}

	if rule.NoDigits && digits.MatchString(row.Text()) {
		return false
	}
	return true
}

var digits = regexp.MustCompile(`\d`)

func matchesPattern(row Row, rule Rule) bool {
	if rule.Pattern == nil {
		return true
	}
	text := row.Text()
	if rule.Field != "" {
		text = row.Field(rule.Field)
	}
	return rule.Pattern.MatchString(text)
}

func sortByPriority(rules []Rule) {
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority > rules[j].Priority
	})
}
