package pattern

import (
	"fmt"
	"regexp"
	"strings"
)

// NomenclatureRules is the default table for nomenclature rows. It runs on
// every physical row before continuation merging, so a footer never folds
// into a record.
func NomenclatureRules() []Rule {
	return []Rule{
		{
			Label:    "page-number",
			Pattern:  regexp.MustCompile(`(?i)^\s*(page\s*)?\d{1,4}(\s*(/|de|sur)\s*\d{1,4})?\s*$`),
			Priority: 40,
			Action:   Drop,
			MaxCells: 1,
		},
		{
			Label:    "page-footer",
			Pattern:  regexp.MustCompile(`(?i)page.*\bde\b|\bde\b.*page`),
			Field:    "Designation",
			Priority: 30,
			Action:   Drop,
		},
		{
			Label:    "page-footer-dci",
			Pattern:  regexp.MustCompile(`(?i)page.*\bde\b|\bde\b.*page`),
			Field:    "DCI",
			Priority: 30,
			Action:   Drop,
		},
		{
			Label:    "repeated-title",
			Pattern:  regexp.MustCompile(`(?i)d[ée]signation|nomenclature`),
			Field:    "Designation",
			Priority: 20,
			Action:   Drop,
		},
		{
			Label:    "column-titles",
			Pattern:  regexp.MustCompile(`(?i)dosage|administrati|fabricant|classe|d'amm|expiration`),
			Priority: 10,
			Action:   Drop,
			NoDigits: true,
		},
	}
}

// StatementRules is the default single-row table for payroll statements.
// Rows carrying several amounts are data and win over every drop rule.
func StatementRules() []Rule {
	single := func(label, expr string) Rule {
		return Rule{
			Label:    label,
			Pattern:  regexp.MustCompile(expr),
			Priority: 50,
			Action:   Drop,
			MaxCells: 4,
		}
	}
	return []Rule{
		{
			Label:      "numeric-data",
			Priority:   100,
			Action:     Keep,
			MinNumeric: 3,
		},
		single("header-police", `(?i)^\s*\d+\s*-\s*Mutuelle\s+Police`),
		single("header-retenues", `(?i)\bRetenues\b`),
		single("header-reste", `(?i)\bReste\s+a\s+recouvrer\b`),
		single("header-agent", `(?i)\bAgent\b`),
		single("header-anterieures", `(?i)\bAnterieures\b`),
	}
}

// StatementBlocks is the five-line header printed on every statement page.
func StatementBlocks() []BlockRule {
	return []BlockRule{{
		Label: "header-block",
		Lines: []*regexp.Regexp{
			regexp.MustCompile(`(?i)^\s*\d+\s*-\s*Mutuelle\s+Police`),
			regexp.MustCompile(`(?i)\bRetenues\b`),
			regexp.MustCompile(`(?i)\bReste\s+a\s+recouvrer\b`),
			regexp.MustCompile(`(?i)\bAgent\b.*\bReferences\b.*\bMontant`),
			regexp.MustCompile(`(?i)\bAnterieures\b.*\bMois\b.*\bTotal\b`),
		},
		MaxCells:   6,
		MaxNumeric: 2,
	}}
}

// RuleConfig is the configuration form of a Rule.
type RuleConfig struct {
	Label      string `mapstructure:"label"`
	Pattern    string `mapstructure:"pattern"`
	Field      string `mapstructure:"field"`
	Priority   int    `mapstructure:"priority"`
	Action     string `mapstructure:"action"`
	MaxCells   int    `mapstructure:"max_cells"`
	MinNumeric int    `mapstructure:"min_numeric"`
	MaxNumeric int    `mapstructure:"max_numeric"`
	NoDigits   bool   `mapstructure:"no_digits"`
	IgnoreCase bool   `mapstructure:"ignore_case"`
}

// CompileRules validates and compiles configured rules.
func CompileRules(configs []RuleConfig) ([]Rule, error) {
	rules := make([]Rule, 0, len(configs))
	for i, c := range configs {
		if strings.TrimSpace(c.Label) == "" {
			return nil, fmt.Errorf("rule %d: label is required", i+1)
		}

		action := Action(strings.ToLower(strings.TrimSpace(c.Action)))
		switch action {
		case "":
			action = Drop
		case Drop, Keep:
		default:
			return nil, fmt.Errorf("rule %q: unknown action %q", c.Label, c.Action)
		}

		var re *regexp.Regexp
		if c.Pattern != "" {
			expr := c.Pattern
			if c.IgnoreCase {
				expr = "(?i)" + expr
			}
			var err error
			if re, err = regexp.Compile(expr); err != nil {
				return nil, fmt.Errorf("rule %q: invalid pattern: %w", c.Label, err)
			}
		}

		rules = append(rules, Rule{
			Label:      c.Label,
			Pattern:    re,
			Field:      c.Field,
			Priority:   c.Priority,
			Action:     action,
			MaxCells:   c.MaxCells,
			MinNumeric: c.MinNumeric,
			MaxNumeric: c.MaxNumeric,
			NoDigits:   c.NoDigits,
		})
	}
	return rules, nil
}

// Merge overlays extra on base: a rule with the label of a base rule
// replaces it, any other rule is appended.
func Merge(base, extra []Rule) []Rule {
	out := append([]Rule(nil), base...)
	for _, r := range extra {
		replaced := false
		for i := range out {
			if out[i].Label == r.Label {
				out[i] = r
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, r)
		}
	}
	return out
}
