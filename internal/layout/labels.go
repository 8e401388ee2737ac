// Package layout infers the column layout of a PDF table from its header line.
package layout

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Label maps header words to a column. A word matches when it equals one of
// Exact or contains one of Keywords, after folding.
type Label struct {
	Column   string
	Keywords []string
	Exact    []string
}

// Matches reports whether a folded header word belongs to the label.
func (l Label) Matches(folded string) bool {
	for _, e := range l.Exact {
		if folded == Fold(e) {
			return true
		}
	}
	for _, k := range l.Keywords {
		if strings.Contains(folded, Fold(k)) {
			return true
		}
	}
	return false
}

// DefaultLabels is the nomenclature header. Order matters: a word is given to
// the first label it matches.
func DefaultLabels() []Label {
	return []Label{
		{Column: "N°", Exact: []string{"n°", "nº", "n", "no", "num"}, Keywords: []string{"n°"}},
		{Column: "Designation", Keywords: []string{"designation"}},
		{Column: "DCI", Keywords: []string{"dci"}},
		{Column: "Dosage", Keywords: []string{"dosage"}},
		{Column: "Administration", Keywords: []string{"admin"}},
		{Column: "Fabricant", Keywords: []string{"fabricant"}},
		{Column: "PGHT", Keywords: []string{"pght"}},
		{Column: "CFA", Keywords: []string{"cfa"}},
		{Column: "Code", Keywords: []string{"code"}},
		{Column: "AMM", Keywords: []string{"amm"}},
		{Column: "Expiration", Keywords: []string{"expiration", "d'exp"}},
	}
}

// Fold lowercases s and strips its diacritics, so "Désignation" and
// "DESIGNATION" compare equal. The degree sign is kept.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}
