package pattern

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nomenclatureRow(numero, designation, dci string) Row {
	return Row{
		Cells: map[string]string{"N°": numero, "Designation": designation, "DCI": dci},
		Order: []string{"N°", "Designation", "DCI"},
	}
}

func TestTable_Classify_Nomenclature(t *testing.T) {
	table := NewTable(NomenclatureRules())

	tests := []struct {
		name     string
		row      Row
		wantDrop bool
		wantRule string
	}{
		{"regular row", nomenclatureRow("12", "PARACETAMOL 500MG", "PARACETAMOL"), false, ""},
		{"continuation", nomenclatureRow("", "BOITE DE 20", ""), false, ""},
		{"repeated title", nomenclatureRow("", "NOMENCLATURE NATIONALE", ""), true, "repeated-title"},
		{"accented title", nomenclatureRow("N°", "Désignation", "DCI"), true, "repeated-title"},
		{"footer in designation", nomenclatureRow("", "ANRP 2024 - Page 3 de 120", ""), true, "page-footer"},
		{"footer in dci", nomenclatureRow("", "", "Edition 2024 page 7 de 9"), true, "page-footer-dci"},
		{"page of pages", nomenclatureRow("", "Page 3 de 120", ""), true, "page-number"},
		{"bare page number", nomenclatureRow("", "", "42"), true, "page-number"},
		{"column titles", nomenclatureRow("", "Dosage", "Fabricant"), true, "column-titles"},
		{"column word with digits is data", nomenclatureRow("3", "DOSAGE 10MG", ""), false, ""},
		{"empty row", nomenclatureRow("", "", ""), false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := table.Classify(tt.row)
			assert.Equal(t, tt.wantDrop, d.Dropped())
			assert.Equal(t, tt.wantRule, d.Rule)
		})
	}
}

func TestTable_PriorityAndDeclarationOrder(t *testing.T) {
	dot := regexp.MustCompile(`.`)
	table := NewTable([]Rule{
		{Label: "low", Pattern: dot, Priority: 1, Action: Drop},
		{Label: "first-high", Pattern: dot, Priority: 5, Action: Keep},
		{Label: "second-high", Pattern: dot, Priority: 5, Action: Drop},
	})

	labels := []string{}
	for _, r := range table.Rules() {
		labels = append(labels, r.Label)
	}
	assert.Equal(t, []string{"first-high", "second-high", "low"}, labels)
	assert.Equal(t, Decision{Action: Keep, Rule: "first-high"}, table.Classify(NewRow([]string{"x"})))
}

func TestTable_Guards(t *testing.T) {
	rule := Rule{
		Label:      "agent",
		Pattern:    regexp.MustCompile(`(?i)\bagent\b`),
		Action:     Drop,
		MaxCells:   3,
		MaxNumeric: 1,
	}
	table := NewTable([]Rule{rule})

	assert.True(t, table.Classify(NewRow([]string{"Agent", ""})).Dropped())
	assert.False(t, table.Classify(NewRow([]string{"Agent", "a", "b", "c"})).Dropped(), "too many cells")
	assert.True(t, table.Classify(NewRow([]string{"Agent 12", "10 000"})).Dropped(), "one numeric cell allowed")
	assert.False(t, table.Classify(NewRow([]string{"Agent", "10", "20"})).Dropped(), "too many numeric cells")
	assert.False(t, table.Classify(NewRow([]string{"Client", "x"})).Dropped(), "pattern must match")
}

func TestIsNumericLike(t *testing.T) {
	for _, s := range []string{"8 160 000", "10000", "01/12/2025", "1.5", "12-3", "3 000"} {
		assert.True(t, IsNumericLike(s), s)
	}
	for _, s := range []string{"Agent", "12 A", ""} {
		assert.False(t, IsNumericLike(s), s)
	}
}

func statementRows(lines ...[]string) []Row {
	rows := make([]Row, len(lines))
	for i, l := range lines {
		rows[i] = NewRow(l)
	}
	return rows
}

func TestStrip_StatementHeaders(t *testing.T) {
	rows := statementRows(
		[]string{"1-Mutuelle Police Nationale"},
		[]string{"Retenues sur salaires"},
		[]string{"Reste a recouvrer"},
		[]string{"Agent", "References", "Montant"},
		[]string{"Anterieures", "Mois", "Total"},
		[]string{"2085524", "DUPONT JEAN", "10 000", "5 000", "15 000"},
		[]string{"Agent", "Retenues"},
		[]string{"2085525", "MARTIN", "Agent comptable", "2 000", "1 000", "3 000"},
	)

	res := Strip(rows, StatementBlocks(), NewTable(StatementRules()))

	assert.Equal(t, []bool{false, false, false, false, false, true, false, true}, res.Keep)
	assert.Equal(t, 5, res.Dropped["header-block"])
	assert.Equal(t, 1, res.Dropped["header-retenues"]+res.Dropped["header-agent"])
	assert.Equal(t, 2, res.Kept())
}

func TestBlockRule_IncompleteBlockIsKept(t *testing.T) {
	rows := statementRows(
		[]string{"1-Mutuelle Police"},
		[]string{"Retenues"},
		[]string{"2085524", "DUPONT", "10 000"},
	)

	covered := StatementBlocks()[0].Find(rows)
	assert.Empty(t, covered)
}

func TestCompileRules(t *testing.T) {
	rules, err := CompileRules([]RuleConfig{
		{Label: "confidential", Pattern: "confidentiel", IgnoreCase: true, Priority: 60},
		{Label: "totals", Pattern: "^TOTAL", Action: "keep", Field: "Designation"},
	})
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, Drop, rules[0].Action)
	assert.True(t, rules[0].Pattern.MatchString("CONFIDENTIEL"))
	assert.Equal(t, Keep, rules[1].Action)

	_, err = CompileRules([]RuleConfig{{Label: "bad", Pattern: "("}})
	require.Error(t, err)

	_, err = CompileRules([]RuleConfig{{Label: "bad", Action: "ignore"}})
	require.Error(t, err)

	_, err = CompileRules([]RuleConfig{{Pattern: "x"}})
	require.Error(t, err)
}

func TestMerge(t *testing.T) {
	base := []Rule{{Label: "a", Priority: 1}, {Label: "b", Priority: 2}}
	merged := Merge(base, []Rule{{Label: "b", Priority: 9}, {Label: "c"}})

	require.Len(t, merged, 3)
	assert.Equal(t, 9, merged[1].Priority)
	assert.Equal(t, "c", merged[2].Label)
	assert.Equal(t, 2, base[1].Priority)
}
