package layout

import (
	"testing"

	"github.com/Veraticus/sift/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(top int, words ...model.Word) model.Line {
	return model.Line{Top: top, Words: words}
}

func word(text string, x0 float64) model.Word {
	return model.Word{Text: text, X0: x0, X1: x0 + float64(len(text))*4}
}

func TestFold(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Désignation", "designation"},
		{"DESIGNATION", "designation"},
		{" N° ", "n°"},
		{"Dénomination Commune", "denomination commune"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Fold(tt.in), tt.in)
	}
}

func TestDetect_NomenclatureHeader(t *testing.T) {
	lines := []model.Line{
		line(40, word("NOMENCLATURE", 200), word("NATIONALE", 260)),
		line(80, word("N°", 30), word("Désignation", 60), word("DCI", 220), word("Dosage", 330), word("Fabricant", 420)),
		line(100, word("1", 32), word("PARACETAMOL", 60), word("PARACETAMOL", 220)),
	}

	d := NewDetector(nil, []string{"designation", "dci"})
	layout, ok := d.Detect(lines, 600)
	require.True(t, ok)

	assert.Equal(t, []string{"N°", "Designation", "DCI", "Dosage", "Fabricant"}, layout.Names())
	assert.Equal(t, []float64{25, 45, 140, 275, 375, 598}, layout.Edges)
	assert.Equal(t, 80, layout.HeaderTop)

	idx, ok := d.FindHeader(lines)
	require.True(t, ok)
	body := Body(lines, idx)
	require.Len(t, body, 1)

	cells := layout.Split(body[0])
	assert.Equal(t, map[string]string{"N°": "1", "Designation": "PARACETAMOL", "DCI": "PARACETAMOL"}, cells)
}

func TestDetect_NoHeader(t *testing.T) {
	lines := []model.Line{
		line(80, word("Designation", 60), word("Prix", 200)),
	}

	d := NewDetector(DefaultLabels(), []string{"designation", "dci"})
	_, ok := d.Detect(lines, 600)
	assert.False(t, ok, "a header needs every required keyword")

	_, ok = d.Detect(nil, 600)
	assert.False(t, ok)
}

func TestDetect_FirstLabelWins(t *testing.T) {
	lines := []model.Line{
		line(10, word("Designation", 10), word("DCI", 100), word("Code", 200), word("Code", 300)),
	}

	layout, ok := NewDetector(nil, []string{"designation", "dci"}).Detect(lines, 400)
	require.True(t, ok)
	assert.Equal(t, []string{"Designation", "DCI", "Code"}, layout.Names())
	assert.InDelta(t, 200, layout.Columns[2].X, 0.001)
}

func TestLabel_Matches(t *testing.T) {
	labels := DefaultLabels()
	find := func(w string) string {
		for _, l := range labels {
			if l.Matches(Fold(w)) {
				return l.Column
			}
		}
		return ""
	}

	assert.Equal(t, "N°", find("No"))
	assert.Equal(t, "N°", find("N°"))
	assert.Equal(t, "Administration", find("Administ."))
	assert.Equal(t, "Expiration", find("d'Expir."))
	assert.Equal(t, "AMM", find("d'AMM"))
	assert.Equal(t, "", find("Prix"))
}
