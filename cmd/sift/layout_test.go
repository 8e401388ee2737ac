package main

import (
	"bytes"
	"testing"

	"github.com/Veraticus/sift/internal/extract"
	"github.com/Veraticus/sift/internal/model"
	"github.com/stretchr/testify/assert"
)

func line(top int, words ...model.Word) model.Line {
	return model.Line{Top: top, Words: words}
}

func TestPrintInspection(t *testing.T) {
	header := line(100,
		model.Word{Text: "N°", X0: 30, X1: 38},
		model.Word{Text: "Désignation", X0: 60, X1: 104},
	)
	body := line(120,
		model.Word{Text: "1", X0: 30, X1: 34},
		model.Word{Text: "Paracétamol", X0: 60, X1: 104},
	)
	ins := extract.Inspection{
		Page:   2,
		Width:  595,
		Lines:  []model.Line{header, body},
		Header: 0,
		Layout: model.NewColumnLayout([]model.Column{{Name: "N°", X: 30}, {Name: "Designation", X: 60}}, 595, 5),
		Found:  true,
	}

	var out bytes.Buffer
	printInspection(&out, ins, 1)
	s := out.String()

	assert.Contains(t, s, "Page 2")
	assert.Contains(t, s, "header")
	assert.Contains(t, s, "1 more lines")
	assert.Contains(t, s, "Header: N° Désignation")
	assert.Contains(t, s, "Designation")
	assert.NotContains(t, s, "Paracétamol")
}

func TestPrintInspection_NoHeader(t *testing.T) {
	ins := extract.Inspection{
		Page:   1,
		Width:  595,
		Lines:  []model.Line{line(50, model.Word{Text: "Sommaire", X0: 40, X1: 72})},
		Header: -1,
	}

	var out bytes.Buffer
	printInspection(&out, ins, 0)
	assert.Contains(t, out.String(), "Sommaire")
	assert.Contains(t, out.String(), "No header line found")
}
