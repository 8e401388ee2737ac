package layout

import (
	"strings"

	"github.com/Veraticus/sift/internal/model"
)

// DefaultMargin is the space left of the first header label that still
// belongs to the first column.
const DefaultMargin = 5.0

// Detector finds header lines and turns them into column layouts.
type Detector struct {
	Labels   []Label
	Required []string
	Margin   float64
}

// NewDetector returns a detector for the given labels. Required keywords must
// all appear in a line for it to count as a header.
func NewDetector(labels []Label, required []string) *Detector {
	if len(labels) == 0 {
		labels = DefaultLabels()
	}
	return &Detector{Labels: labels, Required: required, Margin: DefaultMargin}
}

// FindHeader returns the position of the first line containing every
// required keyword.
func (d *Detector) FindHeader(lines []model.Line) (int, bool) {
	for i, line := range lines {
		if d.isHeader(line) {
			return i, true
		}
	}
	return -1, false
}

func (d *Detector) isHeader(line model.Line) bool {
	if len(d.Required) == 0 {
		return false
	}
	text := Fold(line.Text())
	for _, k := range d.Required {
		if !strings.Contains(text, Fold(k)) {
			return false
		}
	}
	return true
}

// Detect builds the layout of the first header line. It returns false when
// no header is found or no word of it matches a label.
func (d *Detector) Detect(lines []model.Line, pageWidth float64) (model.ColumnLayout, bool) {
	idx, ok := d.FindHeader(lines)
	if !ok {
		return model.ColumnLayout{}, false
	}
	header := lines[idx]

	var columns []model.Column
	seen := make(map[string]bool)
	for _, w := range header.Words {
		folded := Fold(w.Text)
		for _, l := range d.Labels {
			if !l.Matches(folded) {
				continue
			}
			if !seen[l.Column] {
				seen[l.Column] = true
				columns = append(columns, model.Column{Name: l.Column, X: w.X0})
			}
			break
		}
	}
	if len(columns) == 0 {
		return model.ColumnLayout{}, false
	}

	layout := model.NewColumnLayout(columns, pageWidth, d.Margin)
	layout.HeaderTop = header.Top
	return layout, true
}

// Body returns the lines below the header line at idx.
func Body(lines []model.Line, idx int) []model.Line {
	if idx < 0 || idx+1 >= len(lines) {
		return nil
	}
	return lines[idx+1:]
}
