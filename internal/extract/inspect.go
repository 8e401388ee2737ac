package extract

import (
	"fmt"

	"github.com/Veraticus/sift/internal/common"
	"github.com/Veraticus/sift/internal/layout"
	"github.com/Veraticus/sift/internal/model"
)

// Inspection is the text layer of one page as the layout detector sees it.
type Inspection struct {
	Page   int
	Width  float64
	Lines  []model.Line
	Header int
	Layout model.ColumnLayout
	Found  bool
}

// HeaderLine returns the detected header line.
func (i Inspection) HeaderLine() (model.Line, bool) {
	if !i.Found || i.Header < 0 || i.Header >= len(i.Lines) {
		return model.Line{}, false
	}
	return i.Lines[i.Header], true
}

// Inspect reads one page and runs header detection on it.
func Inspect(src PageSource, page int, detector *layout.Detector) (Inspection, error) {
	if page < 1 || page > src.PageCount() {
		return Inspection{}, common.NewUserError(
			fmt.Sprintf("page %d out of range (document has %d pages)", page, src.PageCount()),
			common.ErrInvalidInput)
	}
	if detector == nil {
		detector = layout.NewDetector(nil, nil)
	}

	p, err := src.Words(page)
	if err != nil {
		return Inspection{}, PageError{Page: page, Err: err}
	}

	out := Inspection{Page: page, Width: p.Width, Lines: p.Lines(), Header: -1}
	if idx, ok := detector.FindHeader(out.Lines); ok {
		out.Header = idx
	}
	out.Layout, out.Found = detector.Detect(out.Lines, p.Width)
	return out, nil
}
