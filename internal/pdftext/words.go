package pdftext

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/Veraticus/sift/internal/model"
)

// Glyph is a run of text drawn at one position, in PDF coordinates
// (origin bottom-left, Y on the baseline).
type Glyph struct {
	Text string
	X    float64
	Y    float64
	W    float64
	Size float64
}

type box struct {
	text   string
	x0, x1 float64
	top    float64
	bottom float64
}

// AssembleWords turns glyphs into words. Glyphs whose tops are within yTol of
// each other share a line; inside a line a gap wider than xTol or a blank
// glyph ends the current word.
func AssembleWords(glyphs []Glyph, pageHeight, xTol, yTol float64) []model.Word {
	boxes := make([]box, 0, len(glyphs))
	for _, g := range glyphs {
		if g.Text == "" {
			continue
		}
		size := g.Size
		if size <= 0 {
			size = 1
		}
		bottom := pageHeight - g.Y
		boxes = append(boxes, box{
			text:   g.Text,
			x0:     g.X,
			x1:     g.X + g.W,
			top:    bottom - size,
			bottom: bottom,
		})
	}
	if len(boxes) == 0 {
		return nil
	}

	sort.SliceStable(boxes, func(i, j int) bool { return boxes[i].top < boxes[j].top })

	var words []model.Word
	start := 0
	for i := 1; i <= len(boxes); i++ {
		if i < len(boxes) && boxes[i].top-boxes[i-1].top <= yTol {
			continue
		}
		words = append(words, lineWords(boxes[start:i], xTol)...)
		start = i
	}

	return words
}

func lineWords(line []box, xTol float64) []model.Word {
	sort.SliceStable(line, func(i, j int) bool { return line[i].x0 < line[j].x0 })

	var (
		words []model.Word
		cur   *model.Word
		text  strings.Builder
	)
	flush := func() {
		if cur == nil {
			return
		}
		cur.Text = text.String()
		words = append(words, *cur)
		cur = nil
		text.Reset()
	}

	for _, b := range line {
		if strings.TrimFunc(b.text, unicode.IsSpace) == "" {
			flush()
			continue
		}
		if cur != nil && b.x0 > cur.X1+xTol {
			flush()
		}
		if cur == nil {
			cur = &model.Word{X0: b.x0, X1: b.x1, Top: b.top, Bottom: b.bottom}
		}
		text.WriteString(b.text)
		cur.X1 = math.Max(cur.X1, b.x1)
		cur.Top = math.Min(cur.Top, b.top)
		cur.Bottom = math.Max(cur.Bottom, b.bottom)
	}
	flush()

	return words
}

// GroupLines groups words into lines keyed by their rounded top, in reading
// order. Words on a line are sorted left to right.
func GroupLines(words []model.Word) []model.Line {
	byTop := make(map[int][]model.Word)
	for _, w := range words {
		key := int(math.Round(w.Top))
		byTop[key] = append(byTop[key], w)
	}

	tops := make([]int, 0, len(byTop))
	for top := range byTop {
		tops = append(tops, top)
	}
	sort.Ints(tops)

	lines := make([]model.Line, 0, len(tops))
	for _, top := range tops {
		ws := byTop[top]
		sort.SliceStable(ws, func(i, j int) bool { return ws[i].X0 < ws[j].X0 })
		lines = append(lines, model.Line{Top: top, Words: ws})
	}
	return lines
}

// ClusterLines groups words whose tops lie within tol of the first word of
// the line. Line.Top is the rounded top of that first word.
func ClusterLines(words []model.Word, tol float64) []model.Line {
	sorted := append([]model.Word(nil), words...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Top < sorted[j].Top })

	var lines []model.Line
	start := 0
	for i := 1; i <= len(sorted); i++ {
		if i < len(sorted) && sorted[i].Top-sorted[start].Top <= tol {
			continue
		}
		ws := sorted[start:i]
		sort.SliceStable(ws, func(a, b int) bool { return ws[a].X0 < ws[b].X0 })
		lines = append(lines, model.Line{Top: int(math.Round(ws[0].Top)), Words: ws})
		start = i
	}
	return lines
}
