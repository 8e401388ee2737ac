// Package pdftext extracts positioned words from PDF pages.
package pdftext

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Veraticus/sift/internal/common"
	"github.com/Veraticus/sift/internal/model"
	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Default word assembly tolerances, in points.
const (
	DefaultXTolerance = 2.0
	DefaultYTolerance = 2.0
)

// Options configures Open.
type Options struct {
	XTolerance float64
	YTolerance float64
	Logger     *slog.Logger
}

// Page is the text layer of one page, in top-down coordinates.
type Page struct {
	Number int
	Width  float64
	Height float64
	Words  []model.Word
}

// Lines groups the page words into text lines.
func (p Page) Lines() []model.Line {
	return GroupLines(p.Words)
}

// Document is an open PDF file.
type Document struct {
	path   string
	file   io.Closer
	reader *pdf.Reader
	pages  int
	opts   Options
}

// Open opens a PDF. The page count comes from pdfcpu when the file validates,
// and from the text reader otherwise.
func Open(path string, opts Options) (*Document, error) {
	if opts.XTolerance <= 0 {
		opts.XTolerance = DefaultXTolerance
	}
	if opts.YTolerance <= 0 {
		opts.YTolerance = DefaultYTolerance
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, common.NewUserError(fmt.Sprintf("file %q does not exist", path), common.ErrMissingInput)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open PDF %s: %v", common.ErrInvalidInput, path, err)
	}

	doc := &Document{path: path, file: f, reader: r, opts: opts}

	count, err := validatedPageCount(path)
	if err != nil {
		doc.pages = r.NumPage()
		opts.Logger.Warn("PDF did not validate, using text reader page count",
			"path", path, "pages", doc.pages, "error", err)
	} else {
		doc.pages = count
	}

	return doc, nil
}

func validatedPageCount(path string) (int, error) {
	conf := pdfmodel.NewDefaultConfiguration()
	conf.ValidationMode = pdfmodel.ValidationRelaxed
	if err := api.ValidateFile(path, conf); err != nil {
		return 0, err
	}
	return api.PageCountFile(path)
}

// Path returns the file the document was opened from.
func (d *Document) Path() string {
	return d.path
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	return d.pages
}

// Close releases the underlying file.
func (d *Document) Close() error {
	return d.file.Close()
}

// Words returns the words of a 1-based page. A page the text reader cannot
// decode yields an error instead of a panic.
func (d *Document) Words(number int) (page Page, err error) {
	if number < 1 || number > d.reader.NumPage() {
		return Page{}, fmt.Errorf("%w: page %d out of range 1-%d", common.ErrInvalidInput, number, d.reader.NumPage())
	}

	defer func() {
		if r := recover(); r != nil {
			page = Page{}
			err = fmt.Errorf("failed to decode page %d: %v", number, r)
		}
	}()

	p := d.reader.Page(number)
	if p.V.IsNull() {
		return Page{}, fmt.Errorf("page %d has no content", number)
	}

	width, height := mediaBox(p.V)
	content := p.Content()

	glyphs := make([]Glyph, 0, len(content.Text))
	for _, t := range content.Text {
		glyphs = append(glyphs, Glyph{Text: t.S, X: t.X, Y: t.Y, W: t.W, Size: t.FontSize})
	}

	return Page{
		Number: number,
		Width:  width,
		Height: height,
		Words:  AssembleWords(glyphs, height, d.opts.XTolerance, d.opts.YTolerance),
	}, nil
}

// mediaBox returns the page size, following inherited attributes.
func mediaBox(v pdf.Value) (float64, float64) {
	for depth := 0; !v.IsNull() && depth < 32; depth++ {
		box := v.Key("MediaBox")
		if box.Kind() == pdf.Array && box.Len() == 4 {
			x0, y0 := box.Index(0).Float64(), box.Index(1).Float64()
			x1, y1 := box.Index(2).Float64(), box.Index(3).Float64()
			return x1 - x0, y1 - y0
		}
		v = v.Key("Parent")
	}
	// US Letter
	return 612, 792
}
