package workbook

import (
	"fmt"
	"unicode/utf8"

	"github.com/Veraticus/sift/internal/model"
	"github.com/xuri/excelize/v2"
)

// Style selects the formatting applied by Save.
type Style int

const (
	// StylePlain writes a bold centered header.
	StylePlain Style = iota
	// StyleReport adds a colored header, borders, zebra rows and wrapped text.
	StyleReport
)

const (
	plainWidthCap  = 50
	reportWidthCap = 80
	reportMinWidth = 10
)

// Sheet is a named dataset to write.
type Sheet struct {
	Name string
	Data *model.Dataset
}

// Book is an ordered list of sheets.
type Book struct {
	Sheets []Sheet
}

// Single builds a one-sheet book.
func Single(name string, ds *model.Dataset) Book {
	return Book{Sheets: []Sheet{{Name: name, Data: ds}}}
}

// Save writes the book to path, replacing any file already there.
// Sheets without records still carry their header row.
func Save(path string, book Book, style Style) error {
	if len(book.Sheets) == 0 {
		return fmt.Errorf("no sheet to write to %s", path)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	styles, err := newStyles(f, style)
	if err != nil {
		return err
	}

	for i, sh := range book.Sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sh.Name); err != nil {
				return fmt.Errorf("failed to name sheet %q: %w", sh.Name, err)
			}
		} else if _, err := f.NewSheet(sh.Name); err != nil {
			return fmt.Errorf("failed to create sheet %q: %w", sh.Name, err)
		}

		if err := writeSheet(f, sh, styles); err != nil {
			return fmt.Errorf("failed to write sheet %q: %w", sh.Name, err)
		}
	}
	f.SetActiveSheet(0)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

type sheetStyles struct {
	header   int
	cell     int
	zebra    int
	widthCap int
	minWidth int
}

func newStyles(f *excelize.File, style Style) (sheetStyles, error) {
	if style == StylePlain {
		header, err := f.NewStyle(&excelize.Style{
			Font:      &excelize.Font{Bold: true},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		})
		if err != nil {
			return sheetStyles{}, fmt.Errorf("failed to create header style: %w", err)
		}
		return sheetStyles{header: header, widthCap: plainWidthCap}, nil
	}

	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	wrap := &excelize.Alignment{Vertical: "top", WrapText: true}

	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"366092"}},
		Border:    border,
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	if err != nil {
		return sheetStyles{}, fmt.Errorf("failed to create header style: %w", err)
	}
	cell, err := f.NewStyle(&excelize.Style{Border: border, Alignment: wrap})
	if err != nil {
		return sheetStyles{}, fmt.Errorf("failed to create cell style: %w", err)
	}
	zebra, err := f.NewStyle(&excelize.Style{
		Border:    border,
		Alignment: wrap,
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"F2F2F2"}},
	})
	if err != nil {
		return sheetStyles{}, fmt.Errorf("failed to create zebra style: %w", err)
	}

	return sheetStyles{header: header, cell: cell, zebra: zebra, widthCap: reportWidthCap, minWidth: reportMinWidth}, nil
}

func writeSheet(f *excelize.File, sh Sheet, st sheetStyles) error {
	ds := sh.Data
	if ds == nil {
		ds = &model.Dataset{}
	}
	if len(ds.Columns) == 0 {
		return nil
	}

	widths := make([]int, len(ds.Columns))
	header := make([]any, len(ds.Columns))
	for j, c := range ds.Columns {
		header[j] = c
		widths[j] = utf8.RuneCountInString(c)
	}
	if err := f.SetSheetRow(sh.Name, "A1", &header); err != nil {
		return err
	}

	for i, r := range ds.Records {
		row := make([]any, len(ds.Columns))
		for j, c := range ds.Columns {
			v := r.Get(c)
			row[j] = v.Any()
			widths[j] = max(widths[j], utf8.RuneCountInString(v.String()))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sh.Name, cell, &row); err != nil {
			return err
		}
	}

	last, err := excelize.ColumnNumberToName(len(ds.Columns))
	if err != nil {
		return err
	}

	if err := f.SetCellStyle(sh.Name, "A1", last+"1", st.header); err != nil {
		return err
	}
	if st.cell != 0 {
		for i := range ds.Records {
			line := i + 2
			id := st.cell
			if line%2 == 0 {
				id = st.zebra
			}
			if err := f.SetCellStyle(sh.Name, fmt.Sprintf("A%d", line), fmt.Sprintf("%s%d", last, line), id); err != nil {
				return err
			}
		}
	}

	for j, w := range widths {
		name, err := excelize.ColumnNumberToName(j + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sh.Name, name, name, columnWidth(w, st)); err != nil {
			return err
		}
	}

	return f.SetPanes(sh.Name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func columnWidth(longest int, st sheetStyles) float64 {
	w := min(longest+2, st.widthCap)
	return float64(max(w, st.minWidth))
}
