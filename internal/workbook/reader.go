// Package workbook reads and writes the spreadsheets handled by sift.
package workbook

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/Veraticus/sift/internal/common"
	"github.com/Veraticus/sift/internal/model"
	"github.com/xuri/excelize/v2"
)

// ReadOptions configures Read.
type ReadOptions struct {
	// Sheet to read. The first sheet is used when empty.
	Sheet string
	// Coerce lists columns converted to numbers. Values that do not parse
	// become empty.
	Coerce []string
}

// Read loads one sheet as a dataset. The first row holds the column names;
// every record carries its spreadsheet line number.
func Read(path string, opts ReadOptions) (*model.Dataset, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, common.NewUserError(fmt.Sprintf("file %q does not exist", path), common.ErrMissingInput)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open workbook %s: %v", common.ErrInvalidInput, path, err)
	}
	defer func() { _ = f.Close() }()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: workbook %s has no sheet", common.ErrInvalidInput, path)
		}
		sheet = sheets[0]
	} else if idx, idxErr := f.GetSheetIndex(sheet); idxErr != nil || idx < 0 {
		return nil, common.NewUserError(
			fmt.Sprintf("sheet %q not found in %s; available sheets: %q", sheet, path, f.GetSheetList()),
			common.ErrMissingInput)
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}

	ds := &model.Dataset{}
	if len(rows) == 0 {
		return ds, nil
	}
	ds.Columns = model.UniqueNames(rows[0], "Unnamed")

	for i, row := range rows[1:] {
		line := i + 2
		rec := model.NewRecord(line)
		for j, col := range ds.Columns {
			if j >= len(row) {
				rec.Set(col, model.Empty())
				continue
			}
			rec.Set(col, cellValue(f, sheet, j+1, line, row[j]))
		}
		ds.Records = append(ds.Records, rec)
	}

	for _, col := range opts.Coerce {
		if ds.HasColumn(col) {
			CoerceNumeric(ds, col)
		}
	}

	return ds, nil
}

// cellValue types a raw cell: numeric cells become numbers, text stays text.
func cellValue(f *excelize.File, sheet string, col, row int, raw string) model.Value {
	if strings.TrimSpace(raw) == "" {
		return model.Empty()
	}

	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return model.Text(raw)
	}
	typ, err := f.GetCellType(sheet, cell)
	if err != nil {
		return model.Text(raw)
	}

	switch typ {
	case excelize.CellTypeUnset, excelize.CellTypeNumber, excelize.CellTypeFormula:
		if n, parseErr := strconv.ParseFloat(raw, 64); parseErr == nil {
			return model.Number(n)
		}
	}
	return model.Text(raw)
}

// CoerceNumeric converts a column to numbers in place. Spaces are removed and
// a decimal comma becomes a dot; anything still unparseable becomes empty.
func CoerceNumeric(ds *model.Dataset, column string) {
	for i := range ds.Records {
		ds.Records[i].Set(column, ParseNumber(ds.Records[i].Get(column)))
	}
}

var numberCleaner = strings.NewReplacer(" ", "", "\u00a0", "", ",", ".")

// ParseNumber returns v as a number, or empty when it does not read as one.
func ParseNumber(v model.Value) model.Value {
	switch v.Kind {
	case model.KindNumber:
		return v
	case model.KindString:
		n, err := strconv.ParseFloat(numberCleaner.Replace(v.Str), 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return model.Empty()
		}
		return model.Number(n)
	default:
		return model.Empty()
	}
}

// SheetNames lists the sheets of a workbook in order.
func SheetNames(path string) ([]string, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, common.NewUserError(fmt.Sprintf("file %q does not exist", path), common.ErrMissingInput)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open workbook %s: %v", common.ErrInvalidInput, path, err)
	}
	defer func() { _ = f.Close() }()
	return f.GetSheetList(), nil
}
