package sheet

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Options controls how a workbook is read.
type Options struct {
	// EvaluateFormulas asks the reader to calculate formula cells that were
	// saved without a cached value instead of reporting them as formulas.
	EvaluateFormulas bool
}

// Workbook is a Source backed by an .xlsx file.
type Workbook struct {
	f    *excelize.File
	opts Options
}

// OpenWorkbook opens the workbook at path.
func OpenWorkbook(path string, opts Options) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	return &Workbook{f: f, opts: opts}, nil
}

// ReadWorkbook reads a workbook from r, such as an uploaded file.
func ReadWorkbook(r io.Reader, opts Options) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook: %w", err)
	}
	return &Workbook{f: f, opts: opts}, nil
}

func (w *Workbook) Sheet(name string) (*Sheet, error) {
	actual := ""
	for _, n := range w.f.GetSheetList() {
		if strings.EqualFold(strings.TrimSpace(n), name) {
			actual = n
			break
		}
	}
	if actual == "" {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, name)
	}

	rows, err := w.f.GetRows(actual, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", actual, err)
	}

	width := 0
	if len(rows) > 0 {
		width = len(rows[0])
	}

	s := &Sheet{Name: actual, Rows: make([][]Cell, len(rows))}
	for i, row := range rows {
		n := len(row)
		if n < width {
			n = width
		}
		cells := make([]Cell, n)
		for j := range cells {
			if j < len(row) {
				cells[j].Value = row[j]
			}
			if i == 0 || cells[j].Value != "" {
				continue
			}
			if err := w.resolveFormula(actual, j+1, i+1, &cells[j]); err != nil {
				return nil, err
			}
		}
		s.Rows[i] = cells
	}
	return s, nil
}

// resolveFormula fills in the formula of an empty cell, and its value when
// formulas are evaluated.
func (w *Workbook) resolveFormula(sheet string, col, row int, c *Cell) error {
	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	formula, err := w.f.GetCellFormula(sheet, ref)
	if err != nil {
		return fmt.Errorf("failed to read formula %s!%s: %w", sheet, ref, err)
	}
	if formula == "" {
		return nil
	}
	c.Formula = formula

	if w.opts.EvaluateFormulas {
		// a formula excelize cannot calculate stays unresolved
		if v, err := w.f.CalcCellValue(sheet, ref, excelize.Options{RawCellValue: true}); err == nil {
			c.Value = v
		}
	}
	return nil
}

func (w *Workbook) Close() error {
	return w.f.Close()
}
