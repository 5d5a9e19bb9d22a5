// Package sheet reads multi-sheet tabular sources. Row 1 of each sheet holds
// the field names; every cell keeps its literal value apart from any formula
// it was computed from.
package sheet

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrSheetNotFound is returned when a source has no sheet with the requested name.
var ErrSheetNotFound = errors.New("sheet not found")

// Cell is one value of a row.
type Cell struct {
	Value   string
	Formula string
}

// IsFormula reports whether the cell holds an unresolved formula rather than
// a literal or a cached computed value.
func (c Cell) IsFormula() bool {
	if strings.HasPrefix(strings.TrimSpace(c.Value), "=") {
		return true
	}
	return c.Formula != "" && c.Value == ""
}

// Sheet is a named table of rows. Rows[0] is the header row.
type Sheet struct {
	Name string
	Rows [][]Cell
}

// Header returns the trimmed field names of row 1.
func (s *Sheet) Header() []string {
	if len(s.Rows) == 0 {
		return nil
	}
	names := make([]string, len(s.Rows[0]))
	for i, c := range s.Rows[0] {
		names[i] = strings.TrimSpace(c.Value)
	}
	return names
}

// Source exposes sheets by name.
type Source interface {
	Sheet(name string) (*Sheet, error)
	Close() error
}

// Memory is a Source held entirely in memory.
type Memory map[string]*Sheet

// NewMemory builds a Memory source from plain string rows, one entry per sheet.
func NewMemory(sheets map[string][][]string) Memory {
	m := make(Memory, len(sheets))
	for name, rows := range sheets {
		m[name] = FromStrings(name, rows)
	}
	return m
}

func (m Memory) Sheet(name string) (*Sheet, error) {
	s, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, name)
	}
	return s, nil
}

func (m Memory) Close() error { return nil }

// FromStrings converts string rows into a Sheet. Values starting with "="
// are kept as formulas.
func FromStrings(name string, rows [][]string) *Sheet {
	s := &Sheet{Name: name, Rows: make([][]Cell, len(rows))}
	for i, row := range rows {
		cells := make([]Cell, len(row))
		for j, v := range row {
			if strings.HasPrefix(v, "=") {
				cells[j] = Cell{Formula: strings.TrimPrefix(v, "=")}
				continue
			}
			cells[j] = Cell{Value: v}
		}
		s.Rows[i] = cells
	}
	return s
}

// Open picks a reader by path: a directory of CSV files, a zip archive of
// CSV files, or an .xlsx workbook.
func Open(path string, opts Options) (Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source %s: %w", path, err)
	}
	if info.IsDir() {
		return OpenCSVDir(path)
	}
	if strings.EqualFold(filepath.Ext(path), ".zip") {
		return OpenCSVZip(path)
	}
	return OpenWorkbook(path, opts)
}
