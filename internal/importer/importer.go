// Package importer migrates a legacy rental spreadsheet into the store.
//
// Sheets are processed in dependency order: properties and people first,
// then contracts, which reference both, then expenses and receipts. Each
// stage records the ids it assigns in an XRef so later stages can resolve
// spreadsheet-local identifiers. The migration is append-only and
// best-effort: a rejected row is reported and skipped, and rows already
// inserted are never rolled back.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/beesaferoot/imobipro/internal/batch"
	"github.com/beesaferoot/imobipro/internal/sheet"
	"github.com/beesaferoot/imobipro/internal/store"
)

// Sheet names of the legacy workbook.
const (
	SheetProperties = "imoveis"
	SheetPeople     = "pessoas"
	SheetContracts  = "contratos"
	SheetExpenses   = "despesas"
	SheetReceipts   = "receitas"
)

// XRef maps spreadsheet-local identifiers to store ids, per entity kind.
// It lives for a single run.
type XRef struct {
	Properties map[int]uint
	People     map[int]uint
	Contracts  map[int]uint
}

// NewXRef returns an empty cross-reference.
func NewXRef() *XRef {
	return &XRef{
		Properties: map[int]uint{},
		People:     map[int]uint{},
		Contracts:  map[int]uint{},
	}
}

// StageReport is the outcome of one sheet.
type StageReport struct {
	Entity  string `json:"entity"`
	Sheet   string `json:"sheet"`
	Skipped bool   `json:"skipped"`
	// Formulas counts the unresolved formula cells that were left out.
	Formulas int `json:"dropped_formulas"`
	batch.Result
}

// Report aggregates every stage of a run.
type Report struct {
	Stages []StageReport `json:"stages"`
	XRef   *XRef         `json:"-"`
}

// Total merges the stage results into one batch result.
func (r *Report) Total() batch.Result {
	var total batch.Result
	for _, st := range r.Stages {
		total.Created += st.Created
		total.Ignored += st.Ignored
		total.Failures = append(total.Failures, st.Failures...)
	}
	return total
}

// FirstErrors returns up to n failure messages, prefixed with their sheet.
func (r *Report) FirstErrors(n int) []string {
	var out []string
	for _, st := range r.Stages {
		for _, f := range st.Failures {
			if n > 0 && len(out) == n {
				return out
			}
			out = append(out, fmt.Sprintf("%s: %s", st.Sheet, f))
		}
	}
	return out
}

// Defaults fills property fields the spreadsheet leaves blank.
type Defaults struct {
	City  string
	State string
}

// Importer runs migrations against a store.
type Importer struct {
	store    store.Store
	log      *log.Logger
	defaults Defaults
}

// New returns an Importer. A nil logger uses log.Default().
func New(s store.Store, logger *log.Logger, defaults Defaults) *Importer {
	if logger == nil {
		logger = log.Default()
	}
	return &Importer{store: s, log: logger, defaults: defaults}
}

type stageFunc func(ctx context.Context, s *sheet.Sheet, xref *XRef) StageReport

// Run migrates every sheet of src in dependency order. A missing sheet
// skips its stage; a sheet that exists but cannot be read aborts the run
// and returns the stages completed so far.
func (im *Importer) Run(ctx context.Context, src sheet.Source) (*Report, error) {
	if src == nil {
		return nil, errors.New("no source to import")
	}

	stages := []struct {
		entity string
		sheet  string
		run    stageFunc
	}{
		{"property", SheetProperties, im.ImportProperties},
		{"person", SheetPeople, im.ImportPeople},
		{"contract", SheetContracts, im.ImportContracts},
		{"expense", SheetExpenses, im.ImportExpenses},
		{"receipt", SheetReceipts, im.ImportReceipts},
	}

	xref := NewXRef()
	report := &Report{XRef: xref}
	for _, st := range stages {
		s, err := src.Sheet(st.sheet)
		if errors.Is(err, sheet.ErrSheetNotFound) {
			im.log.Printf("import: sheet %q not found, skipping %s stage", st.sheet, st.entity)
			report.Stages = append(report.Stages, StageReport{Entity: st.entity, Sheet: st.sheet, Skipped: true})
			continue
		}
		if err != nil {
			return report, fmt.Errorf("failed to read sheet %s: %w", st.sheet, err)
		}
		report.Stages = append(report.Stages, st.run(ctx, s, xref))
	}

	total := report.Total()
	im.log.Printf("import: %d rows created, %d rejected", total.Created, total.Errored())
	return report, nil
}

type rowFunc func(ctx context.Context, rec record) error

// stage applies fn to every non-empty row of s, collecting failures.
func (im *Importer) stage(ctx context.Context, entity string, s *sheet.Sheet, cols columnMap, fn rowFunc) StageReport {
	rep := StageReport{Entity: entity, Sheet: s.Name}

	records, dropped := readRecords(s, cols)
	rep.Formulas = dropped
	if dropped > 0 {
		im.log.Printf("import: %s: ignored %d formula cells without a computed value", s.Name, dropped)
	}

	for _, rec := range records {
		if err := fn(ctx, rec); err != nil {
			im.log.Printf("import: %s row %d: %v", s.Name, rec.row, err)
			rep.Fail(rec.row, err)
			continue
		}
		rep.Created++
	}

	im.log.Printf("import: %s: %d created, %d rejected", s.Name, rep.Created, rep.Errored())
	return rep
}
