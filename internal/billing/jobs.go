package billing

import (
	"context"
	"time"

	"github.com/beesaferoot/imobipro/internal/batch"
	"github.com/beesaferoot/imobipro/internal/period"
	"github.com/beesaferoot/imobipro/internal/store"
	"github.com/beesaferoot/imobipro/models"
)

// RunPropertyTax generates the annual property tax and appends the outcome
// to the run log.
func (g *Generator) RunPropertyTax(ctx context.Context, dueDate string) (batch.Result, error) {
	res, err := g.GenerateAnnualPropertyTax(ctx, dueDate)
	if err != nil {
		return res, err
	}
	year := dueDate
	if t, err := period.ParseISO(dueDate); err == nil {
		year = period.Year(t)
	}
	g.record(ctx, models.RunPropertyTax, year, res)
	return res, nil
}

// RunCondo generates the condo fees of today's month and records the run.
func (g *Generator) RunCondo(ctx context.Context, today time.Time) (batch.Result, error) {
	res, err := g.GenerateMonthlyCondoFee(ctx, today)
	if err != nil {
		return res, err
	}
	g.record(ctx, models.RunCondo, period.Month(today), res)
	return res, nil
}

// RunBilling generates the receipts of today's month and records the run.
func (g *Generator) RunBilling(ctx context.Context, today time.Time) (batch.Result, error) {
	res, err := g.GenerateMonthlyBilling(ctx, today)
	if err != nil {
		return res, err
	}
	g.record(ctx, models.RunBilling, period.Month(today), res)
	return res, nil
}

func (g *Generator) record(ctx context.Context, kind, key string, res batch.Result) {
	g.log.Printf("%s %s: %d created, %d ignored, %d errored", kind, key, res.Created, res.Ignored, res.Errored())
	if _, err := store.RecordRun(ctx, g.store, kind, key, res, time.Now()); err != nil {
		g.log.Printf("%s %s: failed to record run: %v", kind, key, err)
	}
}
