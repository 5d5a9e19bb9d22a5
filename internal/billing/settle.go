package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/beesaferoot/imobipro/internal/period"
	"github.com/beesaferoot/imobipro/internal/store"
	"github.com/beesaferoot/imobipro/models"
)

// PayExpense marks an expense as paid on today for its predicted amount.
// A missing expense yields store.ErrNotFound.
func (g *Generator) PayExpense(ctx context.Context, id uint, today time.Time) error {
	if today.IsZero() {
		return ErrDateRequired
	}

	var e models.Expense
	if err := g.store.Get(ctx, &e, id); err != nil {
		return err
	}

	ok, err := g.store.Update(ctx, &models.Expense{}, id, map[string]any{
		"paid_amount": e.PredictedAmount,
		"paid_on":     today.Format(period.ISO),
	})
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: expense %d", store.ErrNotFound, id)
	}

	g.log.Printf("expense %d paid on %s", id, today.Format(period.ISO))
	return nil
}

// ReceiveReceipt marks a receipt as received on today for its total due.
func (g *Generator) ReceiveReceipt(ctx context.Context, id uint, today time.Time) error {
	if today.IsZero() {
		return ErrDateRequired
	}

	var r models.Receipt
	if err := g.store.Get(ctx, &r, id); err != nil {
		return err
	}

	ok, err := g.store.Update(ctx, &models.Receipt{}, id, map[string]any{
		"received_amount": decimal.NewNullDecimal(r.TotalDue),
		"received_on":     today.Format(period.ISO),
		"status":          models.ReceiptReceived,
	})
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: receipt %d", store.ErrNotFound, id)
	}

	g.log.Printf("receipt %d received on %s", id, today.Format(period.ISO))
	return nil
}
