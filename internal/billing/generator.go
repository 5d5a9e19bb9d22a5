// Package billing derives the recurring charges of the current period from
// the templates stored on properties and contracts.
//
// Generation is purely additive and idempotent per period: a charge whose
// reference period already has a row of the same kind is skipped and
// reported as ignored, never updated. A failure on one property or contract
// is recorded in the batch result and does not stop the others.
package billing

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/beesaferoot/imobipro/internal/batch"
	"github.com/beesaferoot/imobipro/internal/period"
	"github.com/beesaferoot/imobipro/internal/store"
	"github.com/beesaferoot/imobipro/models"
)

var (
	// ErrDueDateRequired aborts annual tax generation before any insert.
	ErrDueDateRequired = errors.New("due date is required")
	// ErrDateRequired is returned when the current date is the zero time.
	ErrDateRequired = errors.New("current date is required")
)

// Generator creates Expense and Receipt rows for the current period.
type Generator struct {
	store store.Store
	log   *log.Logger
}

// NewGenerator returns a Generator writing through s. A nil logger uses log.Default().
func NewGenerator(s store.Store, logger *log.Logger) *Generator {
	if logger == nil {
		logger = log.Default()
	}
	return &Generator{store: s, log: logger}
}

// GenerateAnnualPropertyTax creates one property-tax expense per property
// with a positive annual tax, for the year of dueDate (YYYY-MM-DD).
// Properties already holding a property-tax expense in that year are ignored.
func (g *Generator) GenerateAnnualPropertyTax(ctx context.Context, dueDate string) (batch.Result, error) {
	var res batch.Result

	dueDate = strings.TrimSpace(dueDate)
	if dueDate == "" {
		return res, ErrDueDateRequired
	}
	due, err := period.ParseISO(dueDate)
	if err != nil {
		return res, batch.Invalid("due_date", "%v", err)
	}
	dueDate = due.Format(period.ISO)
	reference := period.FirstOfYear(due.Year())
	motive := fmt.Sprintf("Property tax %d", due.Year())

	var properties []models.Property
	if err := g.store.Find(ctx, &properties, "annual_tax > ?", 0); err != nil {
		return res, fmt.Errorf("failed to list properties: %w", err)
	}

	for i := range properties {
		p := &properties[i]

		covered, err := g.covered(ctx, p.ID, models.ExpensePropertyTax, period.Year(due))
		if err != nil {
			g.fail(&res, "property-tax", p.ID, err)
			continue
		}
		if covered {
			res.Ignored++
			continue
		}

		expense := &models.Expense{
			PropertyID:      p.ID,
			Type:            models.ExpensePropertyTax,
			Motive:          strPtr(motive),
			ReferencePeriod: strPtr(reference),
			PredictedAmount: p.AnnualTax,
			DueDate:         strPtr(dueDate),
			Recurring:       true,
		}
		if err := g.store.Insert(ctx, expense); err != nil {
			g.fail(&res, "property-tax", p.ID, err)
			continue
		}
		res.Created++
	}

	return res, nil
}

// GenerateMonthlyCondoFee creates one condo expense per property with a
// positive suggested condo fee, for the month of today. The due date falls
// on the property's condo due day clipped to the month length.
func (g *Generator) GenerateMonthlyCondoFee(ctx context.Context, today time.Time) (batch.Result, error) {
	var res batch.Result
	if today.IsZero() {
		return res, ErrDateRequired
	}

	reference := period.FirstOfMonth(today)
	motive := "Condo " + period.MonthLabel(today)

	var properties []models.Property
	if err := g.store.Find(ctx, &properties, "suggested_condo_fee > ?", 0); err != nil {
		return res, fmt.Errorf("failed to list properties: %w", err)
	}

	for i := range properties {
		p := &properties[i]

		covered, err := g.covered(ctx, p.ID, models.ExpenseCondo, period.Month(today))
		if err != nil {
			g.fail(&res, "condo", p.ID, err)
			continue
		}
		if covered {
			res.Ignored++
			continue
		}

		day := models.DefaultDueDay
		if p.CondoDueDay != nil && *p.CondoDueDay > 0 {
			day = *p.CondoDueDay
		}

		expense := &models.Expense{
			PropertyID:      p.ID,
			Type:            models.ExpenseCondo,
			Motive:          strPtr(motive),
			ReferencePeriod: strPtr(reference),
			PredictedAmount: p.SuggestedCondoFee,
			DueDate:         strPtr(period.DueDate(today, day)),
			Recurring:       true,
		}
		if err := g.store.Insert(ctx, expense); err != nil {
			g.fail(&res, "condo", p.ID, err)
			continue
		}
		res.Created++
	}

	return res, nil
}

// GenerateMonthlyBilling creates one pending receipt per active or renewed
// contract for the month of today. Any existing receipt of the contract in
// that month, whatever its amounts, marks the period as covered.
func (g *Generator) GenerateMonthlyBilling(ctx context.Context, today time.Time) (batch.Result, error) {
	var res batch.Result
	if today.IsZero() {
		return res, ErrDateRequired
	}

	reference := period.FirstOfMonth(today)
	notes := "Automatic billing " + period.MonthLabel(today)

	var contracts []models.Contract
	if err := g.store.Find(ctx, &contracts, "status IN ?", models.BillableStatuses()); err != nil {
		return res, fmt.Errorf("failed to list contracts: %w", err)
	}

	for i := range contracts {
		c := &contracts[i]

		n, err := g.store.Count(ctx, &models.Receipt{}, "contract_id = ? AND reference_period LIKE ?", c.ID, period.Month(today)+"-%")
		if err != nil {
			g.fail(&res, "billing", c.ID, err)
			continue
		}
		if n > 0 {
			res.Ignored++
			continue
		}

		receipt, err := g.buildReceipt(ctx, c, today)
		if err != nil {
			g.fail(&res, "billing", c.ID, err)
			continue
		}
		receipt.ReferencePeriod = strPtr(reference)
		receipt.Notes = strPtr(notes)

		if err := g.store.Insert(ctx, receipt); err != nil {
			g.fail(&res, "billing", c.ID, err)
			continue
		}
		res.Created++
	}

	return res, nil
}

func (g *Generator) buildReceipt(ctx context.Context, c *models.Contract, today time.Time) (*models.Receipt, error) {
	var p models.Property
	if err := g.store.Get(ctx, &p, c.PropertyID); err != nil {
		return nil, fmt.Errorf("failed to load property %d: %w", c.PropertyID, err)
	}

	rent := decimal.Zero
	if c.RentAmount.Valid {
		rent = c.RentAmount.Decimal
	}
	condo := decimal.Zero
	if p.SuggestedCondoFee.Valid {
		condo = p.SuggestedCondoFee.Decimal
	}

	day := c.DueDay
	if day <= 0 {
		day = models.DefaultDueDay
	}

	receipt := &models.Receipt{
		ContractID:     c.ID,
		RentDue:        rent,
		CondoDue:       models.NonZero(condo),
		PropertyTaxDue: models.NonZero(p.MonthlyTax()),
		DueDate:        strPtr(period.DueDate(today, day)),
		Status:         models.ReceiptPending,
	}
	receipt.ComputeTotal()
	return receipt, nil
}

// covered reports whether propertyID already has an expense of kind whose
// reference period starts with prefix (YYYY or YYYY-MM).
func (g *Generator) covered(ctx context.Context, propertyID uint, kind models.ExpenseType, prefix string) (bool, error) {
	n, err := g.store.Count(ctx, &models.Expense{}, "property_id = ? AND type = ? AND reference_period LIKE ?", propertyID, kind, prefix+"-%")
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (g *Generator) fail(res *batch.Result, job string, id uint, err error) {
	g.log.Printf("%s: skipping %d: %v", job, id, err)
	res.Fail(int(id), err)
}

func strPtr(s string) *string {
	return &s
}
