// Package report builds the pending-expense report, every unpaid expense
// optionally narrowed by type, due date and situation with its totals, and
// the occupancy summary of the portfolio.
package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/beesaferoot/imobipro/internal/batch"
	"github.com/beesaferoot/imobipro/internal/period"
	"github.com/beesaferoot/imobipro/internal/store"
	"github.com/beesaferoot/imobipro/models"
)

// Situation narrows the report to overdue or upcoming expenses.
type Situation string

const (
	SituationAll      Situation = "all"
	SituationOverdue  Situation = "overdue"
	SituationUpcoming Situation = "upcoming"
)

var situations = map[string]Situation{
	"": SituationAll, "all": SituationAll, "todas": SituationAll,
	"overdue": SituationOverdue, "vencidas": SituationOverdue,
	"upcoming": SituationUpcoming, "a_vencer": SituationUpcoming,
}

// ParseSituation accepts the English names and the legacy Portuguese ones.
func ParseSituation(s string) (Situation, error) {
	if v, ok := situations[models.Fold(s)]; ok {
		return v, nil
	}
	return "", batch.Invalid("situation", "unknown value %q", s)
}

// Filter selects the expenses of a report. Zero values do not filter.
type Filter struct {
	Type      models.ExpenseType
	DueBefore string
	Situation Situation
}

// Line is one unpaid expense.
type Line struct {
	ExpenseID uint               `json:"expense_id"`
	Property  string             `json:"property"`
	Type      models.ExpenseType `json:"type"`
	Motive    string             `json:"motive"`
	DueDate   string             `json:"due_date"`
	Amount    decimal.Decimal    `json:"amount"`
	Overdue   bool               `json:"overdue"`
}

// PendingExpenses is the report body.
type PendingExpenses struct {
	GeneratedOn string          `json:"generated_on"`
	Lines       []Line          `json:"lines"`
	Count       int             `json:"count"`
	Total       decimal.Decimal `json:"total"`
	Overdue     int             `json:"overdue"`
	Upcoming    int             `json:"upcoming"`
}

// Pending lists unpaid expenses ordered by due date. today decides which
// expenses are overdue.
func Pending(ctx context.Context, s store.Store, f Filter, today time.Time) (*PendingExpenses, error) {
	if f.DueBefore != "" {
		if _, err := period.ParseISO(f.DueBefore); err != nil {
			return nil, batch.Invalid("due_before", "%v", err)
		}
	}
	day := today.Format(period.ISO)

	query := "paid_on IS NULL"
	var args []any
	if f.Type != "" {
		query += " AND type = ?"
		args = append(args, f.Type)
	}
	if f.DueBefore != "" {
		query += " AND due_date <= ?"
		args = append(args, f.DueBefore)
	}
	switch f.Situation {
	case SituationOverdue:
		query += " AND due_date < ?"
		args = append(args, day)
	case SituationUpcoming:
		query += " AND due_date >= ?"
		args = append(args, day)
	}

	var expenses []models.Expense
	if err := s.Find(ctx, &expenses, query, args...); err != nil {
		return nil, err
	}
	sort.SliceStable(expenses, func(i, j int) bool {
		return deref(expenses[i].DueDate) < deref(expenses[j].DueDate)
	})

	addresses, err := propertyAddresses(ctx, s, expenses)
	if err != nil {
		return nil, err
	}

	rep := &PendingExpenses{GeneratedOn: day, Total: decimal.Zero, Lines: make([]Line, 0, len(expenses))}
	for _, e := range expenses {
		line := Line{
			ExpenseID: e.ID,
			Property:  addresses[e.PropertyID],
			Type:      e.Type,
			Motive:    deref(e.Motive),
			DueDate:   deref(e.DueDate),
			Amount:    e.PredictedAmount.Decimal,
		}
		if !e.PredictedAmount.Valid {
			line.Amount = decimal.Zero
		}
		line.Overdue = line.DueDate != "" && line.DueDate < day
		if line.Overdue {
			rep.Overdue++
		} else {
			rep.Upcoming++
		}
		rep.Total = rep.Total.Add(line.Amount)
		rep.Lines = append(rep.Lines, line)
	}
	rep.Count = len(rep.Lines)
	return rep, nil
}

func propertyAddresses(ctx context.Context, s store.Store, expenses []models.Expense) (map[uint]string, error) {
	seen := map[uint]bool{}
	var ids []uint
	for _, e := range expenses {
		if !seen[e.PropertyID] {
			seen[e.PropertyID] = true
			ids = append(ids, e.PropertyID)
		}
	}
	out := make(map[uint]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var props []models.Property
	if err := s.Find(ctx, &props, "id IN ?", ids); err != nil {
		return nil, fmt.Errorf("failed to load properties: %w", err)
	}
	for _, p := range props {
		out[p.ID] = p.Address
	}
	return out, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
