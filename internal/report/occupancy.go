package report

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/beesaferoot/imobipro/internal/store"
	"github.com/beesaferoot/imobipro/models"
)

// Occupancy counts occupied and available properties.
type Occupancy struct {
	Properties int64           `json:"properties"`
	Occupied   int64           `json:"occupied"`
	Available  int64           `json:"available"`
	Rate       decimal.Decimal `json:"rate"`
}

// PortfolioOccupancy reads the occupancy flags of every property. Rate is a
// percentage rounded to one decimal place, zero for an empty portfolio.
func PortfolioOccupancy(ctx context.Context, s store.Store) (*Occupancy, error) {
	total, err := s.Count(ctx, &models.Property{}, "")
	if err != nil {
		return nil, fmt.Errorf("failed to count properties: %w", err)
	}
	occupied, err := s.Count(ctx, &models.Property{}, "occupied = ?", true)
	if err != nil {
		return nil, fmt.Errorf("failed to count occupied properties: %w", err)
	}

	o := &Occupancy{Properties: total, Occupied: occupied, Available: total - occupied, Rate: decimal.Zero}
	if total > 0 {
		o.Rate = decimal.NewFromInt(occupied * 100).Div(decimal.NewFromInt(total)).Round(1)
	}
	return o, nil
}

func (o *Occupancy) String() string {
	return fmt.Sprintf("%d properties, %d occupied, %d available, occupancy %s%%", o.Properties, o.Occupied, o.Available, o.Rate.StringFixed(1))
}
