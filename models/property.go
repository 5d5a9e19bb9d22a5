package models

import (
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/beesaferoot/imobipro/internal/batch"
)

// Property represents a rentable unit and the templates for its recurring charges
type Property struct {
	gorm.Model
	Address            string `gorm:"not null"`
	RegistrationNumber *string
	Kind               string `gorm:"default:house"`
	Owner              *string
	AnnualTax          decimal.NullDecimal `gorm:"type:decimal(12,2)"`
	TaxFrequency       TaxFrequency        `gorm:"type:varchar(16);default:annual"`
	SuggestedRent      decimal.NullDecimal `gorm:"type:decimal(12,2)"`
	SuggestedCondoFee  decimal.NullDecimal `gorm:"type:decimal(12,2)"`
	CondoDueDay        *int
	MarketValue        decimal.NullDecimal `gorm:"type:decimal(14,2)"`
	AcquiredOn         *string `gorm:"type:varchar(10)"`
	WaterMeter         *string
	PowerMeter         *string
	City               *string
	State              *string
	PostalCode         *string
	Notes              *string `gorm:"type:text"`
	Occupied           bool
}

// Validate checks the fields a property cannot be stored without.
func (p *Property) Validate() error {
	if strings.TrimSpace(p.Address) == "" {
		return batch.Invalid("address", "is required")
	}
	if p.TaxFrequency != "" && p.TaxFrequency != TaxAnnual && p.TaxFrequency != TaxMonthly {
		return batch.Invalid("tax_frequency", "unknown value %q", p.TaxFrequency)
	}
	return nil
}

// MonthlyTax is the share of the annual tax billed with each rent receipt:
// annual/12 rounded to cents when the tax is paid monthly, zero otherwise.
func (p *Property) MonthlyTax() decimal.Decimal {
	if p.TaxFrequency != TaxMonthly || !p.AnnualTax.Valid {
		return decimal.Zero
	}
	return p.AnnualTax.Decimal.Div(decimal.NewFromInt(12)).Round(2)
}
