package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/beesaferoot/imobipro/internal/batch"
)

// DefaultDueDay is used when a contract or condo has no configured due day.
const DefaultDueDay = 10

// Contract represents a lease of one property to one tenant
type Contract struct {
	gorm.Model
	PropertyID        uint      `gorm:"not null;index"`
	Property          *Property `gorm:"foreignKey:PropertyID"`
	TenantID          uint      `gorm:"not null;index"`
	Tenant            *Person   `gorm:"foreignKey:TenantID"`
	GuarantorID       *uint
	Guarantor         *Person       `gorm:"foreignKey:GuarantorID"`
	Guarantee         GuaranteeType `gorm:"type:varchar(16);default:none"`
	StartDate         *string       `gorm:"type:varchar(10)"`
	EndDate           *string       `gorm:"type:varchar(10)"`
	RentAmount        decimal.NullDecimal `gorm:"type:decimal(12,2)"`
	DueDay            int                 `gorm:"default:10"`
	ReadjustmentIndex *string
	Status            ContractStatus `gorm:"type:varchar(16);default:active;index"`
	Notes             *string        `gorm:"type:text"`
}

// Validate checks the contract's links and the surety rule: a guarantor is
// mandatory when the guarantee type is surety.
func (c *Contract) Validate() error {
	if c.PropertyID == 0 {
		return batch.Invalid("property_id", "is required")
	}
	if c.TenantID == 0 {
		return batch.Invalid("tenant_id", "is required")
	}
	if c.Guarantee == GuaranteeSurety && (c.GuarantorID == nil || *c.GuarantorID == 0) {
		return batch.Invalid("guarantor_id", "is required when guarantee is surety")
	}
	if c.DueDay < 0 || c.DueDay > 31 {
		return batch.Invalid("due_day", "must be between 1 and 31, got %d", c.DueDay)
	}
	return nil
}
