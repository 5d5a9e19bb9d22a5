package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Expense represents a cost attached to a property for one reference period
type Expense struct {
	gorm.Model
	PropertyID      uint        `gorm:"not null;index"`
	Property        *Property   `gorm:"foreignKey:PropertyID"`
	Type            ExpenseType `gorm:"type:varchar(16);not null;index"`
	Motive          *string
	ReferencePeriod *string             `gorm:"type:varchar(10);index"`
	PredictedAmount decimal.NullDecimal `gorm:"type:decimal(12,2)"`
	PaidAmount      decimal.NullDecimal `gorm:"type:decimal(12,2)"`
	DueDate         *string             `gorm:"type:varchar(10)"`
	PaidOn          *string             `gorm:"type:varchar(10)"`
	Notes           *string             `gorm:"type:text"`
	Recurring       bool
}

// Receipt represents the rent receivable of a contract for one reference period
type Receipt struct {
	gorm.Model
	ContractID      uint                `gorm:"not null;index"`
	Contract        *Contract           `gorm:"foreignKey:ContractID"`
	ReferencePeriod *string             `gorm:"type:varchar(10);index"`
	RentDue         decimal.Decimal     `gorm:"type:decimal(12,2)"`
	CondoDue        decimal.NullDecimal `gorm:"type:decimal(12,2)"`
	PropertyTaxDue  decimal.NullDecimal `gorm:"type:decimal(12,2)"`
	Adjustment      decimal.NullDecimal `gorm:"type:decimal(12,2)"`
	TotalDue        decimal.Decimal     `gorm:"type:decimal(12,2)"`
	DueDate         *string             `gorm:"type:varchar(10)"`
	ReceivedOn      *string             `gorm:"type:varchar(10)"`
	ReceivedAmount  decimal.NullDecimal `gorm:"type:decimal(12,2)"`
	Status          ReceiptStatus       `gorm:"type:varchar(16);default:pending"`
	Notes           *string             `gorm:"type:text"`
}

// ComputeTotal sets TotalDue to the sum of the component amounts.
func (r *Receipt) ComputeTotal() decimal.Decimal {
	total := r.RentDue
	for _, part := range []decimal.NullDecimal{r.CondoDue, r.PropertyTaxDue, r.Adjustment} {
		if part.Valid {
			total = total.Add(part.Decimal)
		}
	}
	r.TotalDue = total
	return total
}

// NonZero wraps d as a nullable amount that is NULL when d is zero.
func NonZero(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: !d.IsZero()}
}
