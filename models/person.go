package models

import (
	"strings"

	"gorm.io/gorm"

	"github.com/beesaferoot/imobipro/internal/batch"
)

// Person represents a tenant, a guarantor, or someone who is both
type Person struct {
	gorm.Model
	FullName      string     `gorm:"not null"`
	Role          PersonRole `gorm:"type:varchar(16);default:tenant"`
	TaxID         *string
	Phone         *string
	Email         *string
	Address       *string
	City          *string
	Assets        *string `gorm:"type:text"`
	MaritalStatus *string
	SpouseName    *string
	SpouseTaxID   *string
}

// Validate checks the fields a person cannot be stored without.
func (p *Person) Validate() error {
	if strings.TrimSpace(p.FullName) == "" {
		return batch.Invalid("full_name", "is required")
	}
	return nil
}
