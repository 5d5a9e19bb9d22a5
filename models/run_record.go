package models

import "time"

// Run kinds recorded in the run log.
const (
	RunPropertyTax = "property-tax"
	RunCondo       = "condo"
	RunBilling     = "billing"
	RunImport      = "import"
)

// RunRecord is one entry of the generation/import run log
type RunRecord struct {
	ID      string    `gorm:"primaryKey;type:varchar(36)"`
	Kind    string    `gorm:"not null;index"`
	Period  string    `gorm:"type:varchar(10)"`
	Created int       `gorm:"not null"`
	Ignored int       `gorm:"not null"`
	Errored int       `gorm:"not null"`
	RanAt   time.Time `gorm:"not null"`
}
