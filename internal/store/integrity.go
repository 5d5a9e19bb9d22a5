package store

import (
	"context"
	"database/sql"
	"fmt"

	"gorm.io/gorm"

	"github.com/beesaferoot/imobipro/models"
)

// CheckIntegrity runs SQLite's integrity_check and foreign_key_check and
// returns one message per problem found. Other databases report nothing.
func CheckIntegrity(ctx context.Context, db *gorm.DB) ([]string, error) {
	if db.Dialector.Name() != "sqlite" {
		return nil, nil
	}

	var problems []string
	rows, err := db.WithContext(ctx).Raw("PRAGMA integrity_check").Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to run integrity check: %w", err)
	}
	for rows.Next() {
		var msg string
		if err := rows.Scan(&msg); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to read integrity check: %w", err)
		}
		if msg != "ok" {
			problems = append(problems, "integrity: "+msg)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read integrity check: %w", err)
	}

	rows, err = db.WithContext(ctx).Raw("PRAGMA foreign_key_check").Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to run foreign key check: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			table, parent string
			rowid         sql.NullInt64
			fkid          int
		)
		if err := rows.Scan(&table, &rowid, &parent, &fkid); err != nil {
			return nil, fmt.Errorf("failed to read foreign key check: %w", err)
		}
		problems = append(problems, fmt.Sprintf("foreign key: %s row %d references a missing %s row", table, rowid.Int64, parent))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read foreign key check: %w", err)
	}
	return problems, nil
}

type validator interface {
	Validate() error
}

// CheckRecords re-applies the model rules to every stored property, person
// and contract, which catches rows written around them such as a surety
// contract without a guarantor.
func CheckRecords(ctx context.Context, s Store) ([]string, error) {
	var (
		properties []models.Property
		people     []models.Person
		contracts  []models.Contract
	)
	if err := s.Find(ctx, &properties, ""); err != nil {
		return nil, err
	}
	if err := s.Find(ctx, &people, ""); err != nil {
		return nil, err
	}
	if err := s.Find(ctx, &contracts, ""); err != nil {
		return nil, err
	}

	var problems []string
	check := func(kind string, id uint, v validator) {
		if err := v.Validate(); err != nil {
			problems = append(problems, fmt.Sprintf("%s %d: %v", kind, id, err))
		}
	}
	for i := range properties {
		check("property", properties[i].ID, &properties[i])
	}
	for i := range people {
		check("person", people[i].ID, &people[i])
	}
	for i := range contracts {
		check("contract", contracts[i].ID, &contracts[i])
	}
	return problems, nil
}
