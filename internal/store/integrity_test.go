package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beesaferoot/imobipro/models"
)

func TestCheckIntegrityClean(t *testing.T) {
	s := setupTestStore(t)

	problems, err := CheckIntegrity(context.Background(), s.DB())
	require.NoError(t, err)
	assert.Empty(t, problems)
}

func TestCheckIntegrityReportsDanglingForeignKeys(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	require.NoError(t, s.DB().Exec("PRAGMA foreign_keys = OFF").Error)
	require.NoError(t, s.Insert(ctx, &models.Expense{PropertyID: 99, Type: models.ExpenseOther}))
	require.NoError(t, s.DB().Exec("PRAGMA foreign_keys = ON").Error)

	problems, err := CheckIntegrity(ctx, s.DB())
	require.NoError(t, err)
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0], "foreign key: expenses row 1")
	assert.Contains(t, problems[0], "properties")
}

func TestCheckRecordsFindsSuretyWithoutGuarantor(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	p := &models.Property{Address: "Rua A, 100"}
	require.NoError(t, s.Insert(ctx, p))
	tenant := &models.Person{FullName: "Ana Lima"}
	require.NoError(t, s.Insert(ctx, tenant))
	require.NoError(t, s.Insert(ctx, &models.Contract{PropertyID: p.ID, TenantID: tenant.ID}))
	bad := &models.Contract{PropertyID: p.ID, TenantID: tenant.ID, Guarantee: models.GuaranteeSurety}
	require.NoError(t, s.Insert(ctx, bad))

	problems, err := CheckRecords(ctx, s)
	require.NoError(t, err)
	require.Len(t, problems, 1)
	assert.Equal(t, "contract 2: guarantor_id: is required when guarantee is surety", problems[0])
}
