package importer

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beesaferoot/imobipro/internal/batch"
	"github.com/beesaferoot/imobipro/internal/sheet"
	"github.com/beesaferoot/imobipro/internal/store"
	"github.com/beesaferoot/imobipro/models"
)

func setupImporter(t *testing.T) (*Importer, *store.GormStore) {
	db, err := store.OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, store.Migrate(db))
	s := store.New(db)
	return New(s, log.New(io.Discard, "", 0), Defaults{City: "Campo Grande", State: "MS"}), s
}

func TestImportPropertiesScenario(t *testing.T) {
	ctx := context.Background()
	im, s := setupImporter(t)

	src := sheet.FromStrings(SheetProperties, [][]string{
		{"ID_Propriedade", "EnderecoCompleto", "ValorIPTUAnual"},
		{"1", "Rua A, 100", "1200"},
	})
	xref := NewXRef()
	rep := im.ImportProperties(ctx, src, xref)

	assert.Equal(t, 1, rep.Created)
	assert.Empty(t, rep.Failures)

	var props []models.Property
	require.NoError(t, s.Find(ctx, &props, ""))
	require.Len(t, props, 1)
	assert.Equal(t, "Rua A, 100", props[0].Address)
	assert.True(t, props[0].AnnualTax.Decimal.Equal(decimal.NewFromInt(1200)))
	assert.Equal(t, models.TaxAnnual, props[0].TaxFrequency)
	assert.Equal(t, "Campo Grande", *props[0].City)
	assert.Equal(t, map[int]uint{1: props[0].ID}, xref.Properties)
}

func TestImportPropertiesRejectsInvalidRows(t *testing.T) {
	ctx := context.Background()
	im, s := setupImporter(t)

	src := sheet.FromStrings(SheetProperties, [][]string{
		{"ID_Propriedade", "EnderecoCompleto", "FormaPagamentoIPTU", "CondominioSugerido", "DiaVencCondominio"},
		{"1", "", "Anual", "", ""},
		{"2", "Rua B, 5", "Quinzenal", "", ""},
		{"3", "Rua C, 7", "Mensal", "R$ 1.200,50", "5.0"},
		{"", "", "", "", ""},
		{"4", "Rua D, 9", "", "trezentos", ""},
	})
	xref := NewXRef()
	rep := im.ImportProperties(ctx, src, xref)

	assert.Equal(t, 1, rep.Created)
	require.Len(t, rep.Failures, 3)
	assert.Equal(t, 2, rep.Failures[0].Row)
	assert.Contains(t, rep.Failures[0].Reason, "address")
	assert.Equal(t, 3, rep.Failures[1].Row)
	assert.Equal(t, 6, rep.Failures[2].Row)

	var p models.Property
	require.NoError(t, s.Get(ctx, &p, xref.Properties[3]))
	assert.Equal(t, models.TaxMonthly, p.TaxFrequency)
	assert.True(t, p.SuggestedCondoFee.Decimal.Equal(decimal.RequireFromString("1200.50")))
	require.NotNil(t, p.CondoDueDay)
	assert.Equal(t, 5, *p.CondoDueDay)
}

func TestImportPeople(t *testing.T) {
	ctx := context.Background()
	im, s := setupImporter(t)

	src := sheet.FromStrings(SheetPeople, [][]string{
		{"ID_Pessoa", "Situação", "NomeCompleto", "CPFNJP"},
		{"10", "Fiador", "João Souza", "123.456.789-00"},
		{"11", "", "Ana Lima", ""},
		{"12", "Inquilino", "", ""},
	})
	xref := NewXRef()
	rep := im.ImportPeople(ctx, src, xref)

	assert.Equal(t, 2, rep.Created)
	require.Len(t, rep.Failures, 1)
	assert.Contains(t, rep.Failures[0].Reason, "full_name")

	var guarantor models.Person
	require.NoError(t, s.Get(ctx, &guarantor, xref.People[10]))
	assert.Equal(t, models.RoleGuarantor, guarantor.Role)
	assert.Equal(t, "123.456.789-00", *guarantor.TaxID)

	var tenant models.Person
	require.NoError(t, s.Get(ctx, &tenant, xref.People[11]))
	assert.Equal(t, models.RoleTenant, tenant.Role)
	assert.Nil(t, tenant.TaxID)
}

// seedXRef inserts one property and two people and maps them to the
// spreadsheet ids 1, 10 and 11.
func seedXRef(t *testing.T, s store.Store) *XRef {
	ctx := context.Background()
	p := &models.Property{Address: "Rua A, 100"}
	require.NoError(t, s.Insert(ctx, p))
	tenant := &models.Person{FullName: "Ana Lima"}
	require.NoError(t, s.Insert(ctx, tenant))
	guarantor := &models.Person{FullName: "João Souza", Role: models.RoleGuarantor}
	require.NoError(t, s.Insert(ctx, guarantor))

	xref := NewXRef()
	xref.Properties[1] = p.ID
	xref.People[11] = tenant.ID
	xref.People[10] = guarantor.ID
	return xref
}

func TestImportContractsResolvesParents(t *testing.T) {
	ctx := context.Background()
	im, s := setupImporter(t)
	xref := seedXRef(t, s)

	src := sheet.FromStrings(SheetContracts, [][]string{
		{"ID_Contrato", "ID_Propriedade", "ID_Inquilino", "ID_Fiador", "Garantia", "ValorAluguel", "DiaVenc", "InicioContrato", "StatusContrato"},
		{"100", "99", "11", "", "Nenhuma", "1500", "5", "01/02/2026", "Ativo"},
		{"101", "1.0", "11", "", "Fiança", "1500", "", "", ""},
		{"102", "1", "11", "10", "Fiança", "1500", "", "01/02/2026", "Ativo"},
		{"103", "1", "77", "", "", "900", "", "", ""},
		{"104", "1", "11", "55", "Caução", "900", "", "", "Prorrogado"},
	})
	rep := im.ImportContracts(ctx, src, xref)

	assert.Equal(t, 1, rep.Created)
	require.Len(t, rep.Failures, 4)

	assert.Equal(t, 2, rep.Failures[0].Row)
	assert.Equal(t, "parent not found: property 99", rep.Failures[0].Reason)
	assert.Contains(t, rep.Failures[1].Reason, "guarantor_id")
	assert.Equal(t, "parent not found: tenant 77", rep.Failures[2].Reason)
	assert.Equal(t, "parent not found: guarantor 55", rep.Failures[3].Reason)

	require.Contains(t, xref.Contracts, 102)
	assert.NotContains(t, xref.Contracts, 100)

	var c models.Contract
	require.NoError(t, s.Get(ctx, &c, xref.Contracts[102]))
	assert.Equal(t, xref.Properties[1], c.PropertyID)
	assert.Equal(t, xref.People[10], *c.GuarantorID)
	assert.Equal(t, models.GuaranteeSurety, c.Guarantee)
	assert.Equal(t, models.ContractActive, c.Status)
	assert.Equal(t, models.DefaultDueDay, c.DueDay)
	assert.Equal(t, "2026-02-01", *c.StartDate)

	n, err := s.Count(ctx, &models.Contract{}, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestBuildContractErrorKinds(t *testing.T) {
	xref := NewXRef()
	xref.Properties[1] = 1
	xref.People[2] = 2

	_, err := buildContract(record{row: 2, fields: map[string]string{"property_id": "9", "tenant_id": "2"}}, xref)
	var refErr *batch.ReferenceError
	require.True(t, errors.As(err, &refErr))
	assert.Equal(t, 9, refErr.SourceID)

	_, err = buildContract(record{row: 2, fields: map[string]string{"tenant_id": "2"}}, xref)
	var valErr *batch.ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, "property_id", valErr.Field)

	_, err = buildContract(record{row: 2, fields: map[string]string{"property_id": "1", "tenant_id": "2", "due_day": "40"}}, xref)
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, "due_day", valErr.Field)
}

func TestImportExpensesAndReceipts(t *testing.T) {
	ctx := context.Background()
	im, s := setupImporter(t)
	xref := seedXRef(t, s)

	contract := &models.Contract{PropertyID: xref.Properties[1], TenantID: xref.People[11], RentAmount: decimal.NewNullDecimal(decimal.NewFromInt(1500))}
	require.NoError(t, s.Insert(ctx, contract))
	xref.Contracts[100] = contract.ID

	expenses := sheet.FromStrings(SheetExpenses, [][]string{
		{"Id_Propriedade", "MesReferencia", "TipoDespesa", "ValorPrevisto", "VencimentoPrevisto", "ValorPago"},
		{"1", "15/03/2026", "Condomínio", "300", "10/03/2026", "=D2"},
		{"1", "03/2026", "Manutenção", "R$ 250,00", "data ruim", ""},
		{"8", "03/2026", "IPTU", "1200", "", ""},
	})
	rep := im.ImportExpenses(ctx, expenses, xref)
	assert.Equal(t, 2, rep.Created)
	assert.Equal(t, 1, rep.Formulas)
	require.Len(t, rep.Failures, 1)
	assert.Equal(t, 4, rep.Failures[0].Row)

	var stored []models.Expense
	require.NoError(t, s.Find(ctx, &stored, ""))
	require.Len(t, stored, 2)
	assert.Equal(t, models.ExpenseCondo, stored[0].Type)
	assert.True(t, stored[0].Recurring)
	assert.Equal(t, "2026-03-01", *stored[0].ReferencePeriod)
	assert.Equal(t, "2026-03-10", *stored[0].DueDate)
	assert.False(t, stored[0].PaidAmount.Valid)
	assert.Equal(t, models.ExpenseMaintenance, stored[1].Type)
	assert.False(t, stored[1].Recurring)
	assert.Nil(t, stored[1].DueDate, "unparsable dates become absent")

	receipts := sheet.FromStrings(SheetReceipts, [][]string{
		{"ID_Contrato", "MesReferencia", "AluguelDevido", "CondominioDevido", "IPTUDevido", "Desconto(-) Multa (+)", "Status"},
		{"100", "01/03/2026", "1500", "300", "", "-50", "Recebido"},
		{"100", "01/04/2026", "1500", "", "", "", "Atrasado"},
		{"999", "01/04/2026", "1500", "", "", "", ""},
	})
	rep = im.ImportReceipts(ctx, receipts, xref)
	assert.Equal(t, 2, rep.Created)
	require.Len(t, rep.Failures, 1)
	assert.Equal(t, "parent not found: contract 999", rep.Failures[0].Reason)

	var got []models.Receipt
	require.NoError(t, s.Find(ctx, &got, "contract_id = ?", contract.ID))
	require.Len(t, got, 2)
	assert.True(t, got[0].TotalDue.Equal(decimal.NewFromInt(1750)))
	assert.Equal(t, models.ReceiptReceived, got[0].Status)
	assert.True(t, got[1].TotalDue.Equal(decimal.NewFromInt(1500)))
	assert.Equal(t, models.ReceiptPending, got[1].Status)
}

func TestRunSkipsMissingSheets(t *testing.T) {
	ctx := context.Background()
	im, s := setupImporter(t)

	src := sheet.NewMemory(map[string][][]string{
		SheetProperties: {
			{"ID_Propriedade", "EnderecoCompleto", "CondominioSugerido"},
			{"1", "Rua A, 100", "300"},
			{"2", "Rua B, 200", ""},
		},
		SheetPeople: {
			{"ID_Pessoa", "NomeCompleto"},
			{"11", "Ana Lima"},
		},
		SheetContracts: {
			{"ID_Contrato", "ID_Propriedade", "ID_Inquilino", "ValorAluguel"},
			{"100", "3", "11", "1000"},
			{"101", "2", "11", "1000"},
		},
		SheetReceipts: {
			{"ID_Contrato", "MesReferencia", "AluguelDevido"},
			{"101", "01/03/2026", "1000"},
			{"100", "01/03/2026", "1000"},
		},
	})

	report, err := im.Run(ctx, src)
	require.NoError(t, err)
	require.Len(t, report.Stages, 5)

	assert.Equal(t, "expense", report.Stages[3].Entity)
	assert.True(t, report.Stages[3].Skipped)

	total := report.Total()
	assert.Equal(t, 2+1+1+1, total.Created)
	assert.Equal(t, 2, total.Errored())
	assert.Equal(t, []string{"contratos: row 2: parent not found: property 3"}, report.FirstErrors(1))
	assert.Len(t, report.FirstErrors(0), 2)
	assert.Len(t, report.XRef.Properties, 2)

	n, err := s.Count(ctx, &models.Receipt{}, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

type brokenSource struct{ sheet.Memory }

func (b brokenSource) Sheet(name string) (*sheet.Sheet, error) {
	if name == SheetContracts {
		return nil, errors.New("corrupt sheet")
	}
	return b.Memory.Sheet(name)
}

func TestRunAbortsOnUnreadableSheet(t *testing.T) {
	im, _ := setupImporter(t)

	src := brokenSource{sheet.NewMemory(map[string][][]string{
		SheetPeople: {{"ID_Pessoa", "NomeCompleto"}, {"1", "Ana"}},
	})}
	report, err := im.Run(context.Background(), src)
	require.Error(t, err)
	require.Len(t, report.Stages, 2)
	assert.True(t, report.Stages[0].Skipped)
	assert.Equal(t, 1, report.Stages[1].Created)

	_, err = im.Run(context.Background(), nil)
	assert.Error(t, err)
}
