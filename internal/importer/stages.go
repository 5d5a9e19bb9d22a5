package importer

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/beesaferoot/imobipro/internal/batch"
	"github.com/beesaferoot/imobipro/internal/sheet"
	"github.com/beesaferoot/imobipro/models"
)

var propertyColumns = columns(
	"ID_Propriedade", "source_id",
	"EnderecoCompleto", "address",
	"InscricaoImobiliaria", "registration_number",
	"TipoImovel", "kind",
	"Proprietario", "owner",
	"ValorIPTUAnual", "annual_tax",
	"FormaPagamentoIPTU", "tax_frequency",
	"AluguelPretendido", "suggested_rent",
	"CondominioSugerido", "suggested_condo_fee",
	"DiaVencCondominio", "condo_due_day",
	"ValorMercado", "market_value",
	"DataAquisicao", "acquired_on",
	"NumeroHidrometro", "water_meter",
	"NumeroRelogioEnergia", "power_meter",
	"Cidade", "city",
	"Estado", "state",
	"CEP", "postal_code",
	"Ocupado", "occupied",
	"Observacoes", "notes",
)

var personColumns = columns(
	"ID_Pessoa", "source_id",
	"Situação", "role",
	"NomeCompleto", "full_name",
	"CPFNJP", "tax_id",
	"Telefone", "phone",
	"Email", "email",
	"EnderecoCompleto", "address",
	"Cidade", "city",
	"Patrimonio", "assets",
	"EstadoCivil", "marital_status",
	"NomeConjuge", "spouse_name",
	"CPFConjuge", "spouse_tax_id",
)

var contractColumns = columns(
	"ID_Contrato", "source_id",
	"ID_Propriedade", "property_id",
	"ID_Inquilino", "tenant_id",
	"ID_Fiador", "guarantor_id",
	"Garantia", "guarantee",
	"InicioContrato", "start_date",
	"FimContrato", "end_date",
	"ValorAluguel", "rent_amount",
	"DiaVenc", "due_day",
	"IndiceReajuste", "readjustment_index",
	"StatusContrato", "status",
	"Obs", "notes",
)

var expenseColumns = columns(
	"ID_Propriedade", "property_id",
	"MesReferencia", "reference_period",
	"TipoDespesa", "type",
	"MotivoDespesa", "motive",
	"ValorPrevisto", "predicted_amount",
	"ValorPago", "paid_amount",
	"VencimentoPrevisto", "due_date",
	"DataPagamento", "paid_on",
	"Observacoes", "notes",
)

var receiptColumns = columns(
	"ID_Contrato", "contract_id",
	"MesReferencia", "reference_period",
	"AluguelDevido", "rent_due",
	"CondominioDevido", "condo_due",
	"IPTUDevido", "property_tax_due",
	"Desconto(-) Multa (+)", "adjustment",
	"VencimentoPrevisto", "due_date",
	"DataRecebimento", "received_on",
	"ValorRecebido", "received_amount",
	"Status", "status",
	"Observacoes", "notes",
)

// ImportProperties migrates the property sheet, filling xref.Properties.
func (im *Importer) ImportProperties(ctx context.Context, s *sheet.Sheet, xref *XRef) StageReport {
	return im.stage(ctx, "property", s, propertyColumns, func(ctx context.Context, rec record) error {
		p, err := im.buildProperty(rec)
		if err != nil {
			return err
		}
		if err := im.store.Insert(ctx, p); err != nil {
			return err
		}
		if id, ok := rec.id("source_id"); ok {
			xref.Properties[id] = p.ID
		}
		return nil
	})
}

func (im *Importer) buildProperty(rec record) (*models.Property, error) {
	amounts, err := rec.amounts("annual_tax", "suggested_rent", "suggested_condo_fee", "market_value")
	if err != nil {
		return nil, err
	}
	frequency, err := enum(rec, "tax_frequency", models.ParseTaxFrequency, models.TaxAnnual)
	if err != nil {
		return nil, err
	}

	p := &models.Property{
		Address:            rec.text("address"),
		RegistrationNumber: rec.optText("registration_number"),
		Kind:               rec.text("kind"),
		Owner:              rec.optText("owner"),
		AnnualTax:          amounts[0],
		TaxFrequency:       frequency,
		SuggestedRent:      amounts[1],
		SuggestedCondoFee:  amounts[2],
		MarketValue:        amounts[3],
		AcquiredOn:         rec.date("acquired_on"),
		WaterMeter:         rec.optText("water_meter"),
		PowerMeter:         rec.optText("power_meter"),
		City:               rec.textOr("city", im.defaults.City),
		State:              rec.textOr("state", im.defaults.State),
		PostalCode:         rec.optText("postal_code"),
		Notes:              rec.optText("notes"),
	}
	if day, ok := rec.id("condo_due_day"); ok {
		p.CondoDueDay = &day
	}
	if occupied, ok := ParseBool(rec.text("occupied")); ok {
		p.Occupied = occupied
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// ImportPeople migrates the people sheet, filling xref.People.
func (im *Importer) ImportPeople(ctx context.Context, s *sheet.Sheet, xref *XRef) StageReport {
	return im.stage(ctx, "person", s, personColumns, func(ctx context.Context, rec record) error {
		role, err := enum(rec, "role", models.ParsePersonRole, models.RoleTenant)
		if err != nil {
			return err
		}

		p := &models.Person{
			FullName:      rec.text("full_name"),
			Role:          role,
			TaxID:         rec.optText("tax_id"),
			Phone:         rec.optText("phone"),
			Email:         rec.optText("email"),
			Address:       rec.optText("address"),
			City:          rec.optText("city"),
			Assets:        rec.optText("assets"),
			MaritalStatus: rec.optText("marital_status"),
			SpouseName:    rec.optText("spouse_name"),
			SpouseTaxID:   rec.optText("spouse_tax_id"),
		}
		if err := p.Validate(); err != nil {
			return err
		}
		if err := im.store.Insert(ctx, p); err != nil {
			return err
		}
		if id, ok := rec.id("source_id"); ok {
			xref.People[id] = p.ID
		}
		return nil
	})
}

// ImportContracts migrates the contract sheet. Property and tenant must
// resolve through xref; so must the guarantor when one is given.
func (im *Importer) ImportContracts(ctx context.Context, s *sheet.Sheet, xref *XRef) StageReport {
	return im.stage(ctx, "contract", s, contractColumns, func(ctx context.Context, rec record) error {
		c, err := buildContract(rec, xref)
		if err != nil {
			return err
		}
		if err := im.store.Insert(ctx, c); err != nil {
			return err
		}
		if id, ok := rec.id("source_id"); ok {
			xref.Contracts[id] = c.ID
		}
		return nil
	})
}

func buildContract(rec record, xref *XRef) (*models.Contract, error) {
	propertyID, err := resolve(rec, "property_id", "property", xref.Properties)
	if err != nil {
		return nil, err
	}
	tenantID, err := resolve(rec, "tenant_id", "tenant", xref.People)
	if err != nil {
		return nil, err
	}

	var guarantorID *uint
	if rec.has("guarantor_id") {
		id, err := resolve(rec, "guarantor_id", "guarantor", xref.People)
		if err != nil {
			return nil, err
		}
		guarantorID = &id
	}

	guarantee, err := enum(rec, "guarantee", models.ParseGuaranteeType, models.GuaranteeNone)
	if err != nil {
		return nil, err
	}
	status, err := enum(rec, "status", models.ParseContractStatus, models.ContractActive)
	if err != nil {
		return nil, err
	}
	rent, err := rec.amount("rent_amount")
	if err != nil {
		return nil, err
	}

	dueDay := models.DefaultDueDay
	if day, ok := rec.id("due_day"); ok {
		dueDay = day
	}

	c := &models.Contract{
		PropertyID:        propertyID,
		TenantID:          tenantID,
		GuarantorID:       guarantorID,
		Guarantee:         guarantee,
		StartDate:         rec.date("start_date"),
		EndDate:           rec.date("end_date"),
		RentAmount:        rent,
		DueDay:            dueDay,
		ReadjustmentIndex: rec.optText("readjustment_index"),
		Status:            status,
		Notes:             rec.optText("notes"),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// ImportExpenses migrates the expense sheet. Condo and property-tax
// expenses are flagged recurring.
func (im *Importer) ImportExpenses(ctx context.Context, s *sheet.Sheet, xref *XRef) StageReport {
	return im.stage(ctx, "expense", s, expenseColumns, func(ctx context.Context, rec record) error {
		propertyID, err := resolve(rec, "property_id", "property", xref.Properties)
		if err != nil {
			return err
		}
		kind, err := enum(rec, "type", models.ParseExpenseType, models.ExpenseOther)
		if err != nil {
			return err
		}
		amounts, err := rec.amounts("predicted_amount", "paid_amount")
		if err != nil {
			return err
		}

		e := &models.Expense{
			PropertyID:      propertyID,
			Type:            kind,
			Motive:          rec.optText("motive"),
			ReferencePeriod: rec.month("reference_period"),
			PredictedAmount: amounts[0],
			PaidAmount:      amounts[1],
			DueDate:         rec.date("due_date"),
			PaidOn:          rec.date("paid_on"),
			Notes:           rec.optText("notes"),
			Recurring:       kind.Recurring(),
		}
		return im.store.Insert(ctx, e)
	})
}

// ImportReceipts migrates the receipt sheet. The total is recomputed from
// the rent, condo, tax and adjustment columns.
func (im *Importer) ImportReceipts(ctx context.Context, s *sheet.Sheet, xref *XRef) StageReport {
	return im.stage(ctx, "receipt", s, receiptColumns, func(ctx context.Context, rec record) error {
		contractID, err := resolve(rec, "contract_id", "contract", xref.Contracts)
		if err != nil {
			return err
		}
		status, err := enum(rec, "status", models.ParseReceiptStatus, models.ReceiptPending)
		if err != nil {
			return err
		}
		amounts, err := rec.amounts("rent_due", "condo_due", "property_tax_due", "adjustment", "received_amount")
		if err != nil {
			return err
		}

		rent := decimal.Zero
		if amounts[0].Valid {
			rent = amounts[0].Decimal
		}

		r := &models.Receipt{
			ContractID:      contractID,
			ReferencePeriod: rec.month("reference_period"),
			RentDue:         rent,
			CondoDue:        amounts[1],
			PropertyTaxDue:  amounts[2],
			Adjustment:      amounts[3],
			DueDate:         rec.date("due_date"),
			ReceivedOn:      rec.date("received_on"),
			ReceivedAmount:  amounts[4],
			Status:          status,
			Notes:           rec.optText("notes"),
		}
		r.ComputeTotal()
		return im.store.Insert(ctx, r)
	})
}

// resolve maps the spreadsheet identifier in key to a store id. A missing
// or non-numeric identifier is a validation error; an identifier with no
// entry in ids is a reference error.
func resolve(rec record, key, kind string, ids map[int]uint) (uint, error) {
	sourceID, ok := rec.id(key)
	if !ok {
		if rec.has(key) {
			return 0, batch.Invalid(key, "invalid identifier %q", rec.text(key))
		}
		return 0, batch.Invalid(key, "is required")
	}
	id, ok := ids[sourceID]
	if !ok {
		return 0, &batch.ReferenceError{Kind: kind, SourceID: sourceID}
	}
	return id, nil
}
