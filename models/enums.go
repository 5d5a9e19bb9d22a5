package models

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// TaxFrequency is how the annual property tax (IPTU) is passed on to the tenant.
type TaxFrequency string

const (
	TaxAnnual  TaxFrequency = "annual"
	TaxMonthly TaxFrequency = "monthly"
)

// PersonRole marks whether a person rents, guarantees, or both.
type PersonRole string

const (
	RoleTenant    PersonRole = "tenant"
	RoleGuarantor PersonRole = "guarantor"
	RoleBoth      PersonRole = "both"
)

// GuaranteeType is the collateral arrangement backing a lease contract.
type GuaranteeType string

const (
	GuaranteeAdvance GuaranteeType = "advance"
	GuaranteeNone    GuaranteeType = "none"
	GuaranteeSurety  GuaranteeType = "surety"
	GuaranteeDeposit GuaranteeType = "deposit"
)

// ContractStatus is the lifecycle state of a lease contract.
type ContractStatus string

const (
	ContractActive     ContractStatus = "active"
	ContractRenewed    ContractStatus = "renewed"
	ContractTerminated ContractStatus = "terminated"
	ContractRescinded  ContractStatus = "rescinded"
)

var contractStatusOrder = []ContractStatus{ContractActive, ContractRenewed, ContractTerminated, ContractRescinded}

// Billable reports whether monthly rent is still charged for the contract.
func (s ContractStatus) Billable() bool {
	return s == ContractActive || s == ContractRenewed
}

// BillableStatuses lists the statuses for which Billable is true.
func BillableStatuses() []ContractStatus {
	var out []ContractStatus
	for _, s := range contractStatusOrder {
		if s.Billable() {
			out = append(out, s)
		}
	}
	return out
}

// ExpenseType classifies a property expense.
type ExpenseType string

const (
	ExpenseMaintenance ExpenseType = "maintenance"
	ExpenseCondo       ExpenseType = "condo"
	ExpenseRenovation  ExpenseType = "renovation"
	ExpensePropertyTax ExpenseType = "property-tax"
	ExpenseOther       ExpenseType = "other"
)

// Recurring reports whether expenses of this type are generated every period.
func (t ExpenseType) Recurring() bool {
	return t == ExpenseCondo || t == ExpensePropertyTax
}

// ReceiptStatus is the collection state of a rent receivable.
type ReceiptStatus string

const (
	ReceiptPending  ReceiptStatus = "pending"
	ReceiptReceived ReceiptStatus = "received"
)

var taxFrequencies = map[string]TaxFrequency{
	"annual": TaxAnnual, "anual": TaxAnnual,
	"monthly": TaxMonthly, "mensal": TaxMonthly,
}

var personRoles = map[string]PersonRole{
	"tenant": RoleTenant, "inquilino": RoleTenant,
	"guarantor": RoleGuarantor, "fiador": RoleGuarantor,
	"both": RoleBoth, "ambos": RoleBoth,
}

var guaranteeTypes = map[string]GuaranteeType{
	"advance": GuaranteeAdvance, "antecipado": GuaranteeAdvance,
	"none": GuaranteeNone, "nenhuma": GuaranteeNone,
	"surety": GuaranteeSurety, "fianca": GuaranteeSurety,
	"deposit": GuaranteeDeposit, "caucao": GuaranteeDeposit,
}

var contractStatuses = map[string]ContractStatus{
	"active": ContractActive, "ativo": ContractActive,
	"renewed": ContractRenewed, "prorrogado": ContractRenewed,
	"terminated": ContractTerminated, "encerrado": ContractTerminated,
	"rescinded": ContractRescinded, "rescindido": ContractRescinded,
}

var expenseTypes = map[string]ExpenseType{
	"maintenance": ExpenseMaintenance, "manutencao": ExpenseMaintenance,
	"condo": ExpenseCondo, "condominio": ExpenseCondo,
	"renovation": ExpenseRenovation, "reforma": ExpenseRenovation,
	"property-tax": ExpensePropertyTax, "iptu": ExpensePropertyTax,
	"other": ExpenseOther, "outros": ExpenseOther,
}

var receiptStatuses = map[string]ReceiptStatus{
	"pending": ReceiptPending, "pendente": ReceiptPending, "atrasado": ReceiptPending,
	"received": ReceiptReceived, "recebido": ReceiptReceived,
}

// ParseTaxFrequency accepts English or Portuguese spellings in any case and
// with or without accents.
func ParseTaxFrequency(s string) (TaxFrequency, error) {
	return lookup(taxFrequencies, s, "tax frequency")
}

func ParsePersonRole(s string) (PersonRole, error) {
	return lookup(personRoles, s, "person role")
}

func ParseGuaranteeType(s string) (GuaranteeType, error) {
	return lookup(guaranteeTypes, s, "guarantee type")
}

func ParseContractStatus(s string) (ContractStatus, error) {
	return lookup(contractStatuses, s, "contract status")
}

func ParseExpenseType(s string) (ExpenseType, error) {
	return lookup(expenseTypes, s, "expense type")
}

func ParseReceiptStatus(s string) (ReceiptStatus, error) {
	return lookup(receiptStatuses, s, "receipt status")
}

func lookup[T ~string](table map[string]T, s, what string) (T, error) {
	if v, ok := table[Fold(s)]; ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("unknown %s %q", what, s)
}

// Fold lower-cases s, trims it and strips diacritics ("Condomínio" -> "condominio").
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.TrimSpace(s))
	if err != nil {
		folded = strings.TrimSpace(s)
	}
	return strings.ToLower(folded)
}
