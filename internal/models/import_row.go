package models

import "github.com/shopspring/decimal"

// CodeName is one dimension reference as it appears on a spreadsheet row.
type CodeName struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// ImportRow is a normalized spreadsheet row: every cell trimmed, numeric
// cells parsed, mandatory codes verified present. It feeds both stages —
// the dimension stage reads the code/name pairs, the fact stage derives a
// BudgetLine from it.
type ImportRow struct {
	Jurisdiction  CodeName        `json:"jurisdiction"`
	BudgetField   CodeName        `json:"budgetField"`
	Program       CodeName        `json:"program"`
	Activity      CodeName        `json:"activity"`
	SubActivity   CodeName        `json:"subActivity"`
	OrgUnit       CodeName        `json:"orgUnit"`
	OrgUnitParent string          `json:"orgUnitParent"` // Parent unit code, empty for top-level units
	Account       CodeName        `json:"account"`
	Description   string          `json:"description"`
	FiscalYear    int             `json:"fiscalYear"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
}

// Total computes the line total from quantity and unit price.
func (r *ImportRow) Total() decimal.Decimal {
	return r.Quantity.Mul(r.UnitPrice)
}
