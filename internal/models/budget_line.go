package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BudgetLine is one fact row of the import: a single budget/transaction
// line referencing every dimension by its natural code. Lines are
// bulk-inserted and never deduplicated; one spreadsheet row yields one line.
type BudgetLine struct {
	ImportID         string          `json:"importID"`
	JurisdictionCode string          `json:"jurisdictionCode"`
	BudgetFieldCode  string          `json:"budgetFieldCode"`
	ProgramCode      string          `json:"programCode"`
	ActivityCode     string          `json:"activityCode"`
	SubActivityCode  string          `json:"subActivityCode"`
	OrgUnitCode      string          `json:"orgUnitCode"`
	AccountCode      string          `json:"accountCode"`
	Description      string          `json:"description"`
	FiscalYear       int             `json:"fiscalYear"`
	Quantity         decimal.Decimal `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unitPrice"`
	Total            decimal.Decimal `json:"total"` // quantity × unit price
	CreatedAt        time.Time       `json:"createdAt"`
}
