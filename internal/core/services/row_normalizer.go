package services

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/opengov-tools/budget_import_app/internal/models"
	"github.com/shopspring/decimal"
)

// Canonical spreadsheet column headers.
const (
	ColJurisdictionCode = "jurisdiction_code"
	ColJurisdictionName = "jurisdiction_name"
	ColBudgetFieldCode  = "budget_field_code"
	ColBudgetFieldName  = "budget_field_name"
	ColProgramCode      = "program_code"
	ColProgramName      = "program_name"
	ColActivityCode     = "activity_code"
	ColActivityName     = "activity_name"
	ColSubActivityCode  = "sub_activity_code"
	ColSubActivityName  = "sub_activity_name"
	ColOrgUnitCode      = "org_unit_code"
	ColOrgUnitName      = "org_unit_name"
	ColOrgUnitParent    = "org_unit_parent_code"
	ColAccountCode      = "account_code"
	ColAccountName      = "account_name"
	ColDescription      = "description"
	ColFiscalYear       = "fiscal_year"
	ColQuantity         = "quantity"
	ColUnitPrice        = "unit_price"
)

// mandatoryColumns must be non-blank after trimming or the row is skipped.
var mandatoryColumns = []string{
	ColJurisdictionCode,
	ColProgramCode,
	ColOrgUnitCode,
	ColAccountCode,
}

// RowNormalizer turns raw header→cell maps into typed rows. Rows missing a
// mandatory code are skipped, not errored: the skip is logged with the
// offending row for audit and the stream continues.
type RowNormalizer struct {
	logger *slog.Logger
}

func NewRowNormalizer(logger *slog.Logger) *RowNormalizer {
	return &RowNormalizer{logger: logger}
}

// Normalize trims every cell and builds a typed row. The second return is
// false when the row must be skipped.
func (n *RowNormalizer) Normalize(rowNum int64, raw map[string]string) (*models.ImportRow, bool) {
	cells := make(map[string]string, len(raw))
	for header, value := range raw {
		cells[strings.TrimSpace(header)] = strings.TrimSpace(value)
	}

	for _, col := range mandatoryColumns {
		if cells[col] == "" {
			n.logger.Warn("Skipping row with missing mandatory column",
				slog.Int64("row", rowNum),
				slog.String("column", col),
				slog.Any("cells", cells))
			return nil, false
		}
	}

	row := &models.ImportRow{
		Jurisdiction:  models.CodeName{Code: cells[ColJurisdictionCode], Name: cells[ColJurisdictionName]},
		BudgetField:   models.CodeName{Code: cells[ColBudgetFieldCode], Name: cells[ColBudgetFieldName]},
		Program:       models.CodeName{Code: cells[ColProgramCode], Name: cells[ColProgramName]},
		Activity:      models.CodeName{Code: cells[ColActivityCode], Name: cells[ColActivityName]},
		SubActivity:   models.CodeName{Code: cells[ColSubActivityCode], Name: cells[ColSubActivityName]},
		OrgUnit:       models.CodeName{Code: cells[ColOrgUnitCode], Name: cells[ColOrgUnitName]},
		OrgUnitParent: cells[ColOrgUnitParent],
		Account:       models.CodeName{Code: cells[ColAccountCode], Name: cells[ColAccountName]},
		Description:   cells[ColDescription],
		FiscalYear:    n.parseInt(rowNum, ColFiscalYear, cells[ColFiscalYear]),
		Quantity:      n.parseDecimal(rowNum, ColQuantity, cells[ColQuantity]),
		UnitPrice:     n.parseDecimal(rowNum, ColUnitPrice, cells[ColUnitPrice]),
	}
	return row, true
}

// parseDecimal tolerates malformed numeric cells: bad values become zero
// with a warning instead of failing the row.
func (n *RowNormalizer) parseDecimal(rowNum int64, col, value string) decimal.Decimal {
	if value == "" {
		return decimal.Zero
	}
	// Spreadsheets from some locales use comma decimal separators.
	value = strings.ReplaceAll(value, ",", ".")
	d, err := decimal.NewFromString(value)
	if err != nil {
		n.logger.Warn("Unparseable numeric cell, defaulting to zero",
			slog.Int64("row", rowNum),
			slog.String("column", col),
			slog.String("value", value))
		return decimal.Zero
	}
	return d
}

func (n *RowNormalizer) parseInt(rowNum int64, col, value string) int {
	if value == "" {
		return 0
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		n.logger.Warn("Unparseable integer cell, defaulting to zero",
			slog.Int64("row", rowNum),
			slog.String("column", col),
			slog.String("value", value))
		return 0
	}
	return i
}
