package repositories

import (
	"context"

	"github.com/opengov-tools/budget_import_app/internal/models"
)

// BudgetLineWriter defines the bulk write path for fact rows.
type BudgetLineWriter interface {
	// BulkInsert writes all lines in a single multi-row insert and returns
	// the number of rows written. The whole batch succeeds or fails as one.
	BulkInsert(ctx context.Context, lines []models.BudgetLine) (int64, error)
}
