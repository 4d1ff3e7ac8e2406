package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	portsrepo "github.com/opengov-tools/budget_import_app/internal/core/ports/repositories"
	"github.com/opengov-tools/budget_import_app/internal/models"
)

type PgxBudgetLineRepository struct {
	BaseRepository
}

// NewBudgetLineRepository creates a new repository for budget fact lines.
func NewBudgetLineRepository(pool *pgxpool.Pool) portsrepo.BudgetLineWriter {
	return &PgxBudgetLineRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure implementation matches interface
var _ portsrepo.BudgetLineWriter = (*PgxBudgetLineRepository)(nil)

var budgetLineColumns = []string{
	"import_id",
	"jurisdiction_code",
	"budget_field_code",
	"program_code",
	"activity_code",
	"sub_activity_code",
	"org_unit_code",
	"account_code",
	"description",
	"fiscal_year",
	"quantity",
	"unit_price",
	"total",
	"created_at",
}

// BulkInsert writes all lines via a single COPY. The batch succeeds or
// fails as a whole; callers own the failure policy.
func (r *PgxBudgetLineRepository) BulkInsert(ctx context.Context, lines []models.BudgetLine) (int64, error) {
	if len(lines) == 0 {
		return 0, nil
	}

	copied, err := r.Pool.CopyFrom(
		ctx,
		pgx.Identifier{"budget_lines"},
		budgetLineColumns,
		pgx.CopyFromSlice(len(lines), func(i int) ([]any, error) {
			l := lines[i]
			return []any{
				l.ImportID,
				l.JurisdictionCode,
				nullIfEmpty(l.BudgetFieldCode),
				l.ProgramCode,
				nullIfEmpty(l.ActivityCode),
				nullIfEmpty(l.SubActivityCode),
				l.OrgUnitCode,
				l.AccountCode,
				l.Description,
				l.FiscalYear,
				l.Quantity,
				l.UnitPrice,
				l.Total,
				l.CreatedAt,
			}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to bulk insert %d budget lines: %w", len(lines), err)
	}
	return copied, nil
}

// nullIfEmpty maps blank optional codes to NULL so foreign keys on the
// mid-hierarchy levels hold.
func nullIfEmpty(code string) any {
	if code == "" {
		return nil
	}
	return code
}
