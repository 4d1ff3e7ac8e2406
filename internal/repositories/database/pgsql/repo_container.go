package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"
	portsrepo "github.com/opengov-tools/budget_import_app/internal/core/ports/repositories"
)

// NewRepositoryProvider builds the relational side of the repository set.
// The shared reference cache is filled in by the caller since it lives on
// a different backend.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		DimensionRepo:  NewDimensionRepository(dbPool),
		BudgetLineRepo: NewBudgetLineRepository(dbPool),
		ImportJobRepo:  NewImportJobRepository(dbPool),
		ImportTaskRepo: NewImportTaskRepository(dbPool),
	}
}
