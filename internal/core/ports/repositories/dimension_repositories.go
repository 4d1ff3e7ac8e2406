package repositories

import (
	"context"

	"github.com/opengov-tools/budget_import_app/internal/models"
)

// DimensionReader defines read operations for hierarchy dimension data.
type DimensionReader interface {
	// ListCodes retrieves the full code→name mapping for one level.
	ListCodes(ctx context.Context, level models.DimensionLevel) (map[string]string, error)

	// CountByLevel returns the number of rows stored for one level.
	CountByLevel(ctx context.Context, level models.DimensionLevel) (int64, error)
}

// DimensionWriter defines write operations for hierarchy dimension data.
type DimensionWriter interface {
	// CreateIfAbsent inserts the dimension keyed by its natural code unless
	// a row with that code already exists. It reports whether a row was
	// actually created. Never updates an existing row.
	CreateIfAbsent(ctx context.Context, dim models.Dimension) (bool, error)
}

// DimensionRepositoryFacade combines all dimension repository interfaces.
type DimensionRepositoryFacade interface {
	DimensionReader
	DimensionWriter
}
