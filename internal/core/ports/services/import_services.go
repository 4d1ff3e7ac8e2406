package services

import (
	"context"

	"github.com/opengov-tools/budget_import_app/internal/models"
)

// ImportReaderSvc defines read operations for import progress records.
type ImportReaderSvc interface {
	// GetImport retrieves one progress record with its counters and status.
	GetImport(ctx context.Context, importID string) (*models.ImportJob, error)

	// ListImports retrieves up to limit recent imports, newest first.
	ListImports(ctx context.Context, limit int) ([]models.ImportJob, error)
}

// ImportWriterSvc defines the intake operation.
type ImportWriterSvc interface {
	// CreateImport registers a stored spreadsheet blob as a new import,
	// persists the progress record and enqueues the dimension stage.
	CreateImport(ctx context.Context, filename, filePath string, fileSize int64) (*models.ImportJob, error)
}

// ImportRunnerSvc is consumed by the worker pool, not the HTTP surface.
type ImportRunnerSvc interface {
	// RunTask executes one claimed stage of an import end to end.
	RunTask(ctx context.Context, task *models.ImportTask) error

	// ReconcileStalled enqueues the facts stage for imports whose dimension
	// stage completed without a facts task ever being enqueued. Returns the
	// number of tasks enqueued.
	ReconcileStalled(ctx context.Context) (int, error)
}

// ImportSvcFacade combines all import-related service interfaces.
type ImportSvcFacade interface {
	ImportReaderSvc
	ImportWriterSvc
	ImportRunnerSvc
}

// CacheSvcFacade exposes the operational cache commands.
type CacheSvcFacade interface {
	// PreloadAll snapshots every dimension level into the shared cache
	// (first caller wins per level).
	PreloadAll(ctx context.Context) error

	// PreloadLevel snapshots a single level (first caller wins).
	PreloadLevel(ctx context.Context, level models.DimensionLevel) error

	// InvalidateAll clears every level from the shared cache.
	InvalidateAll(ctx context.Context) error

	// InvalidateLevel clears a single level from the shared cache.
	InvalidateLevel(ctx context.Context, level models.DimensionLevel) error

	// LevelStates reports, per level, whether a shared cache entry exists.
	LevelStates(ctx context.Context) (map[models.DimensionLevel]bool, error)
}

// OpsSvcFacade reports the externally observable state of the pipeline.
type OpsSvcFacade interface {
	Status(ctx context.Context) (*models.OpsStatus, error)
}
