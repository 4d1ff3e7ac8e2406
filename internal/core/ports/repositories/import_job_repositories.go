package repositories

import (
	"context"

	"github.com/opengov-tools/budget_import_app/internal/models"
)

// ImportJobReader defines read operations for import progress records.
type ImportJobReader interface {
	// FindImportJobByID retrieves one progress record.
	// Returns apperrors.ErrImportNotFound when no record exists.
	FindImportJobByID(ctx context.Context, importID string) (*models.ImportJob, error)

	// ListRecentImportJobs retrieves up to limit records, newest first.
	ListRecentImportJobs(ctx context.Context, limit int) ([]models.ImportJob, error)

	// CountFailedImportJobs returns the number of imports in FAILED status.
	CountFailedImportJobs(ctx context.Context) (int64, error)
}

// ImportJobWriter defines the progress-store write operations. All counter
// updates are additive; status moves forward only.
type ImportJobWriter interface {
	// CreateImportJob persists a new record in QUEUED status.
	CreateImportJob(ctx context.Context, job models.ImportJob) error

	// MarkProcessing transitions QUEUED → PROCESSING and stamps started_at.
	// A record already past QUEUED is left untouched.
	MarkProcessing(ctx context.Context, importID string) error

	// SetTotalRows records the row count once the stream has been measured.
	SetTotalRows(ctx context.Context, importID string, total int64) error

	// AdvanceProgress adds the deltas to the counters. When
	// processed+failed reaches total the record auto-transitions to
	// COMPLETED (only from PROCESSING, never backwards).
	AdvanceProgress(ctx context.Context, importID string, processedDelta, failedDelta int64) error

	// MarkDimensionsDone persists the durable stage-A completion fact.
	MarkDimensionsDone(ctx context.Context, importID string) error

	// MarkCompleted transitions PROCESSING → COMPLETED.
	MarkCompleted(ctx context.Context, importID string) error

	// MarkFailed transitions to FAILED with the given message.
	MarkFailed(ctx context.Context, importID string, message string) error
}

// ImportJobRepositoryFacade combines all progress-store interfaces.
type ImportJobRepositoryFacade interface {
	ImportJobReader
	ImportJobWriter
}
