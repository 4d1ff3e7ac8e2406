package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/opengov-tools/budget_import_app/internal/apperrors"
	portsrepo "github.com/opengov-tools/budget_import_app/internal/core/ports/repositories"
	"github.com/opengov-tools/budget_import_app/internal/models"
)

type PgxImportJobRepository struct {
	BaseRepository
}

// NewImportJobRepository creates a new repository for import progress records.
func NewImportJobRepository(pool *pgxpool.Pool) portsrepo.ImportJobRepositoryFacade {
	return &PgxImportJobRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure implementation matches interface
var _ portsrepo.ImportJobRepositoryFacade = (*PgxImportJobRepository)(nil)

const importJobColumns = `
	import_id, filename, file_path, file_size, chunk_size, status,
	total_rows, processed_rows, failed_rows, error_message,
	dimensions_done_at, started_at, completed_at, created_at`

// CreateImportJob persists a new progress record in QUEUED status.
func (r *PgxImportJobRepository) CreateImportJob(ctx context.Context, job models.ImportJob) error {
	query := `
		INSERT INTO import_jobs (import_id, filename, file_path, file_size, chunk_size, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.Pool.Exec(ctx, query,
		job.ImportID,
		job.Filename,
		job.FilePath,
		job.FileSize,
		job.ChunkSize,
		job.Status,
		job.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create import job %s: %w", job.ImportID, err)
	}
	return nil
}

// FindImportJobByID retrieves one progress record.
func (r *PgxImportJobRepository) FindImportJobByID(ctx context.Context, importID string) (*models.ImportJob, error) {
	query := `SELECT ` + importJobColumns + ` FROM import_jobs WHERE import_id = $1;`

	var job models.ImportJob
	err := r.Pool.QueryRow(ctx, query, importID).Scan(
		&job.ImportID,
		&job.Filename,
		&job.FilePath,
		&job.FileSize,
		&job.ChunkSize,
		&job.Status,
		&job.TotalRows,
		&job.ProcessedRows,
		&job.FailedRows,
		&job.ErrorMessage,
		&job.DimensionsDoneAt,
		&job.StartedAt,
		&job.CompletedAt,
		&job.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrImportNotFound
		}
		return nil, fmt.Errorf("failed to find import job %s: %w", importID, err)
	}
	return &job, nil
}

// ListRecentImportJobs retrieves up to limit records, newest first.
func (r *PgxImportJobRepository) ListRecentImportJobs(ctx context.Context, limit int) ([]models.ImportJob, error) {
	query := `SELECT ` + importJobColumns + ` FROM import_jobs ORDER BY created_at DESC LIMIT $1;`

	rows, err := r.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query import jobs: %w", err)
	}
	defer rows.Close()

	jobs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.ImportJob, error) {
		var job models.ImportJob
		err := row.Scan(
			&job.ImportID,
			&job.Filename,
			&job.FilePath,
			&job.FileSize,
			&job.ChunkSize,
			&job.Status,
			&job.TotalRows,
			&job.ProcessedRows,
			&job.FailedRows,
			&job.ErrorMessage,
			&job.DimensionsDoneAt,
			&job.StartedAt,
			&job.CompletedAt,
			&job.CreatedAt,
		)
		return job, err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []models.ImportJob{}, nil
		}
		return nil, fmt.Errorf("failed to scan import jobs: %w", err)
	}
	return jobs, nil
}

// CountFailedImportJobs returns the number of imports in FAILED status.
func (r *PgxImportJobRepository) CountFailedImportJobs(ctx context.Context) (int64, error) {
	var count int64
	err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM import_jobs WHERE status = $1;`, models.ImportFailed).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count failed import jobs: %w", err)
	}
	return count, nil
}

// MarkProcessing transitions QUEUED → PROCESSING and stamps started_at.
func (r *PgxImportJobRepository) MarkProcessing(ctx context.Context, importID string) error {
	query := `
		UPDATE import_jobs
		SET status = $1, started_at = NOW()
		WHERE import_id = $2 AND status = $3;
	`
	_, err := r.Pool.Exec(ctx, query, models.ImportProcessing, importID, models.ImportQueued)
	if err != nil {
		return fmt.Errorf("failed to mark import %s processing: %w", importID, err)
	}
	return nil
}

// SetTotalRows records the measured row count. Idempotent across stage
// re-runs: both stages measure the same stream.
func (r *PgxImportJobRepository) SetTotalRows(ctx context.Context, importID string, total int64) error {
	_, err := r.Pool.Exec(ctx, `UPDATE import_jobs SET total_rows = $1 WHERE import_id = $2;`, total, importID)
	if err != nil {
		return fmt.Errorf("failed to set total rows for import %s: %w", importID, err)
	}
	return nil
}

// AdvanceProgress adds the deltas to the counters; the update is additive so
// concurrent advances never overwrite each other. When processed+failed
// reaches total_rows the record auto-transitions from PROCESSING to
// COMPLETED.
func (r *PgxImportJobRepository) AdvanceProgress(ctx context.Context, importID string, processedDelta, failedDelta int64) error {
	query := `
		UPDATE import_jobs
		SET processed_rows = processed_rows + $1,
		    failed_rows = failed_rows + $2,
		    status = CASE
		        WHEN status = $3 AND total_rows > 0
		             AND processed_rows + $1 + failed_rows + $2 >= total_rows
		        THEN $4::text
		        ELSE status
		    END,
		    completed_at = CASE
		        WHEN status = $3 AND total_rows > 0
		             AND processed_rows + $1 + failed_rows + $2 >= total_rows
		        THEN NOW()
		        ELSE completed_at
		    END
		WHERE import_id = $5;
	`
	_, err := r.Pool.Exec(ctx, query, processedDelta, failedDelta, models.ImportProcessing, models.ImportCompleted, importID)
	if err != nil {
		return fmt.Errorf("failed to advance progress for import %s: %w", importID, err)
	}
	return nil
}

// MarkDimensionsDone persists the durable stage-A completion fact.
func (r *PgxImportJobRepository) MarkDimensionsDone(ctx context.Context, importID string) error {
	query := `
		UPDATE import_jobs
		SET dimensions_done_at = NOW()
		WHERE import_id = $1 AND dimensions_done_at IS NULL;
	`
	_, err := r.Pool.Exec(ctx, query, importID)
	if err != nil {
		return fmt.Errorf("failed to mark dimensions done for import %s: %w", importID, err)
	}
	return nil
}

// MarkCompleted transitions PROCESSING → COMPLETED.
func (r *PgxImportJobRepository) MarkCompleted(ctx context.Context, importID string) error {
	query := `
		UPDATE import_jobs
		SET status = $1, completed_at = NOW()
		WHERE import_id = $2 AND status = $3;
	`
	_, err := r.Pool.Exec(ctx, query, models.ImportCompleted, importID, models.ImportProcessing)
	if err != nil {
		return fmt.Errorf("failed to mark import %s completed: %w", importID, err)
	}
	return nil
}

// MarkFailed transitions to FAILED with the given message. Terminal states
// are never overwritten.
func (r *PgxImportJobRepository) MarkFailed(ctx context.Context, importID string, message string) error {
	query := `
		UPDATE import_jobs
		SET status = $1, error_message = $2, completed_at = NOW()
		WHERE import_id = $3 AND status NOT IN ($4, $1);
	`
	_, err := r.Pool.Exec(ctx, query, models.ImportFailed, message, importID, models.ImportCompleted)
	if err != nil {
		return fmt.Errorf("failed to mark import %s failed: %w", importID, err)
	}
	return nil
}
