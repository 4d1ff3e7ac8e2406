package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	portsrepo "github.com/opengov-tools/budget_import_app/internal/core/ports/repositories"
	"github.com/opengov-tools/budget_import_app/internal/models"
)

type PgxImportTaskRepository struct {
	BaseRepository
}

// NewImportTaskRepository creates the durable work queue backed by the
// import_tasks table.
func NewImportTaskRepository(pool *pgxpool.Pool) portsrepo.ImportTaskQueue {
	return &PgxImportTaskRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure implementation matches interface
var _ portsrepo.ImportTaskQueue = (*PgxImportTaskRepository)(nil)

// EnqueueTask appends a PENDING task for the given import and stage.
func (r *PgxImportTaskRepository) EnqueueTask(ctx context.Context, importID string, stage models.ImportStage) error {
	query := `
		INSERT INTO import_tasks (task_id, import_id, stage, status, attempts, created_at)
		VALUES ($1, $2, $3, $4, 0, NOW());
	`
	_, err := r.Pool.Exec(ctx, query, uuid.NewString(), importID, stage, models.TaskPending)
	if err != nil {
		return fmt.Errorf("failed to enqueue %s task for import %s: %w", stage, importID, err)
	}
	return nil
}

// ClaimNextTask atomically claims the oldest PENDING task. SKIP LOCKED lets
// multiple workers poll concurrently without double-claiming; the claim
// itself is the at-least-once delivery point.
func (r *PgxImportTaskRepository) ClaimNextTask(ctx context.Context) (*models.ImportTask, error) {
	query := `
		UPDATE import_tasks
		SET status = $1, attempts = attempts + 1, started_at = NOW()
		WHERE task_id = (
			SELECT task_id FROM import_tasks
			WHERE status = $2
			ORDER BY created_at ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING task_id, import_id, stage, status, attempts, created_at, started_at, finished_at;
	`
	var task models.ImportTask
	err := r.Pool.QueryRow(ctx, query, models.TaskRunning, models.TaskPending).Scan(
		&task.TaskID,
		&task.ImportID,
		&task.Stage,
		&task.Status,
		&task.Attempts,
		&task.CreatedAt,
		&task.StartedAt,
		&task.FinishedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Queue is empty
		}
		return nil, fmt.Errorf("failed to claim next task: %w", err)
	}
	return &task, nil
}

// MarkTaskDone finishes a claimed task.
func (r *PgxImportTaskRepository) MarkTaskDone(ctx context.Context, taskID string) error {
	return r.finishTask(ctx, taskID, models.TaskDone)
}

// MarkTaskFailed finishes a claimed task as FAILED.
func (r *PgxImportTaskRepository) MarkTaskFailed(ctx context.Context, taskID string) error {
	return r.finishTask(ctx, taskID, models.TaskFailed)
}

func (r *PgxImportTaskRepository) finishTask(ctx context.Context, taskID string, status models.TaskStatus) error {
	query := `
		UPDATE import_tasks
		SET status = $1, finished_at = NOW()
		WHERE task_id = $2 AND status = $3;
	`
	_, err := r.Pool.Exec(ctx, query, status, taskID, models.TaskRunning)
	if err != nil {
		return fmt.Errorf("failed to finish task %s as %s: %w", taskID, status, err)
	}
	return nil
}

// QueueDepth reports the number of PENDING and RUNNING tasks.
func (r *PgxImportTaskRepository) QueueDepth(ctx context.Context) (int64, int64, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE status = $1),
			COUNT(*) FILTER (WHERE status = $2)
		FROM import_tasks;
	`
	var pending, running int64
	if err := r.Pool.QueryRow(ctx, query, models.TaskPending, models.TaskRunning).Scan(&pending, &running); err != nil {
		return 0, 0, fmt.Errorf("failed to read queue depth: %w", err)
	}
	return pending, running, nil
}

// ListImportsMissingFactsTask finds imports whose dimension stage recorded
// completion but which have no facts task. These are imports that crashed
// in the window between stage A finishing and stage B being enqueued.
func (r *PgxImportTaskRepository) ListImportsMissingFactsTask(ctx context.Context) ([]string, error) {
	query := `
		SELECT j.import_id
		FROM import_jobs j
		WHERE j.dimensions_done_at IS NOT NULL
		  AND j.status = $1
		  AND NOT EXISTS (
			SELECT 1 FROM import_tasks t
			WHERE t.import_id = j.import_id AND t.stage = $2
		  );
	`
	rows, err := r.Pool.Query(ctx, query, models.ImportProcessing, models.StageFacts)
	if err != nil {
		return nil, fmt.Errorf("failed to query imports missing facts task: %w", err)
	}
	defer rows.Close()

	var importIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan import id: %w", err)
		}
		importIDs = append(importIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read imports missing facts task: %w", err)
	}
	return importIDs, nil
}
