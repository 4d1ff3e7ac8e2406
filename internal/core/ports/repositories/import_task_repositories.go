package repositories

import (
	"context"

	"github.com/opengov-tools/budget_import_app/internal/models"
)

// ImportTaskQueue is the durable work queue: one row per (import, stage).
// Delivery is at-least-once; workers claim tasks with row locks so
// multiple workers never run the same task concurrently.
type ImportTaskQueue interface {
	// EnqueueTask appends a PENDING task for the given import and stage.
	EnqueueTask(ctx context.Context, importID string, stage models.ImportStage) error

	// ClaimNextTask atomically claims the oldest PENDING task, moving it to
	// RUNNING and incrementing attempts. Returns nil when the queue is empty.
	ClaimNextTask(ctx context.Context) (*models.ImportTask, error)

	// MarkTaskDone finishes a claimed task.
	MarkTaskDone(ctx context.Context, taskID string) error

	// MarkTaskFailed finishes a claimed task as FAILED.
	MarkTaskFailed(ctx context.Context, taskID string) error

	// QueueDepth reports the number of PENDING and RUNNING tasks.
	QueueDepth(ctx context.Context) (pending int64, running int64, err error)

	// ListImportsMissingFactsTask finds import IDs whose dimension stage
	// recorded completion but for which no facts task was ever enqueued.
	// Feeds the reconciliation sweep that closes the crash window between
	// stage A finishing and stage B enqueueing.
	ListImportsMissingFactsTask(ctx context.Context) ([]string, error)
}
