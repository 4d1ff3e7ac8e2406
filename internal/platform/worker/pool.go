package worker

import (
	"context"
	"log/slog"
	"time"

	portsrepo "github.com/opengov-tools/budget_import_app/internal/core/ports/repositories"
	portssvc "github.com/opengov-tools/budget_import_app/internal/core/ports/services"
)

const reconcileInterval = time.Minute

// Pool polls the durable task queue and runs claimed import stages. Each
// worker goroutine processes one task at a time; the row loop inside a task
// is single-threaded by design, so concurrency only exists across distinct
// imports. A separate loop periodically reconciles imports whose fact stage
// was lost between stage completion and enqueue.
type Pool struct {
	tasks        portsrepo.ImportTaskQueue
	runner       portssvc.ImportRunnerSvc
	workers      int
	pollInterval time.Duration
	logger       *slog.Logger
}

// NewPool creates a worker pool. Non-positive workers defaults to 1.
func NewPool(tasks portsrepo.ImportTaskQueue, runner portssvc.ImportRunnerSvc, workers int, pollInterval time.Duration, logger *slog.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	return &Pool{
		tasks:        tasks,
		runner:       runner,
		workers:      workers,
		pollInterval: pollInterval,
		logger:       logger,
	}
}

// Start launches the workers and the reconciliation loop. It returns
// immediately; everything stops when ctx is cancelled.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		go p.run(ctx, i)
	}
	go p.reconcile(ctx)
	p.logger.Info("Import worker pool started", slog.Int("workers", p.workers))
}

func (p *Pool) run(ctx context.Context, id int) {
	logger := p.logger.With(slog.Int("worker", id))
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		task, err := p.tasks.ClaimNextTask(ctx)
		if err != nil {
			logger.Error("Failed to claim task", slog.String("error", err.Error()))
			p.sleep(ctx)
			continue
		}
		if task == nil {
			p.sleep(ctx)
			continue
		}

		logger.Info("Claimed import task",
			slog.String("task_id", task.TaskID),
			slog.String("import_id", task.ImportID),
			slog.String("stage", string(task.Stage)))

		if runErr := p.runner.RunTask(ctx, task); runErr != nil {
			if err := p.tasks.MarkTaskFailed(ctx, task.TaskID); err != nil {
				logger.Error("Failed to mark task failed", slog.String("task_id", task.TaskID), slog.String("error", err.Error()))
			}
			continue
		}
		if err := p.tasks.MarkTaskDone(ctx, task.TaskID); err != nil {
			logger.Error("Failed to mark task done", slog.String("task_id", task.TaskID), slog.String("error", err.Error()))
		}
	}
}

func (p *Pool) reconcile(ctx context.Context) {
	ticker := time.NewTicker(reconcileInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := p.runner.ReconcileStalled(ctx)
			if err != nil {
				p.logger.Error("Reconciliation sweep failed", slog.String("error", err.Error()))
				continue
			}
			if n > 0 {
				p.logger.Info("Reconciliation sweep requeued fact stages", slog.Int("count", n))
			}
		}
	}
}

func (p *Pool) sleep(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(p.pollInterval):
	}
}
