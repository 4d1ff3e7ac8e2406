package services

import (
	"context"
	"log/slog"

	portsrepo "github.com/opengov-tools/budget_import_app/internal/core/ports/repositories"
	"github.com/opengov-tools/budget_import_app/internal/models"
)

const defaultBulkBatchSize = 100

// BatchAccumulator buffers fact rows in order and flushes them through one
// bulk insert whenever the buffer reaches the batch threshold. A failed
// flush drops the whole batch: the batch is logged with its contents and
// counted as failed rows, and the pipeline keeps going. Recovery for a
// dropped batch is operator re-upload; retrying here would trade pipeline
// liveness for single-batch durability.
type BatchAccumulator struct {
	writer    portsrepo.BudgetLineWriter
	threshold int
	buf       []models.BudgetLine
	logger    *slog.Logger
}

// NewBatchAccumulator creates an accumulator flushing every threshold rows.
// A non-positive threshold falls back to the default of 100.
func NewBatchAccumulator(writer portsrepo.BudgetLineWriter, threshold int, logger *slog.Logger) *BatchAccumulator {
	if threshold <= 0 {
		threshold = defaultBulkBatchSize
	}
	return &BatchAccumulator{
		writer:    writer,
		threshold: threshold,
		buf:       make([]models.BudgetLine, 0, threshold),
		logger:    logger,
	}
}

// Add buffers one line, flushing when the threshold is reached. It returns
// the number of rows flushed and dropped by this call (zero for a plain
// buffered add).
func (b *BatchAccumulator) Add(ctx context.Context, line models.BudgetLine) (flushed int64, dropped int64) {
	b.buf = append(b.buf, line)
	if len(b.buf) < b.threshold {
		return 0, 0
	}
	return b.flush(ctx)
}

// FlushRemaining unconditionally flushes whatever is buffered. Called at
// stream end so a final partial batch is never left behind.
func (b *BatchAccumulator) FlushRemaining(ctx context.Context) (flushed int64, dropped int64) {
	if len(b.buf) == 0 {
		return 0, 0
	}
	return b.flush(ctx)
}

// Buffered reports the number of rows currently held.
func (b *BatchAccumulator) Buffered() int {
	return len(b.buf)
}

func (b *BatchAccumulator) flush(ctx context.Context) (int64, int64) {
	batch := b.buf
	b.buf = make([]models.BudgetLine, 0, b.threshold)

	count, err := b.writer.BulkInsert(ctx, batch)
	if err != nil {
		b.logger.Error("Bulk insert failed, dropping batch",
			slog.Int("batch_size", len(batch)),
			slog.Any("batch", batch),
			slog.String("error", err.Error()))
		return 0, int64(len(batch))
	}
	return count, 0
}
