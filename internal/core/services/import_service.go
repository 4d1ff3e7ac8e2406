package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/opengov-tools/budget_import_app/internal/apperrors"
	portsrepo "github.com/opengov-tools/budget_import_app/internal/core/ports/repositories"
	portssvc "github.com/opengov-tools/budget_import_app/internal/core/ports/services"
	"github.com/opengov-tools/budget_import_app/internal/models"
)

// ImportService sequences the two stages of an import. Stage A streams the
// spreadsheet through the dimension upserter; only after its completion is
// persisted as a durable fact does stage B get enqueued to stream the same
// file into bulk fact inserts. Progress counters are owned by stage B so a
// row is only ever counted once.
type ImportService struct {
	jobs      portsrepo.ImportJobRepositoryFacade
	tasks     portsrepo.ImportTaskQueue
	dims      portsrepo.DimensionRepositoryFacade
	lines     portsrepo.BudgetLineWriter
	shared    portsrepo.SharedReferenceCache
	openSheet portsrepo.SpreadsheetOpener
	policy    *ChunkSizePolicy
	batchSize int
	logger    *slog.Logger
}

// NewImportService wires the sequencer.
func NewImportService(
	jobs portsrepo.ImportJobRepositoryFacade,
	tasks portsrepo.ImportTaskQueue,
	dims portsrepo.DimensionRepositoryFacade,
	lines portsrepo.BudgetLineWriter,
	shared portsrepo.SharedReferenceCache,
	openSheet portsrepo.SpreadsheetOpener,
	policy *ChunkSizePolicy,
	batchSize int,
	logger *slog.Logger,
) *ImportService {
	return &ImportService{
		jobs:      jobs,
		tasks:     tasks,
		dims:      dims,
		lines:     lines,
		shared:    shared,
		openSheet: openSheet,
		policy:    policy,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Ensure implementation matches interface
var _ portssvc.ImportSvcFacade = (*ImportService)(nil)

// CreateImport registers a stored blob as a new import: persists the
// progress record with the current chunk-size recommendation and enqueues
// the dimension stage.
func (s *ImportService) CreateImport(ctx context.Context, filename, filePath string, fileSize int64) (*models.ImportJob, error) {
	job := models.ImportJob{
		ImportID:  uuid.NewString(),
		Filename:  filename,
		FilePath:  filePath,
		FileSize:  fileSize,
		ChunkSize: s.policy.ChunkSize(fileSize),
		Status:    models.ImportQueued,
		CreatedAt: time.Now(),
	}

	if err := s.jobs.CreateImportJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create import: %w", err)
	}
	if err := s.tasks.EnqueueTask(ctx, job.ImportID, models.StageDimensions); err != nil {
		return nil, fmt.Errorf("failed to enqueue dimension stage: %w", err)
	}

	s.logger.Info("Import created",
		slog.String("import_id", job.ImportID),
		slog.String("filename", filename),
		slog.Int64("file_size", fileSize),
		slog.Int("chunk_size", job.ChunkSize))
	return &job, nil
}

// GetImport retrieves one progress record.
func (s *ImportService) GetImport(ctx context.Context, importID string) (*models.ImportJob, error) {
	job, err := s.jobs.FindImportJobByID(ctx, importID)
	if err != nil {
		return nil, fmt.Errorf("failed to get import %s: %w", importID, err)
	}
	return job, nil
}

// ListImports retrieves up to limit recent imports, newest first.
func (s *ImportService) ListImports(ctx context.Context, limit int) ([]models.ImportJob, error) {
	jobs, err := s.jobs.ListRecentImportJobs(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list imports: %w", err)
	}
	return jobs, nil
}

// RunTask executes one claimed stage. Recoverable row-level problems never
// reach here; an error return is a job failure that marks the import failed
// and prevents the chained stage from ever being enqueued.
func (s *ImportService) RunTask(ctx context.Context, task *models.ImportTask) error {
	logger := s.logger.With(
		slog.String("import_id", task.ImportID),
		slog.String("stage", string(task.Stage)),
		slog.Int("attempt", task.Attempts))

	job, err := s.jobs.FindImportJobByID(ctx, task.ImportID)
	if err != nil {
		return fmt.Errorf("failed to load import for task %s: %w", task.TaskID, err)
	}

	switch task.Stage {
	case models.StageDimensions:
		err = s.runDimensionStage(ctx, job, logger)
	case models.StageFacts:
		err = s.runFactStage(ctx, job, logger)
	default:
		err = fmt.Errorf("unknown import stage %q", task.Stage)
	}

	if err != nil {
		logger.Error("Import stage failed", slog.String("error", err.Error()))
		// A not-ready fact stage is an ordering guard, not an import
		// failure; the import's fate was already decided by stage A.
		if !errors.Is(err, apperrors.ErrStageNotReady) {
			if markErr := s.jobs.MarkFailed(ctx, job.ImportID, err.Error()); markErr != nil {
				logger.Error("Failed to mark import failed", slog.String("error", markErr.Error()))
			}
		}
		return err
	}
	return nil
}

// runDimensionStage streams the file through the dimension upserter. Every
// row gets a fresh shot at creating its hierarchy rows; a poisoned row is
// logged and abandoned without stalling the stream. On success the stage's
// completion is persisted before the fact stage is enqueued, so a crash
// between the two is recoverable by the reconciliation sweep instead of
// silently losing the chained job.
func (s *ImportService) runDimensionStage(ctx context.Context, job *models.ImportJob, logger *slog.Logger) error {
	if err := s.jobs.MarkProcessing(ctx, job.ImportID); err != nil {
		return err
	}

	src, err := s.openSheet(job.FilePath)
	if err != nil {
		return fmt.Errorf("failed to open spreadsheet %s: %w", job.FilePath, err)
	}
	defer src.Close()

	// Cache and normalizer are scoped to this job instance: the local
	// cache layer assumes a single writer.
	cache := NewReferenceCache(s.shared, s.dims, logger)
	upserter := NewDimensionUpserter(s.dims, cache, logger)
	normalizer := NewRowNormalizer(logger)

	var rowNum int64
	total, err := src.ReadChunks(ctx, job.ChunkSize, func(rows []map[string]string) error {
		for _, raw := range rows {
			rowNum++
			row, ok := normalizer.Normalize(rowNum, raw)
			if !ok {
				continue
			}
			if upsertErr := upserter.UpsertRow(ctx, row); upsertErr != nil {
				logger.Error("Dimension upsert failed, abandoning row",
					slog.Int64("row", rowNum),
					slog.Any("row_data", row),
					slog.String("error", upsertErr.Error()))
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("dimension stage stream failed: %w", err)
	}

	if err := s.jobs.SetTotalRows(ctx, job.ImportID, total); err != nil {
		return err
	}
	// Durable completion fact first, enqueue second.
	if err := s.jobs.MarkDimensionsDone(ctx, job.ImportID); err != nil {
		return err
	}
	if err := s.tasks.EnqueueTask(ctx, job.ImportID, models.StageFacts); err != nil {
		return fmt.Errorf("failed to enqueue fact stage: %w", err)
	}

	logger.Info("Dimension stage completed", slog.Int64("total_rows", total))
	return nil
}

// runFactStage streams the file into the batch accumulator. It refuses to
// run unless the dimension stage's completion fact is present.
func (s *ImportService) runFactStage(ctx context.Context, job *models.ImportJob, logger *slog.Logger) error {
	if job.DimensionsDoneAt == nil {
		return apperrors.ErrStageNotReady
	}

	src, err := s.openSheet(job.FilePath)
	if err != nil {
		return fmt.Errorf("failed to open spreadsheet %s: %w", job.FilePath, err)
	}
	defer src.Close()

	normalizer := NewRowNormalizer(logger)
	batch := NewBatchAccumulator(s.lines, s.batchSize, logger)

	var rowNum int64
	total, err := src.ReadChunks(ctx, job.ChunkSize, func(rows []map[string]string) error {
		var processed, failed int64
		for _, raw := range rows {
			rowNum++
			row, ok := normalizer.Normalize(rowNum, raw)
			if !ok {
				failed++
				continue
			}
			flushed, dropped := batch.Add(ctx, s.buildLine(job.ImportID, row))
			processed += flushed
			failed += dropped
		}
		if processed > 0 || failed > 0 {
			if advErr := s.jobs.AdvanceProgress(ctx, job.ImportID, processed, failed); advErr != nil {
				return advErr
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("fact stage stream failed: %w", err)
	}

	// Guaranteed final flush on normal termination.
	processed, failed := batch.FlushRemaining(ctx)
	if processed > 0 || failed > 0 {
		if err := s.jobs.AdvanceProgress(ctx, job.ImportID, processed, failed); err != nil {
			return err
		}
	}

	// Covers the empty-file case where no advance ever fires the
	// auto-completion; a no-op when the counters already completed it.
	if err := s.jobs.MarkCompleted(ctx, job.ImportID); err != nil {
		return err
	}

	logger.Info("Fact stage completed", slog.Int64("total_rows", total))
	return nil
}

func (s *ImportService) buildLine(importID string, row *models.ImportRow) models.BudgetLine {
	return models.BudgetLine{
		ImportID:         importID,
		JurisdictionCode: row.Jurisdiction.Code,
		BudgetFieldCode:  row.BudgetField.Code,
		ProgramCode:      row.Program.Code,
		ActivityCode:     row.Activity.Code,
		SubActivityCode:  row.SubActivity.Code,
		OrgUnitCode:      row.OrgUnit.Code,
		AccountCode:      row.Account.Code,
		Description:      row.Description,
		FiscalYear:       row.FiscalYear,
		Quantity:         row.Quantity,
		UnitPrice:        row.UnitPrice,
		Total:            row.Total(),
		CreatedAt:        time.Now(),
	}
}

// ReconcileStalled enqueues the fact stage for imports whose dimension
// stage completed but which lost the enqueue to a crash.
func (s *ImportService) ReconcileStalled(ctx context.Context) (int, error) {
	importIDs, err := s.tasks.ListImportsMissingFactsTask(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list stalled imports: %w", err)
	}

	enqueued := 0
	for _, importID := range importIDs {
		if err := s.tasks.EnqueueTask(ctx, importID, models.StageFacts); err != nil {
			return enqueued, fmt.Errorf("failed to requeue fact stage for import %s: %w", importID, err)
		}
		s.logger.Warn("Requeued lost fact stage", slog.String("import_id", importID))
		enqueued++
	}
	return enqueued, nil
}
