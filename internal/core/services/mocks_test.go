package services_test

import (
	"context"
	"io"
	"log/slog"

	"github.com/stretchr/testify/mock"

	"github.com/opengov-tools/budget_import_app/internal/models"
)

// Shared mocks for the repository ports exercised by the service tests.

// --- Mock DimensionRepository ---
type MockDimensionRepository struct {
	mock.Mock
}

func (m *MockDimensionRepository) ListCodes(ctx context.Context, level models.DimensionLevel) (map[string]string, error) {
	args := m.Called(ctx, level)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockDimensionRepository) CountByLevel(ctx context.Context, level models.DimensionLevel) (int64, error) {
	args := m.Called(ctx, level)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDimensionRepository) CreateIfAbsent(ctx context.Context, dim models.Dimension) (bool, error) {
	args := m.Called(ctx, dim)
	return args.Bool(0), args.Error(1)
}

// --- Mock BudgetLineWriter ---
type MockBudgetLineWriter struct {
	mock.Mock
}

func (m *MockBudgetLineWriter) BulkInsert(ctx context.Context, lines []models.BudgetLine) (int64, error) {
	args := m.Called(ctx, lines)
	return args.Get(0).(int64), args.Error(1)
}

// --- Mock SharedReferenceCache ---
type MockSharedReferenceCache struct {
	mock.Mock
}

func (m *MockSharedReferenceCache) HasCode(ctx context.Context, level models.DimensionLevel, code string) (bool, error) {
	args := m.Called(ctx, level, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockSharedReferenceCache) GetLevel(ctx context.Context, level models.DimensionLevel) (map[string]string, error) {
	args := m.Called(ctx, level)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockSharedReferenceCache) PutCode(ctx context.Context, level models.DimensionLevel, code, name string) error {
	args := m.Called(ctx, level, code, name)
	return args.Error(0)
}

func (m *MockSharedReferenceCache) PutLevelIfAbsent(ctx context.Context, level models.DimensionLevel, codes map[string]string) (bool, error) {
	args := m.Called(ctx, level, codes)
	return args.Bool(0), args.Error(1)
}

func (m *MockSharedReferenceCache) HasLevel(ctx context.Context, level models.DimensionLevel) (bool, error) {
	args := m.Called(ctx, level)
	return args.Bool(0), args.Error(1)
}

func (m *MockSharedReferenceCache) Invalidate(ctx context.Context, level models.DimensionLevel) error {
	args := m.Called(ctx, level)
	return args.Error(0)
}

// --- Mock ImportJobRepository ---
type MockImportJobRepository struct {
	mock.Mock
}

func (m *MockImportJobRepository) FindImportJobByID(ctx context.Context, importID string) (*models.ImportJob, error) {
	args := m.Called(ctx, importID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ImportJob), args.Error(1)
}

func (m *MockImportJobRepository) ListRecentImportJobs(ctx context.Context, limit int) ([]models.ImportJob, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ImportJob), args.Error(1)
}

func (m *MockImportJobRepository) CountFailedImportJobs(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockImportJobRepository) CreateImportJob(ctx context.Context, job models.ImportJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockImportJobRepository) MarkProcessing(ctx context.Context, importID string) error {
	args := m.Called(ctx, importID)
	return args.Error(0)
}

func (m *MockImportJobRepository) SetTotalRows(ctx context.Context, importID string, total int64) error {
	args := m.Called(ctx, importID, total)
	return args.Error(0)
}

func (m *MockImportJobRepository) AdvanceProgress(ctx context.Context, importID string, processedDelta, failedDelta int64) error {
	args := m.Called(ctx, importID, processedDelta, failedDelta)
	return args.Error(0)
}

func (m *MockImportJobRepository) MarkDimensionsDone(ctx context.Context, importID string) error {
	args := m.Called(ctx, importID)
	return args.Error(0)
}

func (m *MockImportJobRepository) MarkCompleted(ctx context.Context, importID string) error {
	args := m.Called(ctx, importID)
	return args.Error(0)
}

func (m *MockImportJobRepository) MarkFailed(ctx context.Context, importID string, message string) error {
	args := m.Called(ctx, importID, message)
	return args.Error(0)
}

// --- Mock ImportTaskQueue ---
type MockImportTaskQueue struct {
	mock.Mock
}

func (m *MockImportTaskQueue) EnqueueTask(ctx context.Context, importID string, stage models.ImportStage) error {
	args := m.Called(ctx, importID, stage)
	return args.Error(0)
}

func (m *MockImportTaskQueue) ClaimNextTask(ctx context.Context) (*models.ImportTask, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ImportTask), args.Error(1)
}

func (m *MockImportTaskQueue) MarkTaskDone(ctx context.Context, taskID string) error {
	args := m.Called(ctx, taskID)
	return args.Error(0)
}

func (m *MockImportTaskQueue) MarkTaskFailed(ctx context.Context, taskID string) error {
	args := m.Called(ctx, taskID)
	return args.Error(0)
}

func (m *MockImportTaskQueue) QueueDepth(ctx context.Context) (int64, int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

func (m *MockImportTaskQueue) ListImportsMissingFactsTask(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// stubSheet replays preset row chunks as a spreadsheet source.
type stubSheet struct {
	chunks [][]map[string]string
	closed bool
}

func (s *stubSheet) ReadChunks(_ context.Context, _ int, fn func(rows []map[string]string) error) (int64, error) {
	var total int64
	for _, chunk := range s.chunks {
		total += int64(len(chunk))
		if err := fn(chunk); err != nil {
			return total, err
		}
	}
	return total, nil
}

func (s *stubSheet) Close() error {
	s.closed = true
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
