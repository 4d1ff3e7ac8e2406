package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/opengov-tools/budget_import_app/internal/apperrors"
	portssvc "github.com/opengov-tools/budget_import_app/internal/core/ports/services"
	"github.com/opengov-tools/budget_import_app/internal/dto"
	"github.com/opengov-tools/budget_import_app/internal/handlers"
	"github.com/opengov-tools/budget_import_app/internal/models"
	"github.com/opengov-tools/budget_import_app/pkg/config"
)

// --- Mock ImportService ---
type MockImportService struct {
	mock.Mock
}

func (m *MockImportService) CreateImport(ctx context.Context, filename, filePath string, fileSize int64) (*models.ImportJob, error) {
	args := m.Called(ctx, filename, filePath, fileSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ImportJob), args.Error(1)
}

func (m *MockImportService) GetImport(ctx context.Context, importID string) (*models.ImportJob, error) {
	args := m.Called(ctx, importID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ImportJob), args.Error(1)
}

func (m *MockImportService) ListImports(ctx context.Context, limit int) ([]models.ImportJob, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ImportJob), args.Error(1)
}

func (m *MockImportService) RunTask(ctx context.Context, task *models.ImportTask) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockImportService) ReconcileStalled(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

var _ portssvc.ImportSvcFacade = (*MockImportService)(nil)

// --- Mock CacheService ---
type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) PreloadAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCacheService) PreloadLevel(ctx context.Context, level models.DimensionLevel) error {
	args := m.Called(ctx, level)
	return args.Error(0)
}

func (m *MockCacheService) InvalidateAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCacheService) InvalidateLevel(ctx context.Context, level models.DimensionLevel) error {
	args := m.Called(ctx, level)
	return args.Error(0)
}

func (m *MockCacheService) LevelStates(ctx context.Context) (map[models.DimensionLevel]bool, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[models.DimensionLevel]bool), args.Error(1)
}

var _ portssvc.CacheSvcFacade = (*MockCacheService)(nil)

// --- Mock OpsService ---
type MockOpsService struct {
	mock.Mock
}

func (m *MockOpsService) Status(ctx context.Context) (*models.OpsStatus, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OpsStatus), args.Error(1)
}

var _ portssvc.OpsSvcFacade = (*MockOpsService)(nil)

func discardHandlerLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- Test Suite ---
type HandlerTestSuite struct {
	suite.Suite
	router      *gin.Engine
	mockImports *MockImportService
	mockCache   *MockCacheService
	mockOps     *MockOpsService
}

func (suite *HandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	suite.mockImports = new(MockImportService)
	suite.mockCache = new(MockCacheService)
	suite.mockOps = new(MockOpsService)

	cfg := &config.Config{
		UploadDir:       suite.T().TempDir(),
		MaxUploadSizeMB: 1,
	}
	uploadLimiter := limiter.New(memory.NewStore(), limiter.Rate{Period: time.Minute, Limit: 1000})

	suite.router = gin.New()
	handlers.RegisterRoutes(suite.router, cfg, suite.mockImports, suite.mockCache, suite.mockOps, uploadLimiter, discardHandlerLogger())
}

func (suite *HandlerTestSuite) multipartUpload(content string) *http.Request {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "budget.xlsx")
	suite.Require().NoError(err)
	_, err = part.Write([]byte(content))
	suite.Require().NoError(err)
	suite.Require().NoError(writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/imports", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func (suite *HandlerTestSuite) TestCreateImport_Accepted() {
	job := &models.ImportJob{
		ImportID:  "imp-1",
		Filename:  "budget.xlsx",
		ChunkSize: 500,
		Status:    models.ImportQueued,
		CreatedAt: time.Now(),
	}
	suite.mockImports.On("CreateImport", mock.Anything, "budget.xlsx", mock.AnythingOfType("string"), mock.AnythingOfType("int64")).
		Return(job, nil).Once()

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, suite.multipartUpload("cell data"))

	suite.Equal(http.StatusAccepted, w.Code)

	var resp dto.ImportJobResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("imp-1", resp.ImportID)
	suite.Equal(string(models.ImportQueued), resp.Status)
	suite.mockImports.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestCreateImport_MissingFile() {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/imports", strings.NewReader(""))
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockImports.AssertNotCalled(suite.T(), "CreateImport", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestCreateImport_TooLarge() {
	// 1 MiB cap from the suite config
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, suite.multipartUpload(strings.Repeat("x", 2*1024*1024)))

	suite.Equal(http.StatusRequestEntityTooLarge, w.Code)
	suite.mockImports.AssertNotCalled(suite.T(), "CreateImport", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestGetImport_Success() {
	job := &models.ImportJob{
		ImportID:      "imp-1",
		Status:        models.ImportProcessing,
		TotalRows:     10,
		ProcessedRows: 4,
		FailedRows:    1,
	}
	suite.mockImports.On("GetImport", mock.Anything, "imp-1").Return(job, nil).Once()

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/imports/imp-1", nil))

	suite.Equal(http.StatusOK, w.Code)

	var resp dto.ImportJobResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.InDelta(50.0, resp.Percentage, 0.001)
}

func (suite *HandlerTestSuite) TestGetImport_NotFound() {
	suite.mockImports.On("GetImport", mock.Anything, "missing").
		Return(nil, fmt.Errorf("lookup: %w", apperrors.ErrImportNotFound)).Once()

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/imports/missing", nil))

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlerTestSuite) TestListImports_InvalidLimit() {
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/imports?limit=nope", nil))

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestListImports_DefaultLimit() {
	suite.mockImports.On("ListImports", mock.Anything, 50).Return([]models.ImportJob{}, nil).Once()

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/imports", nil))

	suite.Equal(http.StatusOK, w.Code)
	suite.mockImports.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestCachePreload_AllLevels() {
	suite.mockCache.On("PreloadAll", mock.Anything).Return(nil).Once()

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/cache/preload", nil))

	suite.Equal(http.StatusNoContent, w.Code)
	suite.mockCache.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestCachePreload_SingleLevel() {
	suite.mockCache.On("PreloadLevel", mock.Anything, models.LevelProgram).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cache/preload", strings.NewReader(`{"level":"program"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusNoContent, w.Code)
	suite.mockCache.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestCachePreload_UnknownLevelRejected() {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cache/preload", strings.NewReader(`{"level":"ministry"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockCache.AssertNotCalled(suite.T(), "PreloadLevel", mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestCacheClear_AllLevels() {
	suite.mockCache.On("InvalidateAll", mock.Anything).Return(nil).Once()

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/cache", nil))

	suite.Equal(http.StatusNoContent, w.Code)
	suite.mockCache.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestOpsStatus() {
	suite.mockOps.On("Status", mock.Anything).Return(&models.OpsStatus{
		PendingTasks:       3,
		RunningTasks:       1,
		FailedImports:      2,
		ChunkSizeSuggested: 250,
		CacheLevels:        map[models.DimensionLevel]bool{models.LevelProgram: true},
	}, nil).Once()

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ops/status", nil))

	suite.Equal(http.StatusOK, w.Code)

	var resp dto.OpsStatusResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(int64(3), resp.PendingTasks)
	suite.Equal(250, resp.ChunkSizeSuggested)
	suite.True(resp.CacheLevels["program"])
}

func (suite *HandlerTestSuite) TestHealthz() {
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	suite.Equal(http.StatusOK, w.Code)
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}
