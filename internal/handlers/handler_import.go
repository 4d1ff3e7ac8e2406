package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/opengov-tools/budget_import_app/internal/apperrors"
	portssvc "github.com/opengov-tools/budget_import_app/internal/core/ports/services"
	"github.com/opengov-tools/budget_import_app/internal/dto"
	"github.com/opengov-tools/budget_import_app/internal/middleware"
	"github.com/opengov-tools/budget_import_app/pkg/config"
	"github.com/ulule/limiter/v3"
)

const defaultListLimit = 50

// importHandler handles HTTP requests related to imports.
type importHandler struct {
	importService portssvc.ImportSvcFacade
	uploadDir     string
	maxUploadSize int64 // bytes
}

// newImportHandler creates a new importHandler.
func newImportHandler(is portssvc.ImportSvcFacade, uploadDir string, maxUploadSizeMB int64) *importHandler {
	return &importHandler{
		importService: is,
		uploadDir:     uploadDir,
		maxUploadSize: maxUploadSizeMB * 1024 * 1024,
	}
}

// registerImportRoutes registers routes related to imports.
func registerImportRoutes(rg *gin.RouterGroup, is portssvc.ImportSvcFacade, cfg *config.Config, uploadLimiter *limiter.Limiter) {
	h := newImportHandler(is, cfg.UploadDir, cfg.MaxUploadSizeMB)

	imports := rg.Group("/imports")
	{
		imports.POST("", middleware.RateLimit(uploadLimiter), h.createImport)
		imports.GET("", h.listImports)
		imports.GET("/:importID", h.getImport)
	}
}

// createImport godoc
// @Summary Upload a budget spreadsheet
// @Description Stores the uploaded file and enqueues the two-stage import
// @Tags imports
// @Accept  multipart/form-data
// @Produce  json
// @Param   file formData file true "Spreadsheet file (xlsx)"
// @Success 202 {object} dto.ImportJobResponse
// @Failure 400 {object} map[string]string "Missing or invalid file"
// @Failure 413 {object} map[string]string "File too large"
// @Failure 500 {object} map[string]string "Failed to create import"
// @Router /imports [post]
func (h *importHandler) createImport(c *gin.Context) {
	logger := loggerFrom(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		logger.Warn("Upload request missing file", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "A 'file' form field is required"})
		return
	}

	if fileHeader.Size > h.maxUploadSize {
		logger.Warn("Upload exceeds size cap",
			slog.Int64("size", fileHeader.Size),
			slog.Int64("max", h.maxUploadSize))
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("File exceeds the %d byte upload cap", h.maxUploadSize)})
		return
	}

	// Path-addressable blob location: the stored name is ours, never the
	// client's.
	blobName := uuid.NewString() + filepath.Ext(fileHeader.Filename)
	blobPath := filepath.Join(h.uploadDir, blobName)
	if err := c.SaveUploadedFile(fileHeader, blobPath); err != nil {
		logger.Error("Failed to store uploaded file", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store uploaded file"})
		return
	}

	job, err := h.importService.CreateImport(c.Request.Context(), fileHeader.Filename, blobPath, fileHeader.Size)
	if err != nil {
		logger.Error("Failed to create import", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create import"})
		return
	}

	logger.Info("Import accepted",
		slog.String("import_id", job.ImportID),
		slog.String("filename", job.Filename))
	c.JSON(http.StatusAccepted, dto.ToImportJobResponse(job))
}

// getImport godoc
// @Summary Get import progress
// @Description Retrieves the progress record for one import
// @Tags imports
// @Produce  json
// @Param   importID path string true "Import ID"
// @Success 200 {object} dto.ImportJobResponse
// @Failure 404 {object} map[string]string "Import not found"
// @Failure 500 {object} map[string]string "Failed to get import"
// @Router /imports/{importID} [get]
func (h *importHandler) getImport(c *gin.Context) {
	logger := loggerFrom(c)
	importID := c.Param("importID")

	job, err := h.importService.GetImport(c.Request.Context(), importID)
	if err != nil {
		if errors.Is(err, apperrors.ErrImportNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Import '%s' not found", importID)})
			return
		}
		logger.Error("Failed to get import", slog.String("import_id", importID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get import"})
		return
	}

	c.JSON(http.StatusOK, dto.ToImportJobResponse(job))
}

// listImports godoc
// @Summary List recent imports
// @Description Retrieves recent import progress records, newest first
// @Tags imports
// @Produce  json
// @Param   limit query int false "Maximum records to return" default(50)
// @Success 200 {array} dto.ImportJobResponse
// @Failure 500 {object} map[string]string "Failed to list imports"
// @Router /imports [get]
func (h *importHandler) listImports(c *gin.Context) {
	logger := loggerFrom(c)

	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'limit' query parameter"})
			return
		}
		limit = parsed
	}

	jobs, err := h.importService.ListImports(c.Request.Context(), limit)
	if err != nil {
		logger.Error("Failed to list imports", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list imports"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListImportJobResponse(jobs))
}
