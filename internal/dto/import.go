package dto

import (
	"time"

	"github.com/opengov-tools/budget_import_app/internal/models"
)

// ImportJobResponse defines the data returned for one import progress record.
type ImportJobResponse struct {
	ImportID      string     `json:"importID"`
	Filename      string     `json:"filename"`
	FileSize      int64      `json:"fileSize"`
	ChunkSize     int        `json:"chunkSize"`
	Status        string     `json:"status"`
	TotalRows     int64      `json:"totalRows"`
	ProcessedRows int64      `json:"processedRows"`
	FailedRows    int64      `json:"failedRows"`
	Percentage    float64    `json:"percentage"`
	ErrorMessage  string     `json:"errorMessage,omitempty"`
	StartedAt     *time.Time `json:"startedAt,omitempty"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// ToImportJobResponse converts a models.ImportJob to ImportJobResponse DTO
func ToImportJobResponse(job *models.ImportJob) ImportJobResponse {
	return ImportJobResponse{
		ImportID:      job.ImportID,
		Filename:      job.Filename,
		FileSize:      job.FileSize,
		ChunkSize:     job.ChunkSize,
		Status:        string(job.Status),
		TotalRows:     job.TotalRows,
		ProcessedRows: job.ProcessedRows,
		FailedRows:    job.FailedRows,
		Percentage:    job.Percentage(),
		ErrorMessage:  job.ErrorMessage,
		StartedAt:     job.StartedAt,
		CompletedAt:   job.CompletedAt,
		CreatedAt:     job.CreatedAt,
	}
}

// ToListImportJobResponse converts a slice of models.ImportJob to response DTOs
func ToListImportJobResponse(jobs []models.ImportJob) []ImportJobResponse {
	res := make([]ImportJobResponse, len(jobs))
	for i, job := range jobs {
		res[i] = ToImportJobResponse(&job)
	}
	return res
}

// CacheCommandRequest optionally scopes a cache preload/clear to one level.
type CacheCommandRequest struct {
	Level string `json:"level" binding:"omitempty,dimlevel"`
}

// OpsStatusResponse is the operational snapshot served to monitoring.
type OpsStatusResponse struct {
	PendingTasks       int64           `json:"pendingTasks"`
	RunningTasks       int64           `json:"runningTasks"`
	FailedImports      int64           `json:"failedImports"`
	ChunkSizeSuggested int             `json:"chunkSizeSuggested"`
	CacheLevels        map[string]bool `json:"cacheLevels"`
}

// ToOpsStatusResponse converts a models.OpsStatus to OpsStatusResponse DTO
func ToOpsStatusResponse(status *models.OpsStatus) OpsStatusResponse {
	levels := make(map[string]bool, len(status.CacheLevels))
	for level, cached := range status.CacheLevels {
		levels[string(level)] = cached
	}
	return OpsStatusResponse{
		PendingTasks:       status.PendingTasks,
		RunningTasks:       status.RunningTasks,
		FailedImports:      status.FailedImports,
		ChunkSizeSuggested: status.ChunkSizeSuggested,
		CacheLevels:        levels,
	}
}
