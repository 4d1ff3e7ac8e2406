package services

import (
	"context"
	"fmt"

	portsrepo "github.com/opengov-tools/budget_import_app/internal/core/ports/repositories"
	portssvc "github.com/opengov-tools/budget_import_app/internal/core/ports/services"
	"github.com/opengov-tools/budget_import_app/internal/models"
)

// OpsService assembles the operational snapshot polled by monitoring.
type OpsService struct {
	jobs   portsrepo.ImportJobReader
	tasks  portsrepo.ImportTaskQueue
	cache  portssvc.CacheSvcFacade
	policy *ChunkSizePolicy
}

func NewOpsService(jobs portsrepo.ImportJobReader, tasks portsrepo.ImportTaskQueue, cache portssvc.CacheSvcFacade, policy *ChunkSizePolicy) *OpsService {
	return &OpsService{jobs: jobs, tasks: tasks, cache: cache, policy: policy}
}

// Ensure implementation matches interface
var _ portssvc.OpsSvcFacade = (*OpsService)(nil)

// Status reports queue depth, failed-import count, the chunk size the
// policy would currently recommend for an unknown file size, and which
// levels hold a shared cache entry.
func (s *OpsService) Status(ctx context.Context) (*models.OpsStatus, error) {
	pending, running, err := s.tasks.QueueDepth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read queue depth: %w", err)
	}

	failedImports, err := s.jobs.CountFailedImportJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count failed imports: %w", err)
	}

	levels, err := s.cache.LevelStates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache state: %w", err)
	}

	return &models.OpsStatus{
		PendingTasks:       pending,
		RunningTasks:       running,
		FailedImports:      failedImports,
		ChunkSizeSuggested: s.policy.ChunkSize(0),
		CacheLevels:        levels,
	}, nil
}
