package services

import (
	"log/slog"

	portsrepo "github.com/opengov-tools/budget_import_app/internal/core/ports/repositories"
	portssvc "github.com/opengov-tools/budget_import_app/internal/core/ports/services"
)

// Container holds all the services and manages their dependencies.
type Container struct {
	Import portssvc.ImportSvcFacade
	Cache  portssvc.CacheSvcFacade
	Ops    portssvc.OpsSvcFacade
	Policy *ChunkSizePolicy
}

// ContainerConfig carries the pipeline tunables into the service container.
type ContainerConfig struct {
	// BulkBatchSize is the fact-insert batch threshold, distinct from the
	// streaming chunk size.
	BulkBatchSize int
	// MemoryCeilingMB bounds the headroom estimate for chunk sizing.
	MemoryCeilingMB int64
}

// NewContainer creates a new service container with properly initialized
// dependencies.
func NewContainer(repos *portsrepo.RepositoryProvider, openSheet portsrepo.SpreadsheetOpener, cfg ContainerConfig, logger *slog.Logger) *Container {
	policy := NewChunkSizePolicy(DefaultHeadroom(cfg.MemoryCeilingMB))

	importSvc := NewImportService(
		repos.ImportJobRepo,
		repos.ImportTaskRepo,
		repos.DimensionRepo,
		repos.BudgetLineRepo,
		repos.ReferenceCache,
		openSheet,
		policy,
		cfg.BulkBatchSize,
		logger,
	)
	cacheSvc := NewCacheService(repos.ReferenceCache, repos.DimensionRepo, logger)
	opsSvc := NewOpsService(repos.ImportJobRepo, repos.ImportTaskRepo, cacheSvc, policy)

	return &Container{
		Import: importSvc,
		Cache:  cacheSvc,
		Ops:    opsSvc,
		Policy: policy,
	}
}
