package services

import (
	"context"
	"fmt"
	"log/slog"

	portsrepo "github.com/opengov-tools/budget_import_app/internal/core/ports/repositories"
	portssvc "github.com/opengov-tools/budget_import_app/internal/core/ports/services"
	"github.com/opengov-tools/budget_import_app/internal/models"
)

// CacheService backs the operational cache commands: preload, clear and
// per-level cache state.
type CacheService struct {
	shared portsrepo.SharedReferenceCache
	dims   portsrepo.DimensionReader
	logger *slog.Logger
}

func NewCacheService(shared portsrepo.SharedReferenceCache, dims portsrepo.DimensionReader, logger *slog.Logger) *CacheService {
	return &CacheService{shared: shared, dims: dims, logger: logger}
}

// Ensure implementation matches interface
var _ portssvc.CacheSvcFacade = (*CacheService)(nil)

// PreloadAll snapshots every dimension level into the shared cache. Levels
// that already have an entry are left alone (first caller wins). An empty
// reference store preloads empty mappings without error.
func (s *CacheService) PreloadAll(ctx context.Context) error {
	cache := NewReferenceCache(s.shared, s.dims, s.logger)
	for _, level := range models.HierarchyOrder {
		if err := cache.Preload(ctx, level); err != nil {
			return fmt.Errorf("failed to preload level %s: %w", level, err)
		}
	}
	return nil
}

// PreloadLevel snapshots a single level (first caller wins).
func (s *CacheService) PreloadLevel(ctx context.Context, level models.DimensionLevel) error {
	cache := NewReferenceCache(s.shared, s.dims, s.logger)
	if err := cache.Preload(ctx, level); err != nil {
		return fmt.Errorf("failed to preload level %s: %w", level, err)
	}
	return nil
}

// InvalidateLevel clears a single level from the shared cache.
func (s *CacheService) InvalidateLevel(ctx context.Context, level models.DimensionLevel) error {
	if err := s.shared.Invalidate(ctx, level); err != nil {
		return fmt.Errorf("failed to invalidate level %s: %w", level, err)
	}
	return nil
}

// InvalidateAll clears every level from the shared cache.
func (s *CacheService) InvalidateAll(ctx context.Context) error {
	for _, level := range models.HierarchyOrder {
		if err := s.shared.Invalidate(ctx, level); err != nil {
			return fmt.Errorf("failed to invalidate level %s: %w", level, err)
		}
	}
	s.logger.Info("Shared reference cache cleared")
	return nil
}

// LevelStates reports, per level, whether a shared cache entry exists.
func (s *CacheService) LevelStates(ctx context.Context) (map[models.DimensionLevel]bool, error) {
	states := make(map[models.DimensionLevel]bool, len(models.HierarchyOrder))
	for _, level := range models.HierarchyOrder {
		cached, err := s.shared.HasLevel(ctx, level)
		if err != nil {
			return nil, fmt.Errorf("failed to check level %s: %w", level, err)
		}
		states[level] = cached
	}
	return states, nil
}
