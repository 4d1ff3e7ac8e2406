package services

import (
	"context"
	"fmt"
	"log/slog"

	portsrepo "github.com/opengov-tools/budget_import_app/internal/core/ports/repositories"
	"github.com/opengov-tools/budget_import_app/internal/models"
)

// ReferenceCache is the two-level cache over hierarchy codes. The local
// layer is a plain map owned by exactly one job instance (single writer, no
// locking); it shadows the shared redis layer to avoid repeated round-trips
// for the same level+code pair inside one streaming pass.
//
// Both layers are advisory: a hit authorizes skipping a create-if-absent
// call, a miss says nothing about existence and always falls through to the
// store's create-if-absent. Never treat a miss as "does not exist".
type ReferenceCache struct {
	shared portsrepo.SharedReferenceCache
	store  portsrepo.DimensionReader
	local  map[models.DimensionLevel]map[string]struct{}
	logger *slog.Logger
}

// NewReferenceCache creates a cache instance for a single job run. Each job
// gets its own instance; the local layer must not be shared across jobs.
func NewReferenceCache(shared portsrepo.SharedReferenceCache, store portsrepo.DimensionReader, logger *slog.Logger) *ReferenceCache {
	return &ReferenceCache{
		shared: shared,
		store:  store,
		local:  make(map[models.DimensionLevel]map[string]struct{}),
		logger: logger,
	}
}

// Has reports whether the code is known to exist at the level. A shared
// layer error degrades to a miss: the cache is an optimization, not a
// dependency, so redis being down slows the import rather than failing it.
func (c *ReferenceCache) Has(ctx context.Context, level models.DimensionLevel, code string) bool {
	if codes, ok := c.local[level]; ok {
		if _, hit := codes[code]; hit {
			return true
		}
	}

	hit, err := c.shared.HasCode(ctx, level, code)
	if err != nil {
		c.logger.Warn("Shared cache lookup failed, treating as miss",
			slog.String("level", string(level)),
			slog.String("code", code),
			slog.String("error", err.Error()))
		return false
	}
	if hit {
		c.putLocal(level, code)
	}
	return hit
}

// Get retrieves the shared layer's code→name mapping for a level.
func (c *ReferenceCache) Get(ctx context.Context, level models.DimensionLevel) (map[string]string, error) {
	codes, err := c.shared.GetLevel(ctx, level)
	if err != nil {
		return nil, fmt.Errorf("failed to get cached level %s: %w", level, err)
	}
	return codes, nil
}

// Put records a confirmed code in both layers. Shared layer failures are
// logged and swallowed for the same reason as in Has.
func (c *ReferenceCache) Put(ctx context.Context, level models.DimensionLevel, code, name string) {
	c.putLocal(level, code)
	if err := c.shared.PutCode(ctx, level, code, name); err != nil {
		c.logger.Warn("Failed to write code to shared cache",
			slog.String("level", string(level)),
			slog.String("code", code),
			slog.String("error", err.Error()))
	}
}

// Preload snapshots the full code set for a level from the store into the
// shared layer, only when no entry exists yet (first caller wins).
func (c *ReferenceCache) Preload(ctx context.Context, level models.DimensionLevel) error {
	cached, err := c.shared.HasLevel(ctx, level)
	if err != nil {
		return fmt.Errorf("failed to check shared cache for level %s: %w", level, err)
	}
	if cached {
		return nil
	}

	codes, err := c.store.ListCodes(ctx, level)
	if err != nil {
		return fmt.Errorf("failed to load %s codes for preload: %w", level, err)
	}

	written, err := c.shared.PutLevelIfAbsent(ctx, level, codes)
	if err != nil {
		return fmt.Errorf("failed to preload level %s: %w", level, err)
	}
	if written {
		c.logger.Info("Preloaded dimension level into shared cache",
			slog.String("level", string(level)),
			slog.Int("codes", len(codes)))
	}
	return nil
}

// Invalidate drops the level from both layers.
func (c *ReferenceCache) Invalidate(ctx context.Context, level models.DimensionLevel) error {
	delete(c.local, level)
	if err := c.shared.Invalidate(ctx, level); err != nil {
		return fmt.Errorf("failed to invalidate level %s: %w", level, err)
	}
	return nil
}

func (c *ReferenceCache) putLocal(level models.DimensionLevel, code string) {
	codes, ok := c.local[level]
	if !ok {
		codes = make(map[string]struct{})
		c.local[level] = codes
	}
	codes[code] = struct{}{}
}
