package repositories

import (
	"context"

	"github.com/opengov-tools/budget_import_app/internal/models"
)

// SharedReferenceCache is the cross-process cache layer keyed per dimension
// level. Entries are advisory with a bounded TTL: a miss never means the
// code is absent from the store, and values are immutable facts so
// last-writer-wins on concurrent puts is acceptable.
type SharedReferenceCache interface {
	// HasCode reports whether the code is cached for the level.
	HasCode(ctx context.Context, level models.DimensionLevel, code string) (bool, error)

	// GetLevel retrieves the cached code→name mapping for the level.
	// An expired or never-loaded level yields an empty map.
	GetLevel(ctx context.Context, level models.DimensionLevel) (map[string]string, error)

	// PutCode caches a single code→name pair.
	PutCode(ctx context.Context, level models.DimensionLevel, code, name string) error

	// PutLevelIfAbsent snapshots the full mapping for a level, only if no
	// entry exists yet (first caller wins). Reports whether it wrote.
	PutLevelIfAbsent(ctx context.Context, level models.DimensionLevel, codes map[string]string) (bool, error)

	// HasLevel reports whether any entry exists for the level.
	HasLevel(ctx context.Context, level models.DimensionLevel) (bool, error)

	// Invalidate removes the level's entry.
	Invalidate(ctx context.Context, level models.DimensionLevel) error
}
