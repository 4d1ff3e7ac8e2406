package redis

import (
	"context"
	"fmt"
	"time"

	portsrepo "github.com/opengov-tools/budget_import_app/internal/core/ports/repositories"
	"github.com/opengov-tools/budget_import_app/internal/models"
	goredis "github.com/redis/go-redis/v9"
)

// loadedField marks a level hash as loaded. A redis hash cannot exist with
// zero fields, but a preload of an empty reference table must still count
// as "cached" so later callers do not re-preload.
const loadedField = "__loaded__"

type ReferenceCacheRepository struct {
	client *goredis.Client
	prefix string
	ttl    time.Duration
}

// NewReferenceCacheRepository creates the shared cache layer: one redis
// hash per dimension level with a bounded TTL.
func NewReferenceCacheRepository(client *goredis.Client, ttl time.Duration) portsrepo.SharedReferenceCache {
	return &ReferenceCacheRepository{
		client: client,
		prefix: "budget_import:refcache",
		ttl:    ttl,
	}
}

// Ensure implementation matches interface
var _ portsrepo.SharedReferenceCache = (*ReferenceCacheRepository)(nil)

func (r *ReferenceCacheRepository) levelKey(level models.DimensionLevel) string {
	return fmt.Sprintf("%s:%s", r.prefix, level)
}

// HasCode reports whether the code is cached for the level.
func (r *ReferenceCacheRepository) HasCode(ctx context.Context, level models.DimensionLevel, code string) (bool, error) {
	exists, err := r.client.HExists(ctx, r.levelKey(level), code).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check cached code %s/%s: %w", level, code, err)
	}
	return exists, nil
}

// GetLevel retrieves the cached code→name mapping for the level.
func (r *ReferenceCacheRepository) GetLevel(ctx context.Context, level models.DimensionLevel) (map[string]string, error) {
	result, err := r.client.HGetAll(ctx, r.levelKey(level)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read cached level %s: %w", level, err)
	}
	delete(result, loadedField)
	return result, nil
}

// PutCode caches a single code→name pair. The TTL is only set when the key
// has none yet, so single puts never extend a snapshot's validity window.
func (r *ReferenceCacheRepository) PutCode(ctx context.Context, level models.DimensionLevel, code, name string) error {
	key := r.levelKey(level)
	if err := r.client.HSet(ctx, key, code, name).Err(); err != nil {
		return fmt.Errorf("failed to cache code %s/%s: %w", level, code, err)
	}
	if err := r.client.ExpireNX(ctx, key, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set TTL on cached level %s: %w", level, err)
	}
	return nil
}

// PutLevelIfAbsent snapshots the full mapping for a level, first caller
// wins. The check-then-write pair is not atomic; a concurrent double write
// is harmless because both writers snapshot the same immutable store state.
func (r *ReferenceCacheRepository) PutLevelIfAbsent(ctx context.Context, level models.DimensionLevel, codes map[string]string) (bool, error) {
	key := r.levelKey(level)

	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check cached level %s: %w", level, err)
	}
	if exists > 0 {
		return false, nil
	}

	fields := make(map[string]string, len(codes)+1)
	fields[loadedField] = "1"
	for code, name := range codes {
		fields[code] = name
	}
	if err := r.client.HSet(ctx, key, fields).Err(); err != nil {
		return false, fmt.Errorf("failed to snapshot level %s: %w", level, err)
	}
	if err := r.client.Expire(ctx, key, r.ttl).Err(); err != nil {
		return false, fmt.Errorf("failed to set TTL on level %s: %w", level, err)
	}
	return true, nil
}

// HasLevel reports whether any entry exists for the level.
func (r *ReferenceCacheRepository) HasLevel(ctx context.Context, level models.DimensionLevel) (bool, error) {
	exists, err := r.client.Exists(ctx, r.levelKey(level)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check cached level %s: %w", level, err)
	}
	return exists > 0, nil
}

// Invalidate removes the level's entry.
func (r *ReferenceCacheRepository) Invalidate(ctx context.Context, level models.DimensionLevel) error {
	if err := r.client.Del(ctx, r.levelKey(level)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached level %s: %w", level, err)
	}
	return nil
}
