package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	portsrepo "github.com/opengov-tools/budget_import_app/internal/core/ports/repositories"
	"github.com/opengov-tools/budget_import_app/internal/models"
)

// levelTables maps each dimension level to its table. Table names are taken
// from this fixed map only, never from input.
var levelTables = map[models.DimensionLevel]string{
	models.LevelJurisdiction: "jurisdictions",
	models.LevelBudgetField:  "budget_fields",
	models.LevelProgram:      "programs",
	models.LevelActivity:     "activities",
	models.LevelSubActivity:  "sub_activities",
	models.LevelOrgUnit:      "org_units",
	models.LevelAccount:      "accounts",
}

type PgxDimensionRepository struct {
	BaseRepository
}

// NewDimensionRepository creates a new repository for hierarchy dimensions.
func NewDimensionRepository(pool *pgxpool.Pool) portsrepo.DimensionRepositoryFacade {
	return &PgxDimensionRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure implementation matches interface
var _ portsrepo.DimensionRepositoryFacade = (*PgxDimensionRepository)(nil)

// CreateIfAbsent inserts a dimension row keyed by its natural code, doing
// nothing when the code already exists.
func (r *PgxDimensionRepository) CreateIfAbsent(ctx context.Context, dim models.Dimension) (bool, error) {
	table, ok := levelTables[dim.Level]
	if !ok {
		return false, fmt.Errorf("unknown dimension level %q", dim.Level)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (code, name, parent_code, created_at)
		VALUES ($1, $2, NULLIF($3, ''), NOW())
		ON CONFLICT (code) DO NOTHING;
	`, table)

	tag, err := r.Pool.Exec(ctx, query, dim.Code, dim.Name, dim.ParentCode)
	if err != nil {
		return false, fmt.Errorf("failed to create %s %s: %w", dim.Level, dim.Code, err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListCodes retrieves the full code→name mapping for a level.
func (r *PgxDimensionRepository) ListCodes(ctx context.Context, level models.DimensionLevel) (map[string]string, error) {
	table, ok := levelTables[level]
	if !ok {
		return nil, fmt.Errorf("unknown dimension level %q", level)
	}

	rows, err := r.Pool.Query(ctx, fmt.Sprintf(`SELECT code, name FROM %s;`, table))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s codes: %w", level, err)
	}
	defer rows.Close()

	codes := make(map[string]string)
	for rows.Next() {
		var code, name string
		if err := rows.Scan(&code, &name); err != nil {
			return nil, fmt.Errorf("failed to scan %s code: %w", level, err)
		}
		codes[code] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s codes: %w", level, err)
	}
	return codes, nil
}

// CountByLevel returns the number of dimension rows stored for a level.
func (r *PgxDimensionRepository) CountByLevel(ctx context.Context, level models.DimensionLevel) (int64, error) {
	table, ok := levelTables[level]
	if !ok {
		return 0, fmt.Errorf("unknown dimension level %q", level)
	}

	var count int64
	err := r.Pool.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s;`, table)).Scan(&count)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to count %s rows: %w", level, err)
	}
	return count, nil
}
