package services

import (
	"context"
	"fmt"
	"log/slog"

	portsrepo "github.com/opengov-tools/budget_import_app/internal/core/ports/repositories"
	"github.com/opengov-tools/budget_import_app/internal/models"
)

// DimensionUpserter idempotently creates the hierarchy rows referenced by a
// normalized spreadsheet row, in strict parent-before-child order. Creation
// is always create-if-absent keyed by the natural code, so re-running the
// same file is safe. The cache is consulted first; a hit skips the store
// call, a miss goes to the store's create-if-absent (never a blind insert,
// the shared cache may be stale relative to a concurrent import).
type DimensionUpserter struct {
	dims   portsrepo.DimensionWriter
	cache  *ReferenceCache
	logger *slog.Logger
}

func NewDimensionUpserter(dims portsrepo.DimensionWriter, cache *ReferenceCache, logger *slog.Logger) *DimensionUpserter {
	return &DimensionUpserter{dims: dims, cache: cache, logger: logger}
}

// UpsertRow ensures every dimension referenced by the row exists. Levels
// with a blank code are skipped; each level's parent is the immediate
// upper level's code, left empty when that level is blank. The caller owns
// the failure policy: an error abandons this row only, never the stream.
func (u *DimensionUpserter) UpsertRow(ctx context.Context, row *models.ImportRow) error {
	chain := []struct {
		level models.DimensionLevel
		ref   models.CodeName
	}{
		{models.LevelJurisdiction, row.Jurisdiction},
		{models.LevelBudgetField, row.BudgetField},
		{models.LevelProgram, row.Program},
		{models.LevelActivity, row.Activity},
		{models.LevelSubActivity, row.SubActivity},
	}

	parentCode := ""
	for _, link := range chain {
		if link.ref.Code != "" {
			if err := u.ensure(ctx, link.level, link.ref.Code, link.ref.Name, parentCode); err != nil {
				return err
			}
		}
		parentCode = link.ref.Code
	}

	// Org units parent themselves: the parent unit must exist before the
	// sub-unit. A parent only ever referenced as a parent gets its code as
	// a placeholder name.
	if row.OrgUnitParent != "" && row.OrgUnitParent != row.OrgUnit.Code {
		if err := u.ensure(ctx, models.LevelOrgUnit, row.OrgUnitParent, row.OrgUnitParent, ""); err != nil {
			return err
		}
	}
	if err := u.ensure(ctx, models.LevelOrgUnit, row.OrgUnit.Code, row.OrgUnit.Name, row.OrgUnitParent); err != nil {
		return err
	}

	// Accounts are independent of the jurisdiction chain.
	return u.ensure(ctx, models.LevelAccount, row.Account.Code, row.Account.Name, "")
}

func (u *DimensionUpserter) ensure(ctx context.Context, level models.DimensionLevel, code, name, parentCode string) error {
	if u.cache.Has(ctx, level, code) {
		return nil
	}

	created, err := u.dims.CreateIfAbsent(ctx, models.Dimension{
		Level:      level,
		Code:       code,
		Name:       name,
		ParentCode: parentCode,
	})
	if err != nil {
		return fmt.Errorf("failed to ensure %s %s: %w", level, code, err)
	}
	if created {
		u.logger.Debug("Created dimension row",
			slog.String("level", string(level)),
			slog.String("code", code))
	}

	u.cache.Put(ctx, level, code, name)
	return nil
}
