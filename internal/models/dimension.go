package models

// DimensionLevel identifies one level of the budget hierarchy.
type DimensionLevel string

const (
	LevelJurisdiction DimensionLevel = "jurisdiction"
	LevelBudgetField  DimensionLevel = "budget_field"
	LevelProgram      DimensionLevel = "program"
	LevelActivity     DimensionLevel = "activity"
	LevelSubActivity  DimensionLevel = "sub_activity"
	LevelOrgUnit      DimensionLevel = "org_unit"
	LevelAccount      DimensionLevel = "account"
)

// HierarchyOrder lists every level in parent-before-child insertion order.
// Jurisdiction through sub-activity form one chain; org units parent
// themselves (unit before sub-unit); accounts are independent.
var HierarchyOrder = []DimensionLevel{
	LevelJurisdiction,
	LevelBudgetField,
	LevelProgram,
	LevelActivity,
	LevelSubActivity,
	LevelOrgUnit,
	LevelAccount,
}

// IsValidLevel reports whether s names a known dimension level.
func IsValidLevel(s string) bool {
	for _, l := range HierarchyOrder {
		if string(l) == s {
			return true
		}
	}
	return false
}

// Dimension represents one reference row of the budget hierarchy,
// identified by its natural code within a level. Created once by the
// import pipeline and read-only thereafter.
type Dimension struct {
	Level      DimensionLevel `json:"level"`
	Code       string         `json:"code"`       // Natural key, unique within the level
	Name       string         `json:"name"`       // Display name from the spreadsheet
	ParentCode string         `json:"parentCode"` // Empty for top-level rows
}
