package model

import "github.com/shopspring/decimal"

// ExperienceTier is a named skill level with its base session price — maps
// to experience_tiers. Rows are seeded by migration and never mutated at
// runtime; the service layer exposes them through an immutable catalog.
type ExperienceTier struct {
	Name        string          `gorm:"type:varchar(50);primaryKey"   json:"name"`
	Description string          `gorm:"type:varchar(200);not null"    json:"description"`
	BasePrice   decimal.Decimal `gorm:"type:numeric(10,2);not null"   json:"base_price"`
	MinSkill    string          `gorm:"type:varchar(50);not null"     json:"min_skill"` // informational; eligibility checks live outside this core
	SortOrder   int             `gorm:"type:smallint;not null"        json:"sort_order"`
}

// TableName maps the model to its table.
func (ExperienceTier) TableName() string { return "experience_tiers" }
