package service

import (
	"errors"
	"sort"

	"github.com/d999ss/haevn/internal/dto"
	"github.com/d999ss/haevn/internal/model"
)

// ErrUnknownTier — the requested experience tier does not exist.
var ErrUnknownTier = errors.New("unknown experience tier")

// TierCatalog is the immutable set of bookable experience tiers, loaded once
// at startup from the tier table. No runtime mutation path exists.
type TierCatalog struct {
	byName map[string]model.ExperienceTier
	sorted []model.ExperienceTier
}

// NewTierCatalog builds the catalog. Tiers are copied; later changes to the
// input slice do not leak in.
func NewTierCatalog(tiers []model.ExperienceTier) *TierCatalog {
	c := &TierCatalog{
		byName: make(map[string]model.ExperienceTier, len(tiers)),
		sorted: make([]model.ExperienceTier, len(tiers)),
	}
	copy(c.sorted, tiers)
	sort.SliceStable(c.sorted, func(i, j int) bool {
		return c.sorted[i].SortOrder < c.sorted[j].SortOrder
	})
	for _, t := range c.sorted {
		c.byName[t.Name] = t
	}
	return c
}

// Lookup resolves a tier by name.
func (c *TierCatalog) Lookup(name string) (model.ExperienceTier, error) {
	t, ok := c.byName[name]
	if !ok {
		return model.ExperienceTier{}, ErrUnknownTier
	}
	return t, nil
}

// List returns all tiers in display order.
func (c *TierCatalog) List() []dto.TierResponse {
	out := make([]dto.TierResponse, 0, len(c.sorted))
	for _, t := range c.sorted {
		out = append(out, dto.TierResponse{
			Name:        t.Name,
			Description: t.Description,
			BasePrice:   t.BasePrice.StringFixed(2),
			MinSkill:    t.MinSkill,
		})
	}
	return out
}

// Len reports the number of tiers.
func (c *TierCatalog) Len() int { return len(c.sorted) }
