package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d999ss/haevn/internal/model"
)

// TierRepository reads the experience-tier table. Tiers are migration-seeded
// and immutable at runtime; the service layer loads them once at startup.
type TierRepository interface {
	List(ctx context.Context) ([]model.ExperienceTier, error)
}

type tierRepo struct {
	db *gorm.DB
}

// NewTierRepo creates a TierRepository instance.
func NewTierRepo(db *gorm.DB) TierRepository {
	return &tierRepo{db: db}
}

func (r *tierRepo) List(ctx context.Context) ([]model.ExperienceTier, error) {
	var tiers []model.ExperienceTier
	err := r.db.WithContext(ctx).
		Order("sort_order ASC").
		Find(&tiers).Error
	return tiers, err
}
