package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/d999ss/haevn/internal/model"
)

// SlotRepository reads the session-slot schedule. Slots are seeded when the
// park publishes a schedule; this core never mutates them.
type SlotRepository interface {
	GetByID(ctx context.Context, id string) (*model.SessionSlot, error)
	ListByDate(ctx context.Context, date time.Time) ([]model.SessionSlot, error)
	ListByMonth(ctx context.Context, year int, month time.Month) ([]model.SessionSlot, error)
	ListActive(ctx context.Context) ([]model.SessionSlot, error)
}

type slotRepo struct {
	db *gorm.DB
}

// NewSlotRepo creates a SlotRepository instance.
func NewSlotRepo(db *gorm.DB) SlotRepository {
	return &slotRepo{db: db}
}

func (r *slotRepo) GetByID(ctx context.Context, id string) (*model.SessionSlot, error) {
	var slot model.SessionSlot
	err := r.db.WithContext(ctx).
		Where("slot_id = ? AND is_active = ?", id, true).
		First(&slot).Error
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *slotRepo) ListByDate(ctx context.Context, date time.Time) ([]model.SessionSlot, error) {
	var slots []model.SessionSlot
	err := r.db.WithContext(ctx).
		Where("slot_date = ? AND is_active = ?", date.Format(model.DateOnly), true).
		Order("start_time ASC").
		Find(&slots).Error
	return slots, err
}

func (r *slotRepo) ListByMonth(ctx context.Context, year int, month time.Month) ([]model.SessionSlot, error) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	next := first.AddDate(0, 1, 0)

	var slots []model.SessionSlot
	err := r.db.WithContext(ctx).
		Where("slot_date >= ? AND slot_date < ? AND is_active = ?",
			first.Format(model.DateOnly), next.Format(model.DateOnly), true).
		Order("slot_date ASC, start_time ASC").
		Find(&slots).Error
	return slots, err
}

func (r *slotRepo) ListActive(ctx context.Context) ([]model.SessionSlot, error) {
	var slots []model.SessionSlot
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("slot_date ASC, start_time ASC").
		Find(&slots).Error
	return slots, err
}
