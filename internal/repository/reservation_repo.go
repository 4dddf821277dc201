package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/d999ss/haevn/internal/model"
)

// SlotBookedCount pairs a slot id with its count of CONFIRMED reservations.
// Used to re-seed the capacity tracker at startup.
type SlotBookedCount struct {
	SlotID string
	Booked int
}

// ReservationRepository owns reservation rows. Rows are never deleted;
// cancellation is a conditional status flip so that the capacity release
// happens exactly once no matter how many cancel calls race.
type ReservationRepository interface {
	Create(ctx context.Context, res *model.Reservation) error
	GetByID(ctx context.Context, id string) (*model.Reservation, error)
	ListByDate(ctx context.Context, date time.Time) ([]model.Reservation, error)
	// MarkCancelled flips CONFIRMED → CANCELLED and reports whether this call
	// performed the transition (false when the row was already cancelled).
	MarkCancelled(ctx context.Context, id string) (bool, error)
	// CountByDate counts every reservation ever created for the date,
	// regardless of status. Seeds the confirmation-sequence fallback.
	CountByDate(ctx context.Context, date time.Time) (int64, error)
	// ConfirmedCounts groups CONFIRMED reservations per slot.
	ConfirmedCounts(ctx context.Context) ([]SlotBookedCount, error)
}

type reservationRepo struct {
	db *gorm.DB
}

// NewReservationRepo creates a ReservationRepository instance.
func NewReservationRepo(db *gorm.DB) ReservationRepository {
	return &reservationRepo{db: db}
}

func (r *reservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	return r.db.WithContext(ctx).Create(res).Error
}

func (r *reservationRepo) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	var res model.Reservation
	err := r.db.WithContext(ctx).
		Preload("Slot").
		Where("reservation_id = ?", id).
		First(&res).Error
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *reservationRepo) ListByDate(ctx context.Context, date time.Time) ([]model.Reservation, error) {
	var list []model.Reservation
	err := r.db.WithContext(ctx).
		Preload("Slot").
		Where("slot_date = ?", date.Format(model.DateOnly)).
		Order("reservation_id ASC").
		Find(&list).Error
	return list, err
}

func (r *reservationRepo) MarkCancelled(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Reservation{}).
		Where("reservation_id = ? AND status = ?", id, model.ReservationConfirmed).
		Updates(map[string]interface{}{
			"status":     model.ReservationCancelled,
			"updated_at": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *reservationRepo) CountByDate(ctx context.Context, date time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Reservation{}).
		Where("slot_date = ?", date.Format(model.DateOnly)).
		Count(&n).Error
	return n, err
}

func (r *reservationRepo) ConfirmedCounts(ctx context.Context) ([]SlotBookedCount, error) {
	var counts []SlotBookedCount
	err := r.db.WithContext(ctx).
		Model(&model.Reservation{}).
		Select("slot_id, COUNT(*) AS booked").
		Where("status = ?", model.ReservationConfirmed).
		Group("slot_id").
		Scan(&counts).Error
	return counts, err
}
