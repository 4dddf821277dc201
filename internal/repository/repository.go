package repository

import "gorm.io/gorm"

// Repository aggregates all data-access interfaces.
type Repository struct {
	Slot        SlotRepository
	Tier        TierRepository
	Reservation ReservationRepository
}

// NewRepository wires the GORM-backed implementations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Slot:        NewSlotRepo(db),
		Tier:        NewTierRepo(db),
		Reservation: NewReservationRepo(db),
	}
}
