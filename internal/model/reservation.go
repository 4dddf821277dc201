package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reservation statuses. PENDING exists in the state machine but is never
// persisted: a reservation that fails before commit is discarded, so every
// stored row is CONFIRMED or CANCELLED.
const (
	ReservationPending   = "PENDING"
	ReservationConfirmed = "CONFIRMED"
	ReservationCancelled = "CANCELLED"
)

// Reservation is a confirmed booking for one session slot — maps to
// reservations. Rows are never deleted; cancellation is a status change.
//
// ReservationID doubles as the guest-facing confirmation number,
// "HAEVN-<YYYYMMDD><seq>" with a per-day strictly increasing sequence.
type Reservation struct {
	ReservationID   string          `gorm:"type:varchar(30);primaryKey"       json:"reservation_id"`
	SlotID          string          `gorm:"type:uuid;not null;index"          json:"slot_id"`
	SlotDate        time.Time       `gorm:"type:date;not null;index"          json:"slot_date"` // denormalized from the slot for manifests and sequence seeding
	TierName        string          `gorm:"type:varchar(50);not null"         json:"tier_name"`
	EquipmentRental bool            `gorm:"not null;default:false"            json:"equipment_rental"`
	Status          string          `gorm:"type:varchar(20);not null"         json:"status"` // CONFIRMED | CANCELLED
	BasePrice       decimal.Decimal `gorm:"type:numeric(10,2);not null"       json:"base_price"`
	EquipmentFee    decimal.Decimal `gorm:"type:numeric(10,2);not null"       json:"equipment_fee"`
	Tax             decimal.Decimal `gorm:"type:numeric(10,2);not null"       json:"tax"`
	Total           decimal.Decimal `gorm:"type:numeric(10,2);not null"       json:"total"`
	BaseModel

	Slot *SessionSlot `gorm:"foreignKey:SlotID;references:SlotID" json:"slot,omitempty"`
}

// TableName maps the model to its table.
func (Reservation) TableName() string { return "reservations" }
