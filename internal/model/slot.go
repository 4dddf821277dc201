package model

import "time"

// AvailabilityState is the derived booking state of a slot or calendar day.
type AvailabilityState string

const (
	StateOpen    AvailabilityState = "OPEN"
	StateLimited AvailabilityState = "LIMITED"
	StateFull    AvailabilityState = "FULL"
)

// SessionSlot is a bookable surf-session interval — maps to session_slots.
//
// Capacity is fixed when the schedule is seeded; the live booked count is not
// a column here. It is derived from CONFIRMED reservations and tracked by
// the in-memory capacity tracker, which is re-seeded from the reservation
// table at startup.
type SessionSlot struct {
	SlotID          string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"slot_id"`
	SlotDate        time.Time `gorm:"type:date;not null;index"                       json:"slot_date"`
	StartTime       string    `gorm:"type:varchar(5);not null"                       json:"start_time"` // "15:04" wall time
	DurationMinutes int       `gorm:"type:smallint;not null;default:90"              json:"duration_minutes"`
	Pool            string    `gorm:"type:varchar(50);not null"                      json:"pool"`
	Capacity        int       `gorm:"type:smallint;not null"                         json:"capacity"`
	IsActive        bool      `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel
}

// TableName maps the model to its table.
func (SessionSlot) TableName() string { return "session_slots" }

// DateOnly is the canonical wire format for slot dates.
const DateOnly = "2006-01-02"

// DateKey returns the slot date in wire format.
func (s *SessionSlot) DateKey() string { return s.SlotDate.Format(DateOnly) }
