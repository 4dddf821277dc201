package dto

// ── availability DTOs ──

// CalendarQuery selects a month view.
type CalendarQuery struct {
	Year  int `form:"year"  binding:"required,min=2020,max=2100"`
	Month int `form:"month" binding:"required,min=1,max=12"`
}

// SlotsQuery selects one day's slots.
type SlotsQuery struct {
	Date string `form:"date" binding:"required"` // "2006-01-02"
}

// CalendarDayResponse is one day in the month view. State is advisory: a
// FULL day may still carry individually bookable slots the caller should
// inspect via the day view.
type CalendarDayResponse struct {
	Date  string `json:"date"`
	State string `json:"state"` // OPEN | LIMITED | FULL
	Slots int    `json:"slots"`
}

// SlotAvailabilityResponse is one slot in the day view. Remaining is only
// populated when the server is configured to expose exact counts.
type SlotAvailabilityResponse struct {
	SlotID          string `json:"slot_id"`
	StartTime       string `json:"start_time"`
	DurationMinutes int    `json:"duration_minutes"`
	Pool            string `json:"pool"`
	State           string `json:"state"` // OPEN | LIMITED | FULL
	Remaining       *int   `json:"remaining,omitempty"`
}

// TierResponse is one bookable experience tier.
type TierResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	BasePrice   string `json:"base_price"`
	MinSkill    string `json:"min_skill"`
}
