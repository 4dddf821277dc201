package dto

// ── reservation DTOs ──

// CreateReservationRequest books one spot in a session slot. The caller's
// current selection travels in the request; the core keeps no session state.
type CreateReservationRequest struct {
	Date            string `json:"date"             binding:"required"` // "2006-01-02"
	SlotID          string `json:"slot_id"          binding:"required,uuid"`
	Tier            string `json:"tier"             binding:"required"`
	EquipmentRental bool   `json:"equipment_rental"`
}

// PriceBreakdownResponse itemizes a quote. Values are fixed-point decimal
// strings with two digits.
type PriceBreakdownResponse struct {
	Base      string `json:"base"`
	Equipment string `json:"equipment"`
	Tax       string `json:"tax"`
	Total     string `json:"total"`
}

// ReservationResponse is the confirmed booking as shown on the confirmation
// screen. QRPayload is the string the QR renderer encodes.
type ReservationResponse struct {
	ReservationID   string                 `json:"reservation_id"`
	Date            string                 `json:"date"`
	StartTime       string                 `json:"start_time"`
	DurationMinutes int                    `json:"duration_minutes"`
	Location        string                 `json:"location"`
	Tier            string                 `json:"tier"`
	EquipmentRental bool                   `json:"equipment_rental"`
	Status          string                 `json:"status"`
	Price           PriceBreakdownResponse `json:"price"`
	QRPayload       string                 `json:"qr_payload"`
	CreatedAt       string                 `json:"created_at"`
}
