package handler

import "github.com/d999ss/haevn/internal/service"

// Handler aggregates all HTTP handlers.
type Handler struct {
	Availability *AvailabilityHandler
	Reservation  *ReservationHandler
	Export       *ExportHandler
}

// NewHandler wires the handler layer.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Availability: NewAvailabilityHandler(svc.Availability, svc.Tiers),
		Reservation:  NewReservationHandler(svc.Booking),
		Export:       NewExportHandler(svc.Export),
	}
}
