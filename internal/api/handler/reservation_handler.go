package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/d999ss/haevn/internal/dto"
	"github.com/d999ss/haevn/internal/service"
	"github.com/d999ss/haevn/pkg/response"
)

// ReservationHandler serves reservation create/read/cancel plus the
// calendar-invite download.
type ReservationHandler struct {
	bookingSvc service.BookingService
}

// NewReservationHandler creates a ReservationHandler.
func NewReservationHandler(bookingSvc service.BookingService) *ReservationHandler {
	return &ReservationHandler{bookingSvc: bookingSvc}
}

// CreateReservation books a spot.
// POST /api/v1/reservations
func (h *ReservationHandler) CreateReservation(c *gin.Context) {
	var req dto.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	res, err := h.bookingSvc.Confirm(c.Request.Context(), &req)
	if err != nil {
		h.handleReservationError(c, err)
		return
	}

	response.Created(c, res)
}

// GetReservation returns the confirmation-screen view.
// GET /api/v1/reservations/:id
func (h *ReservationHandler) GetReservation(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "reservation id is required")
		return
	}

	res, err := h.bookingSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleReservationError(c, err)
		return
	}

	response.OK(c, res)
}

// CancelReservation cancels a reservation. Idempotent: repeating the call
// keeps returning success.
// DELETE /api/v1/reservations/:id
func (h *ReservationHandler) CancelReservation(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "reservation id is required")
		return
	}

	if err := h.bookingSvc.Cancel(c.Request.Context(), id); err != nil {
		h.handleReservationError(c, err)
		return
	}

	response.OK(c, nil)
}

// GetCalendarInvite downloads the session as an .ics file.
// GET /api/v1/reservations/:id/calendar.ics
func (h *ReservationHandler) GetCalendarInvite(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "reservation id is required")
		return
	}

	body, filename, err := h.bookingSvc.CalendarInvite(c.Request.Context(), id)
	if err != nil {
		h.handleReservationError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/calendar", body)
}

// handleReservationError maps booking errors onto the response envelope.
func (h *ReservationHandler) handleReservationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownDate):
		response.BadRequest(c, 20001, "unknown date")
	case errors.Is(err, service.ErrSlotNotFound):
		response.NotFound(c, 20002, "session slot not found")
	case errors.Is(err, service.ErrUnknownTier):
		response.BadRequest(c, 20003, "unknown experience tier")
	case errors.Is(err, service.ErrSlotFull):
		// Retryable: the client should refresh availability and re-select.
		response.Conflict(c, 20004, "session slot is fully booked")
	case errors.Is(err, service.ErrReservationNotFound):
		response.NotFound(c, 20005, "reservation not found")
	case errors.Is(err, service.ErrPersistenceFailed):
		response.ServiceUnavailable(c, 20006, "reservation could not be saved, please retry")
	default:
		response.InternalError(c)
	}
}
