package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/d999ss/haevn/internal/dto"
	"github.com/d999ss/haevn/internal/service"
	"github.com/d999ss/haevn/pkg/response"
)

// AvailabilityHandler serves the booking screen's calendar, slot, and tier
// reads.
type AvailabilityHandler struct {
	availabilitySvc service.AvailabilityService
	tiers           *service.TierCatalog
}

// NewAvailabilityHandler creates an AvailabilityHandler.
func NewAvailabilityHandler(availabilitySvc service.AvailabilityService, tiers *service.TierCatalog) *AvailabilityHandler {
	return &AvailabilityHandler{availabilitySvc: availabilitySvc, tiers: tiers}
}

// GetCalendar returns the month view.
// GET /api/v1/availability/calendar?year=2025&month=7
func (h *AvailabilityHandler) GetCalendar(c *gin.Context) {
	var req dto.CalendarQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "invalid query parameters")
		return
	}

	days, err := h.availabilitySvc.DaysInMonth(c.Request.Context(), req.Year, req.Month)
	if err != nil {
		h.handleAvailabilityError(c, err)
		return
	}

	response.OK(c, gin.H{"days": days})
}

// GetSlots returns one day's slots with availability states.
// GET /api/v1/availability/slots?date=2025-07-01
func (h *AvailabilityHandler) GetSlots(c *gin.Context) {
	var req dto.SlotsQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "invalid query parameters")
		return
	}

	slots, err := h.availabilitySvc.SlotsForDay(c.Request.Context(), req.Date)
	if err != nil {
		h.handleAvailabilityError(c, err)
		return
	}

	response.OK(c, gin.H{"slots": slots})
}

// ListTiers returns the bookable experience tiers.
// GET /api/v1/tiers
func (h *AvailabilityHandler) ListTiers(c *gin.Context) {
	response.OK(c, gin.H{"tiers": h.tiers.List()})
}

func (h *AvailabilityHandler) handleAvailabilityError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownDate):
		response.BadRequest(c, 20001, "unknown date")
	default:
		response.InternalError(c)
	}
}
