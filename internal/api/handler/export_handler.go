package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/d999ss/haevn/internal/service"
	"github.com/d999ss/haevn/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler serves operational exports.
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler creates an ExportHandler.
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// GetDailyManifest downloads the day's check-in manifest.
// GET /api/v1/exports/daily-manifest?date=2025-07-01
func (h *ExportHandler) GetDailyManifest(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		response.BadRequest(c, 10001, "date is required")
		return
	}

	buf, filename, err := h.exportSvc.DailyManifest(c.Request.Context(), date)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownDate):
			response.BadRequest(c, 20001, "unknown date")
		case errors.Is(err, service.ErrExportNoReservations):
			response.NotFound(c, 20007, "no reservations on that date")
		default:
			response.InternalError(c)
		}
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
