package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d999ss/haevn/config"
	"github.com/d999ss/haevn/internal/api/handler"
	"github.com/d999ss/haevn/internal/api/middleware"
	"github.com/d999ss/haevn/pkg/redis"
)

// Setup builds the Gin engine and route table.
func Setup(cfg *config.Config, h *handler.Handler, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(1 << 20))

	// ── health ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		availability := v1.Group("/availability")
		{
			availability.GET("/calendar", h.Availability.GetCalendar)
			availability.GET("/slots", h.Availability.GetSlots)
		}

		v1.GET("/tiers", h.Availability.ListTiers)

		reservations := v1.Group("/reservations")
		{
			// Creation is the only rate-limited route; it is the one that
			// mutates capacity during booking rushes.
			reservations.POST("",
				middleware.RateLimit(rdb, cfg.Booking.RateLimitPerMinute, time.Minute),
				h.Reservation.CreateReservation)
			reservations.GET("/:id", h.Reservation.GetReservation)
			reservations.GET("/:id/calendar.ics", h.Reservation.GetCalendarInvite)
			reservations.DELETE("/:id", h.Reservation.CancelReservation)
		}

		exports := v1.Group("/exports")
		{
			exports.GET("/daily-manifest", h.Export.GetDailyManifest)
		}
	}

	return r
}
