package service

import (
	"go.uber.org/zap"

	"github.com/d999ss/haevn/config"
	"github.com/d999ss/haevn/internal/capacity"
	"github.com/d999ss/haevn/internal/pricing"
	"github.com/d999ss/haevn/internal/repository"
	"github.com/d999ss/haevn/pkg/redis"
)

// Service aggregates all business services.
type Service struct {
	Availability AvailabilityService
	Booking      BookingService
	Export       ExportService
	Tiers        *TierCatalog
}

// NewService wires the service layer. The tracker and catalog are built by
// the caller at startup (they need repository reads before serving traffic).
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	catalog *TierCatalog,
	tracker *capacity.Tracker,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	pricer := pricing.NewComposer(cfg.Booking.EquipmentFeeDecimal(), cfg.Booking.TaxRateDecimal())

	return &Service{
		Availability: NewAvailabilityService(cfg, repo, tracker, logger),
		Booking:      NewBookingService(cfg, repo, catalog, tracker, pricer, rdb, logger),
		Export:       NewExportService(repo, logger),
		Tiers:        catalog,
	}
}
