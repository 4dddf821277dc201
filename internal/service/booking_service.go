package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d999ss/haevn/config"
	"github.com/d999ss/haevn/internal/capacity"
	"github.com/d999ss/haevn/internal/dto"
	"github.com/d999ss/haevn/internal/model"
	"github.com/d999ss/haevn/internal/pricing"
	"github.com/d999ss/haevn/internal/repository"
	"github.com/d999ss/haevn/pkg/redis"
)

// ── booking business errors ──

var (
	// ErrSlotNotFound — no active slot with that id on that date.
	ErrSlotNotFound = errors.New("session slot not found")
	// ErrSlotFull — the capacity race was lost. Retryable: callers should
	// re-fetch availability and pick again, never silently retry the same slot.
	ErrSlotFull = errors.New("session slot is fully booked")
	// ErrReservationNotFound — the cancel target does not exist. Terminal.
	ErrReservationNotFound = errors.New("reservation not found")
	// ErrPersistenceFailed — the reservation row could not be written; the
	// reserved capacity was released again. Retryable.
	ErrPersistenceFailed = errors.New("reservation could not be persisted")
	// ErrReconciliationFailure — compensation after a persistence failure
	// itself failed. Fatal: capacity bookkeeping needs manual repair.
	ErrReconciliationFailure = errors.New("capacity reconciliation failed")
)

// qrPayloadPrefix is what the QR renderer encodes ahead of the id.
const qrPayloadPrefix = "HAEVN-BOOKING:"

// confirmationPrefix heads every confirmation number.
const confirmationPrefix = "HAEVN-"

// BookingService is the reservation ledger: it orchestrates slot and tier
// validation, capacity reservation, pricing, and persistence into atomic
// confirm/cancel operations.
type BookingService interface {
	Confirm(ctx context.Context, req *dto.CreateReservationRequest) (*dto.ReservationResponse, error)
	Cancel(ctx context.Context, reservationID string) error
	GetByID(ctx context.Context, reservationID string) (*dto.ReservationResponse, error)
	CalendarInvite(ctx context.Context, reservationID string) ([]byte, string, error)
}

type bookingService struct {
	repo     *repository.Repository
	catalog  *TierCatalog
	tracker  *capacity.Tracker
	pricer   *pricing.Composer
	rdb      *redis.Client
	location string
	logger   *zap.Logger

	// Fallback per-day sequence when redis is unavailable, lazily seeded
	// from the reservation count so restarts do not reuse ids.
	seqMu  sync.Mutex
	seqDay map[string]int64
}

// NewBookingService creates a BookingService instance. rdb may be nil; the
// confirmation sequence then degrades to an in-process counter.
func NewBookingService(
	cfg *config.Config,
	repo *repository.Repository,
	catalog *TierCatalog,
	tracker *capacity.Tracker,
	pricer *pricing.Composer,
	rdb *redis.Client,
	logger *zap.Logger,
) BookingService {
	return &bookingService{
		repo:     repo,
		catalog:  catalog,
		tracker:  tracker,
		pricer:   pricer,
		rdb:      rdb,
		location: cfg.Booking.Location,
		logger:   logger,
		seqDay:   make(map[string]int64),
	}
}

// ────────────────────── Confirm ──────────────────────

// Confirm books one spot. Sequence: validate slot and tier, reserve capacity
// (the single serialization point), compose the price, persist CONFIRMED.
// Capacity is compensated if anything after the reserve fails; a failed
// compensation is surfaced loudly, never dropped.
func (s *bookingService) Confirm(ctx context.Context, req *dto.CreateReservationRequest) (*dto.ReservationResponse, error) {
	date, err := time.Parse(model.DateOnly, req.Date)
	if err != nil {
		return nil, ErrUnknownDate
	}

	slot, err := s.repo.Slot.GetByID(ctx, req.SlotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotNotFound
		}
		s.logger.Error("slot lookup failed", zap.String("slot_id", req.SlotID), zap.Error(err))
		return nil, err
	}
	if slot.DateKey() != date.Format(model.DateOnly) {
		// The caller's selection went stale across a schedule change.
		return nil, ErrSlotNotFound
	}

	tier, err := s.catalog.Lookup(req.Tier)
	if err != nil {
		return nil, err
	}

	if err := s.tracker.Reserve(slot.SlotID); err != nil {
		switch {
		case errors.Is(err, capacity.ErrCapacityExceeded):
			return nil, ErrSlotFull
		case errors.Is(err, capacity.ErrSlotNotFound):
			return nil, ErrSlotNotFound
		default:
			return nil, err
		}
	}

	// Capacity is secured. Everything below must release it on failure.
	breakdown := s.pricer.Compose(tier.BasePrice, req.EquipmentRental)

	id, err := s.nextConfirmationID(ctx, date)
	if err != nil {
		return nil, s.compensate(slot.SlotID, id, err)
	}

	res := &model.Reservation{
		ReservationID:   id,
		SlotID:          slot.SlotID,
		SlotDate:        slot.SlotDate,
		TierName:        tier.Name,
		EquipmentRental: req.EquipmentRental,
		Status:          model.ReservationConfirmed,
		BasePrice:       breakdown.Base,
		EquipmentFee:    breakdown.Equipment,
		Tax:             breakdown.Tax,
		Total:           breakdown.Total,
	}

	if err := s.repo.Reservation.Create(ctx, res); err != nil {
		return nil, s.compensate(slot.SlotID, id, err)
	}

	s.logger.Info("reservation confirmed",
		zap.String("reservation_id", id),
		zap.String("slot_id", slot.SlotID),
		zap.String("tier", tier.Name),
		zap.String("total", breakdown.Total.StringFixed(2)),
	)

	return s.toReservationResponse(res, slot), nil
}

// compensate releases the capacity unit reserved for a confirm that could
// not be committed, and maps the failure for the caller.
func (s *bookingService) compensate(slotID, reservationID string, cause error) error {
	s.logger.Error("reservation commit failed, releasing capacity",
		zap.String("slot_id", slotID),
		zap.String("reservation_id", reservationID),
		zap.Error(cause),
	)

	if relErr := s.tracker.Release(slotID); relErr != nil {
		// Capacity is now inconsistent with the ledger. Escalate; a unit must
		// never be lost silently.
		s.logger.Error("capacity compensation failed",
			zap.String("slot_id", slotID),
			zap.NamedError("release_error", relErr),
			zap.NamedError("cause", cause),
		)
		return fmt.Errorf("%w: release after failed commit: %v", ErrReconciliationFailure, relErr)
	}

	return fmt.Errorf("%w: %v", ErrPersistenceFailed, cause)
}

// ────────────────────── Cancel ──────────────────────

// Cancel is idempotent. The conditional CONFIRMED→CANCELLED flip decides
// which caller performs the single capacity release; every later cancel of
// the same reservation is a no-op success.
func (s *bookingService) Cancel(ctx context.Context, reservationID string) error {
	res, err := s.repo.Reservation.GetByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReservationNotFound
		}
		s.logger.Error("reservation lookup failed", zap.String("reservation_id", reservationID), zap.Error(err))
		return err
	}

	if res.Status == model.ReservationCancelled {
		return nil
	}

	changed, err := s.repo.Reservation.MarkCancelled(ctx, reservationID)
	if err != nil {
		s.logger.Error("cancel update failed", zap.String("reservation_id", reservationID), zap.Error(err))
		return err
	}
	if !changed {
		// Lost the race to another cancel; capacity was already released.
		return nil
	}

	if err := s.tracker.Release(res.SlotID); err != nil {
		s.logger.Error("capacity release on cancel failed",
			zap.String("reservation_id", reservationID),
			zap.String("slot_id", res.SlotID),
			zap.Error(err),
		)
		return fmt.Errorf("%w: release on cancel: %v", ErrReconciliationFailure, err)
	}

	s.logger.Info("reservation cancelled",
		zap.String("reservation_id", reservationID),
		zap.String("slot_id", res.SlotID),
	)

	return nil
}

// ────────────────────── GetByID ──────────────────────

func (s *bookingService) GetByID(ctx context.Context, reservationID string) (*dto.ReservationResponse, error) {
	res, err := s.repo.Reservation.GetByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		s.logger.Error("reservation lookup failed", zap.String("reservation_id", reservationID), zap.Error(err))
		return nil, err
	}

	return s.toReservationResponse(res, res.Slot), nil
}

// ── confirmation numbers ──

// nextConfirmationID builds "HAEVN-<YYYYMMDD><seq>", sequence strictly
// increasing per day. Redis INCR coordinates across instances; without redis
// an in-process counter seeded from the day's reservation count takes over
// (rows are never deleted, so count+1 can never collide).
func (s *bookingService) nextConfirmationID(ctx context.Context, date time.Time) (string, error) {
	dayKey := date.Format("20060102")

	var seq int64
	if s.rdb != nil {
		n, err := s.rdb.NextSequence(ctx, dayKey)
		if err != nil {
			return "", fmt.Errorf("confirmation sequence: %w", err)
		}
		seq = n
	} else {
		n, err := s.fallbackSequence(ctx, date, dayKey)
		if err != nil {
			return "", fmt.Errorf("confirmation sequence: %w", err)
		}
		seq = n
	}

	return fmt.Sprintf("%s%s%02d", confirmationPrefix, dayKey, seq), nil
}

func (s *bookingService) fallbackSequence(ctx context.Context, date time.Time, dayKey string) (int64, error) {
	s.seqMu.Lock()
	defer s.seqMu.Unlock()

	if _, ok := s.seqDay[dayKey]; !ok {
		count, err := s.repo.Reservation.CountByDate(ctx, date)
		if err != nil {
			return 0, err
		}
		s.seqDay[dayKey] = count
	}

	s.seqDay[dayKey]++
	return s.seqDay[dayKey], nil
}

// ── response mapping ──

func (s *bookingService) toReservationResponse(res *model.Reservation, slot *model.SessionSlot) *dto.ReservationResponse {
	resp := &dto.ReservationResponse{
		ReservationID:   res.ReservationID,
		Date:            res.SlotDate.Format(model.DateOnly),
		Tier:            res.TierName,
		EquipmentRental: res.EquipmentRental,
		Status:          res.Status,
		Location:        s.location,
		Price: dto.PriceBreakdownResponse{
			Base:      res.BasePrice.StringFixed(2),
			Equipment: res.EquipmentFee.StringFixed(2),
			Tax:       res.Tax.StringFixed(2),
			Total:     res.Total.StringFixed(2),
		},
		QRPayload: qrPayloadPrefix + res.ReservationID,
		CreatedAt: res.CreatedAt.UTC().Format(time.RFC3339),
	}

	if slot != nil {
		resp.StartTime = slot.StartTime
		resp.DurationMinutes = slot.DurationMinutes
	}

	return resp
}
