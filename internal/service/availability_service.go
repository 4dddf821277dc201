package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/d999ss/haevn/config"
	"github.com/d999ss/haevn/internal/capacity"
	"github.com/d999ss/haevn/internal/dto"
	"github.com/d999ss/haevn/internal/model"
	"github.com/d999ss/haevn/internal/repository"
)

// ErrUnknownDate — the date string is not a valid calendar date.
var ErrUnknownDate = errors.New("unknown date")

// AvailabilityService derives calendar and slot availability states.
//
// Everything here is a pure read computed fresh from the capacity tracker on
// every call. Results are best-effort snapshots: a reservation racing the
// read can invalidate them, and the ledger's reserve step is what settles
// the race.
type AvailabilityService interface {
	DaysInMonth(ctx context.Context, year int, month int) ([]dto.CalendarDayResponse, error)
	SlotsForDay(ctx context.Context, date string) ([]dto.SlotAvailabilityResponse, error)
}

type availabilityService struct {
	repo            *repository.Repository
	tracker         *capacity.Tracker
	threshold       float64
	exposeRemaining bool
	logger          *zap.Logger
}

// NewAvailabilityService creates an AvailabilityService instance.
func NewAvailabilityService(cfg *config.Config, repo *repository.Repository, tracker *capacity.Tracker, logger *zap.Logger) AvailabilityService {
	return &availabilityService{
		repo:            repo,
		tracker:         tracker,
		threshold:       cfg.Booking.LimitedThreshold,
		exposeRemaining: cfg.Booking.ExposeRemaining,
		logger:          logger,
	}
}

// ────────────────────── DaysInMonth ──────────────────────

func (s *availabilityService) DaysInMonth(ctx context.Context, year int, month int) ([]dto.CalendarDayResponse, error) {
	if month < 1 || month > 12 || year < 1 {
		return nil, ErrUnknownDate
	}

	slots, err := s.repo.Slot.ListByMonth(ctx, year, time.Month(month))
	if err != nil {
		s.logger.Error("listing month slots failed",
			zap.Int("year", year), zap.Int("month", month), zap.Error(err))
		return nil, err
	}

	byDay := make(map[string][]model.SessionSlot)
	for _, slot := range slots {
		key := slot.DateKey()
		byDay[key] = append(byDay[key], slot)
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()

	days := make([]dto.CalendarDayResponse, 0, daysInMonth)
	for d := 1; d <= daysInMonth; d++ {
		key := time.Date(year, time.Month(month), d, 0, 0, 0, 0, time.UTC).Format(model.DateOnly)
		daySlots := byDay[key]
		days = append(days, dto.CalendarDayResponse{
			Date:  key,
			State: string(s.dayState(daySlots)),
			Slots: len(daySlots),
		})
	}

	return days, nil
}

// dayState is the worst state among the day's slots. Advisory only: a FULL
// day can still hold open slots on a later refresh. A day with no scheduled
// slots has nothing to book and reports FULL.
func (s *availabilityService) dayState(slots []model.SessionSlot) model.AvailabilityState {
	if len(slots) == 0 {
		return model.StateFull
	}

	worst := model.StateOpen
	for i := range slots {
		switch s.slotState(&slots[i]) {
		case model.StateFull:
			return model.StateFull
		case model.StateLimited:
			worst = model.StateLimited
		}
	}
	return worst
}

// ────────────────────── SlotsForDay ──────────────────────

func (s *availabilityService) SlotsForDay(ctx context.Context, date string) ([]dto.SlotAvailabilityResponse, error) {
	day, err := time.Parse(model.DateOnly, date)
	if err != nil {
		return nil, ErrUnknownDate
	}

	slots, err := s.repo.Slot.ListByDate(ctx, day)
	if err != nil {
		s.logger.Error("listing day slots failed", zap.String("date", date), zap.Error(err))
		return nil, err
	}

	out := make([]dto.SlotAvailabilityResponse, 0, len(slots))
	for i := range slots {
		slot := &slots[i]
		resp := dto.SlotAvailabilityResponse{
			SlotID:          slot.SlotID,
			StartTime:       slot.StartTime,
			DurationMinutes: slot.DurationMinutes,
			Pool:            slot.Pool,
			State:           string(s.slotState(slot)),
		}
		if s.exposeRemaining {
			if u, err := s.tracker.Usage(slot.SlotID); err == nil {
				remaining := u.Remaining()
				resp.Remaining = &remaining
			}
		}
		out = append(out, resp)
	}

	return out, nil
}

// slotState derives the state from live counters:
// FULL when booked == capacity, LIMITED from the configured occupancy
// threshold up to full, OPEN otherwise. A slot the tracker does not know
// (schedule drift) is reported FULL rather than overselling it.
func (s *availabilityService) slotState(slot *model.SessionSlot) model.AvailabilityState {
	u, err := s.tracker.Usage(slot.SlotID)
	if err != nil {
		s.logger.Warn("slot missing from capacity tracker", zap.String("slot_id", slot.SlotID))
		return model.StateFull
	}

	switch {
	case u.Capacity == 0 || u.Booked >= u.Capacity:
		return model.StateFull
	case float64(u.Booked)/float64(u.Capacity) >= s.threshold:
		return model.StateLimited
	default:
		return model.StateOpen
	}
}
