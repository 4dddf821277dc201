package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/d999ss/haevn/internal/model"
	"github.com/d999ss/haevn/internal/repository"
)

// ── Mock SlotRepository ──

type mockSlotRepo struct {
	slots map[string]*model.SessionSlot
}

func newMockSlotRepo() *mockSlotRepo {
	return &mockSlotRepo{slots: make(map[string]*model.SessionSlot)}
}

func (m *mockSlotRepo) GetByID(_ context.Context, id string) (*model.SessionSlot, error) {
	if s, ok := m.slots[id]; ok && s.IsActive {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSlotRepo) ListByDate(_ context.Context, date time.Time) ([]model.SessionSlot, error) {
	key := date.Format(model.DateOnly)
	var result []model.SessionSlot
	for _, s := range m.slots {
		if s.IsActive && s.DateKey() == key {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime < result[j].StartTime })
	return result, nil
}

func (m *mockSlotRepo) ListByMonth(_ context.Context, year int, month time.Month) ([]model.SessionSlot, error) {
	var result []model.SessionSlot
	for _, s := range m.slots {
		if s.IsActive && s.SlotDate.Year() == year && s.SlotDate.Month() == month {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].SlotDate.Equal(result[j].SlotDate) {
			return result[i].SlotDate.Before(result[j].SlotDate)
		}
		return result[i].StartTime < result[j].StartTime
	})
	return result, nil
}

func (m *mockSlotRepo) ListActive(_ context.Context) ([]model.SessionSlot, error) {
	var result []model.SessionSlot
	for _, s := range m.slots {
		if s.IsActive {
			result = append(result, *s)
		}
	}
	return result, nil
}

// ── Mock TierRepository ──

type mockTierRepo struct {
	tiers []model.ExperienceTier
}

func (m *mockTierRepo) List(_ context.Context) ([]model.ExperienceTier, error) {
	return m.tiers, nil
}

// ── Mock ReservationRepository ──

type mockReservationRepo struct {
	mu           sync.Mutex
	reservations map[string]*model.Reservation
	createErr    error // injected failure for the next Create calls
}

func newMockReservationRepo() *mockReservationRepo {
	return &mockReservationRepo{reservations: make(map[string]*model.Reservation)}
}

func (m *mockReservationRepo) Create(_ context.Context, res *model.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	stored := *res
	stored.CreatedAt = time.Now()
	m.reservations[res.ReservationID] = &stored
	return nil
}

func (m *mockReservationRepo) GetByID(_ context.Context, id string) (*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.reservations[id]; ok {
		out := *r
		return &out, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockReservationRepo) ListByDate(_ context.Context, date time.Time) ([]model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := date.Format(model.DateOnly)
	var result []model.Reservation
	for _, r := range m.reservations {
		if r.SlotDate.Format(model.DateOnly) == key {
			result = append(result, *r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ReservationID < result[j].ReservationID })
	return result, nil
}

func (m *mockReservationRepo) MarkCancelled(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reservations[id]
	if !ok || r.Status != model.ReservationConfirmed {
		return false, nil
	}
	r.Status = model.ReservationCancelled
	return true, nil
}

func (m *mockReservationRepo) CountByDate(_ context.Context, date time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := date.Format(model.DateOnly)
	var n int64
	for _, r := range m.reservations {
		if r.SlotDate.Format(model.DateOnly) == key {
			n++
		}
	}
	return n, nil
}

func (m *mockReservationRepo) ConfirmedCounts(_ context.Context) ([]repository.SlotBookedCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[string]int)
	for _, r := range m.reservations {
		if r.Status == model.ReservationConfirmed {
			counts[r.SlotID]++
		}
	}
	var result []repository.SlotBookedCount
	for slotID, booked := range counts {
		result = append(result, repository.SlotBookedCount{SlotID: slotID, Booked: booked})
	}
	return result, nil
}
