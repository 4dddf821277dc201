package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/d999ss/haevn/config"
	"github.com/d999ss/haevn/internal/api/handler"
	"github.com/d999ss/haevn/internal/api/router"
	"github.com/d999ss/haevn/internal/dto"
	"github.com/d999ss/haevn/internal/model"
	"github.com/d999ss/haevn/internal/service"
)

const testSlotID = "7b8a9c3e-5f10-4d2b-9e6a-1c4d8f0b2a37"

// ── mock services ──

type mockAvailabilityService struct {
	daysFn  func(ctx context.Context, year, month int) ([]dto.CalendarDayResponse, error)
	slotsFn func(ctx context.Context, date string) ([]dto.SlotAvailabilityResponse, error)
}

func (m *mockAvailabilityService) DaysInMonth(ctx context.Context, year, month int) ([]dto.CalendarDayResponse, error) {
	return m.daysFn(ctx, year, month)
}

func (m *mockAvailabilityService) SlotsForDay(ctx context.Context, date string) ([]dto.SlotAvailabilityResponse, error) {
	return m.slotsFn(ctx, date)
}

type mockBookingService struct {
	confirmFn func(ctx context.Context, req *dto.CreateReservationRequest) (*dto.ReservationResponse, error)
	cancelFn  func(ctx context.Context, id string) error
	getFn     func(ctx context.Context, id string) (*dto.ReservationResponse, error)
	inviteFn  func(ctx context.Context, id string) ([]byte, string, error)
}

func (m *mockBookingService) Confirm(ctx context.Context, req *dto.CreateReservationRequest) (*dto.ReservationResponse, error) {
	return m.confirmFn(ctx, req)
}

func (m *mockBookingService) Cancel(ctx context.Context, id string) error {
	return m.cancelFn(ctx, id)
}

func (m *mockBookingService) GetByID(ctx context.Context, id string) (*dto.ReservationResponse, error) {
	return m.getFn(ctx, id)
}

func (m *mockBookingService) CalendarInvite(ctx context.Context, id string) ([]byte, string, error) {
	return m.inviteFn(ctx, id)
}

type mockExportService struct {
	manifestFn func(ctx context.Context, date string) (*bytes.Buffer, string, error)
}

func (m *mockExportService) DailyManifest(ctx context.Context, date string) (*bytes.Buffer, string, error) {
	return m.manifestFn(ctx, date)
}

// ── harness ──

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func testCatalog() *service.TierCatalog {
	return service.NewTierCatalog([]model.ExperienceTier{
		{Name: "Beginner", Description: "First time or still learning basics", BasePrice: decimal.RequireFromString("89.00"), MinSkill: "None", SortOrder: 1},
		{Name: "Intermediate", Description: "Comfortable paddling and catching waves", BasePrice: decimal.RequireFromString("109.00"), MinSkill: "Beginner", SortOrder: 2},
		{Name: "Advanced", Description: "Skilled surfer looking to improve technique", BasePrice: decimal.RequireFromString("129.00"), MinSkill: "Intermediate", SortOrder: 3},
	})
}

// newTestServer mounts the full route table over mocked services, redis
// absent so rate limiting degrades open.
func newTestServer(t *testing.T, avail *mockAvailabilityService, booking *mockBookingService, export *mockExportService) http.Handler {
	t.Helper()

	svc := &service.Service{
		Availability: avail,
		Booking:      booking,
		Export:       export,
		Tiers:        testCatalog(),
	}

	cfg := &config.Config{
		Server: config.ServerConfig{
			Port: 8080,
			CORS: config.CORSConfig{AllowOrigins: []string{"http://localhost:3000"}},
		},
		Booking: config.BookingConfig{RateLimitPerMinute: 30},
	}

	return router.Setup(cfg, handler.NewHandler(svc), nil, zap.NewNop())
}

func doRequest(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decoding envelope: %v\n%s", err, w.Body.String())
	}
	return env
}

func sampleReservation() *dto.ReservationResponse {
	return &dto.ReservationResponse{
		ReservationID:   "HAEVN-2025070401",
		Date:            "2025-07-04",
		StartTime:       "09:00",
		DurationMinutes: 90,
		Location:        "Haevn Surf Park - Wave Pool 2",
		Tier:            "Beginner",
		EquipmentRental: true,
		Status:          model.ReservationConfirmed,
		Price:           dto.PriceBreakdownResponse{Base: "89.00", Equipment: "15.00", Tax: "10.40", Total: "114.40"},
		QRPayload:       "HAEVN-BOOKING:HAEVN-2025070401",
		CreatedAt:       "2025-07-01T10:00:00Z",
	}
}

// ────────────────────── availability routes ──────────────────────

func TestGetCalendar(t *testing.T) {
	avail := &mockAvailabilityService{
		daysFn: func(_ context.Context, year, month int) ([]dto.CalendarDayResponse, error) {
			if year != 2025 || month != 7 {
				t.Errorf("bound year/month = %d/%d", year, month)
			}
			return []dto.CalendarDayResponse{
				{Date: "2025-07-01", State: "OPEN", Slots: 4},
				{Date: "2025-07-02", State: "FULL", Slots: 0},
			}, nil
		},
	}
	h := newTestServer(t, avail, &mockBookingService{}, &mockExportService{})

	w := doRequest(t, h, http.MethodGet, "/api/v1/availability/calendar?year=2025&month=7", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	env := decodeEnvelope(t, w)
	if env.Code != 0 {
		t.Errorf("code = %d, want 0", env.Code)
	}

	var data struct {
		Days []dto.CalendarDayResponse `json:"days"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decoding days: %v", err)
	}
	if len(data.Days) != 2 || data.Days[1].State != "FULL" {
		t.Errorf("days = %+v", data.Days)
	}
}

func TestGetCalendar_InvalidQuery(t *testing.T) {
	h := newTestServer(t, &mockAvailabilityService{}, &mockBookingService{}, &mockExportService{})

	for _, target := range []string{
		"/api/v1/availability/calendar",
		"/api/v1/availability/calendar?year=2025&month=13",
		"/api/v1/availability/calendar?year=1999&month=7",
	} {
		w := doRequest(t, h, http.MethodGet, target, "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, w.Code)
		}
		if env := decodeEnvelope(t, w); env.Code != 10001 {
			t.Errorf("%s: code = %d, want 10001", target, env.Code)
		}
	}
}

func TestGetSlots(t *testing.T) {
	remaining := 3
	avail := &mockAvailabilityService{
		slotsFn: func(_ context.Context, date string) ([]dto.SlotAvailabilityResponse, error) {
			if date != "2025-07-04" {
				t.Errorf("bound date = %q", date)
			}
			return []dto.SlotAvailabilityResponse{
				{SlotID: testSlotID, StartTime: "09:00", DurationMinutes: 90, Pool: "Wave Pool 2", State: "OPEN", Remaining: &remaining},
			}, nil
		},
	}
	h := newTestServer(t, avail, &mockBookingService{}, &mockExportService{})

	w := doRequest(t, h, http.MethodGet, "/api/v1/availability/slots?date=2025-07-04", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var data struct {
		Slots []dto.SlotAvailabilityResponse `json:"slots"`
	}
	if err := json.Unmarshal(decodeEnvelope(t, w).Data, &data); err != nil {
		t.Fatalf("decoding slots: %v", err)
	}
	if len(data.Slots) != 1 || data.Slots[0].State != "OPEN" || data.Slots[0].Remaining == nil {
		t.Errorf("slots = %+v", data.Slots)
	}
}

func TestGetSlots_UnknownDate(t *testing.T) {
	avail := &mockAvailabilityService{
		slotsFn: func(_ context.Context, _ string) ([]dto.SlotAvailabilityResponse, error) {
			return nil, service.ErrUnknownDate
		},
	}
	h := newTestServer(t, avail, &mockBookingService{}, &mockExportService{})

	w := doRequest(t, h, http.MethodGet, "/api/v1/availability/slots?date=not-a-date", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if env := decodeEnvelope(t, w); env.Code != 20001 {
		t.Errorf("code = %d, want 20001", env.Code)
	}
}

func TestListTiers(t *testing.T) {
	h := newTestServer(t, &mockAvailabilityService{}, &mockBookingService{}, &mockExportService{})

	w := doRequest(t, h, http.MethodGet, "/api/v1/tiers", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var data struct {
		Tiers []dto.TierResponse `json:"tiers"`
	}
	if err := json.Unmarshal(decodeEnvelope(t, w).Data, &data); err != nil {
		t.Fatalf("decoding tiers: %v", err)
	}
	if len(data.Tiers) != 3 {
		t.Fatalf("tiers = %d, want 3", len(data.Tiers))
	}
	if data.Tiers[0].Name != "Beginner" || data.Tiers[0].BasePrice != "89.00" {
		t.Errorf("first tier = %+v", data.Tiers[0])
	}
	if data.Tiers[2].Name != "Advanced" {
		t.Errorf("tier order = %v", data.Tiers)
	}
}

// ────────────────────── reservation routes ──────────────────────

func TestCreateReservation(t *testing.T) {
	booking := &mockBookingService{
		confirmFn: func(_ context.Context, req *dto.CreateReservationRequest) (*dto.ReservationResponse, error) {
			if req.SlotID != testSlotID || req.Tier != "Beginner" || !req.EquipmentRental {
				t.Errorf("bound request = %+v", req)
			}
			return sampleReservation(), nil
		},
	}
	h := newTestServer(t, &mockAvailabilityService{}, booking, &mockExportService{})

	body := `{"date":"2025-07-04","slot_id":"` + testSlotID + `","tier":"Beginner","equipment_rental":true}`
	w := doRequest(t, h, http.MethodPost, "/api/v1/reservations", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201\n%s", w.Code, w.Body.String())
	}

	var res dto.ReservationResponse
	if err := json.Unmarshal(decodeEnvelope(t, w).Data, &res); err != nil {
		t.Fatalf("decoding reservation: %v", err)
	}
	if res.ReservationID != "HAEVN-2025070401" || res.QRPayload != "HAEVN-BOOKING:HAEVN-2025070401" {
		t.Errorf("reservation = %+v", res)
	}
	if res.Price.Total != "114.40" {
		t.Errorf("total = %q, want 114.40", res.Price.Total)
	}
}

func TestCreateReservation_InvalidBody(t *testing.T) {
	h := newTestServer(t, &mockAvailabilityService{}, &mockBookingService{}, &mockExportService{})

	cases := []struct {
		name string
		body string
	}{
		{"not json", "surf"},
		{"missing fields", `{"date":"2025-07-04"}`},
		{"slot id not uuid", `{"date":"2025-07-04","slot_id":"slot-1","tier":"Beginner"}`},
	}
	for _, tc := range cases {
		w := doRequest(t, h, http.MethodPost, "/api/v1/reservations", tc.body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", tc.name, w.Code)
		}
		if env := decodeEnvelope(t, w); env.Code != 10001 {
			t.Errorf("%s: code = %d, want 10001", tc.name, env.Code)
		}
	}
}

func TestCreateReservation_ErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"unknown date", service.ErrUnknownDate, http.StatusBadRequest, 20001},
		{"slot not found", service.ErrSlotNotFound, http.StatusNotFound, 20002},
		{"unknown tier", service.ErrUnknownTier, http.StatusBadRequest, 20003},
		{"slot full", service.ErrSlotFull, http.StatusConflict, 20004},
		{"persistence failed", service.ErrPersistenceFailed, http.StatusServiceUnavailable, 20006},
		{"reconciliation failure", service.ErrReconciliationFailure, http.StatusInternalServerError, 50000},
	}

	body := `{"date":"2025-07-04","slot_id":"` + testSlotID + `","tier":"Beginner"}`
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			booking := &mockBookingService{
				confirmFn: func(_ context.Context, _ *dto.CreateReservationRequest) (*dto.ReservationResponse, error) {
					return nil, tc.err
				},
			}
			h := newTestServer(t, &mockAvailabilityService{}, booking, &mockExportService{})

			w := doRequest(t, h, http.MethodPost, "/api/v1/reservations", body)
			if w.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tc.wantStatus)
			}
			if env := decodeEnvelope(t, w); env.Code != tc.wantCode {
				t.Errorf("code = %d, want %d", env.Code, tc.wantCode)
			}
		})
	}
}

func TestGetReservation(t *testing.T) {
	booking := &mockBookingService{
		getFn: func(_ context.Context, id string) (*dto.ReservationResponse, error) {
			if id != "HAEVN-2025070401" {
				return nil, service.ErrReservationNotFound
			}
			return sampleReservation(), nil
		},
	}
	h := newTestServer(t, &mockAvailabilityService{}, booking, &mockExportService{})

	w := doRequest(t, h, http.MethodGet, "/api/v1/reservations/HAEVN-2025070401", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	w = doRequest(t, h, http.MethodGet, "/api/v1/reservations/HAEVN-2025070499", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if env := decodeEnvelope(t, w); env.Code != 20005 {
		t.Errorf("code = %d, want 20005", env.Code)
	}
}

func TestCancelReservation(t *testing.T) {
	var cancelled []string
	booking := &mockBookingService{
		cancelFn: func(_ context.Context, id string) error {
			cancelled = append(cancelled, id)
			return nil
		},
	}
	h := newTestServer(t, &mockAvailabilityService{}, booking, &mockExportService{})

	w := doRequest(t, h, http.MethodDelete, "/api/v1/reservations/HAEVN-2025070401", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if env := decodeEnvelope(t, w); env.Code != 0 {
		t.Errorf("code = %d, want 0", env.Code)
	}
	if len(cancelled) != 1 || cancelled[0] != "HAEVN-2025070401" {
		t.Errorf("cancelled = %v", cancelled)
	}
}

func TestCancelReservation_NotFound(t *testing.T) {
	booking := &mockBookingService{
		cancelFn: func(_ context.Context, _ string) error {
			return service.ErrReservationNotFound
		},
	}
	h := newTestServer(t, &mockAvailabilityService{}, booking, &mockExportService{})

	w := doRequest(t, h, http.MethodDelete, "/api/v1/reservations/HAEVN-2025070499", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if env := decodeEnvelope(t, w); env.Code != 20005 {
		t.Errorf("code = %d, want 20005", env.Code)
	}
}

func TestGetCalendarInvite(t *testing.T) {
	booking := &mockBookingService{
		inviteFn: func(_ context.Context, id string) ([]byte, string, error) {
			return []byte("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"), "haevn-session-2025-07-04.ics", nil
		},
	}
	h := newTestServer(t, &mockAvailabilityService{}, booking, &mockExportService{})

	w := doRequest(t, h, http.MethodGet, "/api/v1/reservations/HAEVN-2025070401/calendar.ics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/calendar" {
		t.Errorf("content type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "haevn-session-2025-07-04.ics") {
		t.Errorf("content disposition = %q", cd)
	}
	if !strings.Contains(w.Body.String(), "BEGIN:VCALENDAR") {
		t.Errorf("body = %q", w.Body.String())
	}
}

// ────────────────────── export routes ──────────────────────

func TestGetDailyManifest(t *testing.T) {
	export := &mockExportService{
		manifestFn: func(_ context.Context, date string) (*bytes.Buffer, string, error) {
			if date != "2025-07-04" {
				t.Errorf("date = %q", date)
			}
			return bytes.NewBufferString("PK\x03\x04workbook"), "haevn-manifest-2025-07-04.xlsx", nil
		},
	}
	h := newTestServer(t, &mockAvailabilityService{}, &mockBookingService{}, export)

	w := doRequest(t, h, http.MethodGet, "/api/v1/exports/daily-manifest?date=2025-07-04", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != handler.XLSXContentTypeForTest {
		t.Errorf("content type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "haevn-manifest-2025-07-04.xlsx") {
		t.Errorf("content disposition = %q", cd)
	}
}

func TestGetDailyManifest_Errors(t *testing.T) {
	h := newTestServer(t, &mockAvailabilityService{}, &mockBookingService{}, &mockExportService{
		manifestFn: func(_ context.Context, _ string) (*bytes.Buffer, string, error) {
			return nil, "", service.ErrExportNoReservations
		},
	})

	// Missing date is rejected before the service runs.
	w := doRequest(t, h, http.MethodGet, "/api/v1/exports/daily-manifest", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}

	w = doRequest(t, h, http.MethodGet, "/api/v1/exports/daily-manifest?date=2025-07-04", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if env := decodeEnvelope(t, w); env.Code != 20007 {
		t.Errorf("code = %d, want 20007", env.Code)
	}
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, &mockAvailabilityService{}, &mockBookingService{}, &mockExportService{})

	w := doRequest(t, h, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}
