package service

import (
	"context"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"github.com/d999ss/haevn/internal/model"
)

// ── calendar invite rendering ──
//
// A confirmed reservation can be exported as a single-event iCalendar
// (RFC 5545) file so guests can drop the session into their own calendar.
// Cancelled reservations still render; the status lands in the summary.

// CalendarInvite renders the reservation as an .ics document. Returns the
// document bytes and a suggested filename.
func (s *bookingService) CalendarInvite(ctx context.Context, reservationID string) ([]byte, string, error) {
	res, err := s.GetByID(ctx, reservationID)
	if err != nil {
		return nil, "", err
	}

	start, err := sessionStart(res.Date, res.StartTime)
	if err != nil {
		// Stored dates/times are validated on the way in; this is a data
		// problem worth surfacing.
		s.logger.Error("invalid session time on reservation",
			zap.String("reservation_id", reservationID),
			zap.Error(err),
		)
		return nil, "", err
	}
	end := start.Add(time.Duration(res.DurationMinutes) * time.Minute)

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//Haevn Surf Park//Session Booking//EN")

	event := cal.AddEvent(res.ReservationID + "@haevn.surf")
	event.SetCreatedTime(time.Now().UTC())
	event.SetDtStampTime(time.Now().UTC())
	event.SetStartAt(start)
	event.SetEndAt(end)
	event.SetSummary(fmt.Sprintf("Haevn Surf Session (%s)", res.Tier))
	event.SetLocation(res.Location)
	event.SetDescription(fmt.Sprintf("Confirmation #%s. Present your QR code on arrival.", res.ReservationID))

	filename := fmt.Sprintf("haevn-session-%s.ics", res.Date)
	return []byte(cal.Serialize()), filename, nil
}

// sessionStart combines the wire date and "15:04" start time into a UTC
// instant.
func sessionStart(date, startTime string) (time.Time, error) {
	return time.Parse(model.DateOnly+" 15:04", date+" "+startTime)
}
