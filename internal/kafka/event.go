package kafka

import (
	"time"

	"github.com/Domenick1991/airtech/internal/domain"
	"github.com/google/uuid"
)

const (
	EventBookingCreated   = "booking_created"
	EventBookingUpdated   = "booking_updated"
	EventBookingCancelled = "booking_cancelled"
	EventTravelReminder   = "travel_reminder"
)

type BookingEvent struct {
	ID            string     `json:"id"`
	Type          string     `json:"type"`
	BookingID     int64      `json:"booking_id"`
	Email         string     `json:"email"`
	FirstName     string     `json:"first_name"`
	FlightName    string     `json:"flight_name,omitempty"`
	Seat          string     `json:"seat,omitempty"`
	ClassGroup    string     `json:"class_group,omitempty"`
	Origin        string     `json:"origin,omitempty"`
	Destination   string     `json:"destination,omitempty"`
	TravelDate    string     `json:"travel_date,omitempty"`
	DepartureTime *time.Time `json:"departure_time,omitempty"`
	Gate          string     `json:"gate,omitempty"`
	OccurredAt    time.Time  `json:"occurred_at"`
}

func NewBookingEvent(eventType string, b *domain.Booking, now time.Time) BookingEvent {
	event := BookingEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		BookingID:  b.ID,
		Email:      b.BookedBy.Email,
		FirstName:  b.BookedBy.FirstName,
		OccurredAt: now.UTC(),
	}
	if b.Flight != nil {
		event.FlightName = b.Flight.Name
		event.DepartureTime = b.Flight.DepartureTime
		event.Gate = b.Flight.Gate
	}
	if b.Seat != nil {
		event.Seat = b.Seat.Label()
		event.ClassGroup = b.Seat.ClassGroup
	}
	if b.Origin != nil {
		event.Origin = describe(b.Origin)
	}
	if b.Destination != nil {
		event.Destination = describe(b.Destination)
	}
	if b.TravelDate != nil {
		event.TravelDate = b.TravelDate.Format(domain.DateLayout)
	}
	return event
}

func describe(l *domain.Location) string {
	return l.City + ", " + l.Country + " (" + l.Airport + ")"
}
