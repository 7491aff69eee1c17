package domain

import "time"

// DateLayout is the wire format of travel dates.
const DateLayout = "2006-01-02"

type Booking struct {
	ID            int64
	BookedByID    int64
	FlightID      *int64
	SeatID        *int64
	OriginID      *int64
	DestinationID *int64
	TravelDate    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     *time.Time

	BookedBy    UserSummary
	Origin      *Location
	Destination *Location
	Flight      *Flight
	Seat        *Seat
}

// BookingFilter narrows booking listings. A zero BookedBy lists everyone's bookings.
type BookingFilter struct {
	BookedBy   int64
	FlightID   int64
	TravelDate *time.Time
}
