package domain

import (
	"strconv"
	"time"
)

const DefaultClassGroup = "Economy"

type Seat struct {
	ID         int64
	FlightID   int64
	FlightName string
	Letter     string
	Row        int
	ClassGroup string
	Booked     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  *time.Time
}

// Label renders the seat the way it is printed on a ticket, e.g. "12C".
func (s *Seat) Label() string {
	return strconv.Itoa(s.Row) + s.Letter
}

// SeatRef identifies a seat within a flight.
type SeatRef struct {
	Row        int
	Letter     string
	ClassGroup string
}
