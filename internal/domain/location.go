package domain

import "time"

type Location struct {
	ID        int64
	Country   string
	City      string
	Airport   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LocationRef identifies a location by its natural key.
type LocationRef struct {
	Country string
	City    string
	Airport string
}

func (l *Location) Ref() LocationRef {
	return LocationRef{Country: l.Country, City: l.City, Airport: l.Airport}
}
