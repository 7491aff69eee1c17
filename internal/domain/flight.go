package domain

import "time"

type Flight struct {
	ID            int64
	Name          string
	OriginID      *int64
	DestinationID *int64
	Origin        *Location
	Destination   *Location
	DepartureTime *time.Time
	ArrivalTime   *time.Time
	Gate          string
	CreatedBy     UserSummary
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     *time.Time
}

// DepartsOn reports whether a scheduled flight leaves on the given date.
// Unscheduled flights match any date.
func (f *Flight) DepartsOn(date time.Time) bool {
	if f.DepartureTime == nil {
		return true
	}
	dy, dm, dd := f.DepartureTime.UTC().Date()
	ty, tm, td := date.Date()
	return dy == ty && dm == tm && dd == td
}

// Serves reports whether the flight flies the given origin/destination pair.
func (f *Flight) Serves(originID, destinationID *int64) bool {
	return sameID(f.OriginID, originID) && sameID(f.DestinationID, destinationID)
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
