package memory

import (
	"context"
	"time"

	"github.com/Domenick1991/airtech/internal/domain"
)

type bookingRepo struct{ s *Store }

func (r bookingRepo) view(b domain.Booking) domain.Booking {
	data := r.s.data
	if u, ok := data.users[b.BookedByID]; ok {
		b.BookedBy = u.Summary()
	}
	b.Origin, b.Destination, b.Flight, b.Seat = nil, nil, nil, nil
	if b.OriginID != nil {
		if l, ok := data.locations[*b.OriginID]; ok {
			b.Origin = &l
		}
	}
	if b.DestinationID != nil {
		if l, ok := data.locations[*b.DestinationID]; ok {
			b.Destination = &l
		}
	}
	if b.FlightID != nil {
		if f, ok := data.flights[*b.FlightID]; ok {
			f = flightRepo{r.s}.view(f)
			b.Flight = &f
		}
	}
	if b.SeatID != nil {
		if seat, ok := data.seats[*b.SeatID]; ok {
			seat = seatRepo{r.s}.view(seat)
			b.Seat = &seat
		}
	}
	return b
}

func (r bookingRepo) seatHeld(seatID *int64, exclude int64) bool {
	if seatID == nil {
		return false
	}
	for id, b := range r.s.data.bookings {
		if id != exclude && b.DeletedAt == nil && b.SeatID != nil && *b.SeatID == *seatID {
			return true
		}
	}
	return false
}

func (r bookingRepo) store(b domain.Booking) {
	b.BookedBy = domain.UserSummary{}
	b.Origin, b.Destination, b.Flight, b.Seat = nil, nil, nil, nil
	r.s.data.bookings[b.ID] = b
}

func (r bookingRepo) Create(_ context.Context, booking *domain.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.seatHeld(booking.SeatID, 0) {
		return domain.ErrDuplicate
	}
	booking.ID = r.s.id()
	booking.CreatedAt = r.s.now()
	booking.UpdatedAt = booking.CreatedAt
	r.store(*booking)
	return nil
}

func (r bookingRepo) find(id int64, active bool) (*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.data.bookings[id]
	if !ok || (active && b.DeletedAt != nil) {
		return nil, domain.ErrNotFound
	}
	b = r.view(b)
	return &b, nil
}

func (r bookingRepo) FindActiveByID(_ context.Context, id int64) (*domain.Booking, error) {
	return r.find(id, true)
}

func (r bookingRepo) FindAllByID(_ context.Context, id int64) (*domain.Booking, error) {
	return r.find(id, false)
}

// LockActiveByID needs no row lock here: transactions already run one at a time.
func (r bookingRepo) LockActiveByID(_ context.Context, id int64) (*domain.Booking, error) {
	return r.find(id, true)
}

func (r bookingRepo) filter(keep func(domain.Booking) bool) []domain.Booking {
	bookings := make([]domain.Booking, 0)
	for _, id := range sortedIDs(r.s.data.bookings) {
		if b := r.s.data.bookings[id]; b.DeletedAt == nil && keep(b) {
			bookings = append(bookings, r.view(b))
		}
	}
	return bookings
}

func (r bookingRepo) ListActive(_ context.Context, f domain.BookingFilter, p domain.Page) (domain.PageResult[domain.Booking], error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return page(r.filter(func(b domain.Booking) bool {
		if f.BookedBy != 0 && b.BookedByID != f.BookedBy {
			return false
		}
		if f.FlightID != 0 && (b.FlightID == nil || *b.FlightID != f.FlightID) {
			return false
		}
		return f.TravelDate == nil || sameTime(b.TravelDate, f.TravelDate)
	}), p), nil
}

func (r bookingRepo) ListUnassigned(_ context.Context, originID, destinationID *int64, travelDate *time.Time, limit int) ([]domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	bookings := r.filter(func(b domain.Booking) bool {
		return b.FlightID == nil && sameID(b.OriginID, originID) && sameID(b.DestinationID, destinationID) && sameTime(b.TravelDate, travelDate)
	})
	if len(bookings) > limit {
		bookings = bookings[:limit]
	}
	return bookings, nil
}

func (r bookingRepo) ListForTravelDate(_ context.Context, date time.Time) ([]domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return r.filter(func(b domain.Booking) bool {
		return b.TravelDate != nil && b.TravelDate.Equal(date)
	}), nil
}

func (r bookingRepo) CountActiveBySeat(_ context.Context, seatID int64) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return len(r.filter(func(b domain.Booking) bool {
		return b.SeatID != nil && *b.SeatID == seatID
	})), nil
}

func (r bookingRepo) AssignFlight(_ context.Context, bookingIDs []int64, flightID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for _, id := range bookingIDs {
		b, ok := r.s.data.bookings[id]
		if !ok || b.DeletedAt != nil || b.FlightID != nil {
			continue
		}
		b.FlightID = ptr(flightID)
		b.UpdatedAt = r.s.now()
		r.s.data.bookings[id] = b
		n++
	}
	return n, nil
}

func (r bookingRepo) Update(_ context.Context, booking *domain.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.data.bookings[booking.ID]
	if !ok || current.DeletedAt != nil {
		return domain.ErrNotFound
	}
	if r.seatHeld(booking.SeatID, booking.ID) {
		return domain.ErrDuplicate
	}
	current.FlightID = booking.FlightID
	current.SeatID = booking.SeatID
	current.OriginID = booking.OriginID
	current.DestinationID = booking.DestinationID
	current.TravelDate = booking.TravelDate
	current.UpdatedAt = r.s.now()
	booking.UpdatedAt = current.UpdatedAt
	r.store(current)
	return nil
}

func (r bookingRepo) SoftDelete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.data.bookings[id]
	if !ok || b.DeletedAt != nil {
		return domain.ErrNotFound
	}
	b.DeletedAt = ptr(r.s.now())
	r.s.data.bookings[id] = b
	return nil
}

func (r bookingRepo) HardDelete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.data.bookings, id)
	return nil
}
