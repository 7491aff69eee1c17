package memory

import (
	"context"
	"sort"
	"time"

	"github.com/Domenick1991/airtech/internal/domain"
)

type flightRepo struct{ s *Store }

// view joins the flight with its locations and creator. Callers hold s.mu.
func (r flightRepo) view(f domain.Flight) domain.Flight {
	if f.OriginID != nil {
		if l, ok := r.s.data.locations[*f.OriginID]; ok {
			f.Origin = &l
		}
	}
	if f.DestinationID != nil {
		if l, ok := r.s.data.locations[*f.DestinationID]; ok {
			f.Destination = &l
		}
	}
	if u, ok := r.s.data.users[f.CreatedBy.ID]; ok {
		f.CreatedBy = u.Summary()
	}
	return f
}

func (r flightRepo) clashes(f domain.Flight) bool {
	for id, other := range r.s.data.flights {
		if id == f.ID || other.DeletedAt != nil || other.Name != f.Name {
			continue
		}
		if sameTime(other.DepartureTime, f.DepartureTime) {
			return true
		}
	}
	return false
}

func (r flightRepo) Create(_ context.Context, flight *domain.Flight) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.clashes(*flight) {
		return domain.ErrDuplicate
	}
	flight.ID = r.s.id()
	flight.CreatedAt = r.s.now()
	flight.UpdatedAt = flight.CreatedAt
	stored := *flight
	stored.Origin, stored.Destination = nil, nil
	r.s.data.flights[flight.ID] = stored
	return nil
}

func (r flightRepo) find(id int64, active bool) (*domain.Flight, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	f, ok := r.s.data.flights[id]
	if !ok || (active && f.DeletedAt != nil) {
		return nil, domain.ErrNotFound
	}
	f = r.view(f)
	return &f, nil
}

func (r flightRepo) FindActiveByID(_ context.Context, id int64) (*domain.Flight, error) {
	return r.find(id, true)
}

func (r flightRepo) FindAllByID(_ context.Context, id int64) (*domain.Flight, error) {
	return r.find(id, false)
}

func (r flightRepo) FindActiveByName(_ context.Context, name string) ([]domain.Flight, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	flights := make([]domain.Flight, 0)
	for _, id := range sortedIDs(r.s.data.flights) {
		if f := r.s.data.flights[id]; f.DeletedAt == nil && f.Name == name {
			flights = append(flights, r.view(f))
		}
	}
	return flights, nil
}

func (r flightRepo) NameTaken(_ context.Context, name string, departure *time.Time, excludeID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, f := range r.s.data.flights {
		if id == excludeID || f.DeletedAt != nil || f.Name != name {
			continue
		}
		if f.DepartureTime == nil || departure == nil || f.DepartureTime.Equal(*departure) {
			return true, nil
		}
	}
	return false, nil
}

func (r flightRepo) ListActive(_ context.Context, p domain.Page) (domain.PageResult[domain.Flight], error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	flights := make([]domain.Flight, 0)
	for _, id := range sortedIDs(r.s.data.flights) {
		if f := r.s.data.flights[id]; f.DeletedAt == nil {
			flights = append(flights, r.view(f))
		}
	}
	sort.SliceStable(flights, func(i, j int) bool {
		a, b := flights[i].DepartureTime, flights[j].DepartureTime
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
	return page(flights, p), nil
}

func (r flightRepo) Update(_ context.Context, flight *domain.Flight) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.data.flights[flight.ID]
	if !ok || current.DeletedAt != nil {
		return domain.ErrNotFound
	}
	if r.clashes(*flight) {
		return domain.ErrDuplicate
	}
	flight.UpdatedAt = r.s.now()
	stored := *flight
	stored.Origin, stored.Destination = nil, nil
	r.s.data.flights[flight.ID] = stored
	return nil
}

func (r flightRepo) SoftDelete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	f, ok := r.s.data.flights[id]
	if !ok || f.DeletedAt != nil {
		return domain.ErrNotFound
	}
	f.DeletedAt = ptr(r.s.now())
	r.s.data.flights[id] = f
	return nil
}

func (r flightRepo) HardDelete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.data.flights, id)
	for sid, seat := range r.s.data.seats {
		if seat.FlightID == id {
			delete(r.s.data.seats, sid)
		}
	}
	return nil
}

type seatRepo struct{ s *Store }

func (r seatRepo) view(seat domain.Seat) domain.Seat {
	seat.FlightName = r.s.data.flights[seat.FlightID].Name
	return seat
}

func (r seatRepo) sorted(keep func(domain.Seat) bool) []domain.Seat {
	seats := make([]domain.Seat, 0)
	for _, id := range sortedIDs(r.s.data.seats) {
		if seat := r.s.data.seats[id]; keep(seat) {
			seats = append(seats, r.view(seat))
		}
	}
	sort.SliceStable(seats, func(i, j int) bool {
		if seats[i].Row != seats[j].Row {
			return seats[i].Row < seats[j].Row
		}
		return seats[i].Letter < seats[j].Letter
	})
	return seats
}

func (r seatRepo) Create(_ context.Context, seat *domain.Seat) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, other := range r.s.data.seats {
		if other.DeletedAt == nil && other.FlightID == seat.FlightID && other.Row == seat.Row && other.Letter == seat.Letter {
			return domain.ErrDuplicate
		}
	}
	seat.ID = r.s.id()
	seat.CreatedAt = r.s.now()
	seat.UpdatedAt = seat.CreatedAt
	r.s.data.seats[seat.ID] = *seat
	return nil
}

func (r seatRepo) FindActiveByID(_ context.Context, flightID, seatID int64) (*domain.Seat, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	seat, ok := r.s.data.seats[seatID]
	if !ok || seat.FlightID != flightID || seat.DeletedAt != nil {
		return nil, domain.ErrNotFound
	}
	seat = r.view(seat)
	return &seat, nil
}

func (r seatRepo) FindActiveByPosition(_ context.Context, flightID int64, row int, letter string) (*domain.Seat, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, seat := range r.s.data.seats {
		if seat.DeletedAt == nil && seat.FlightID == flightID && seat.Row == row && seat.Letter == letter {
			seat = r.view(seat)
			return &seat, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r seatRepo) ListActiveByFlight(_ context.Context, flightID int64, p domain.Page) (domain.PageResult[domain.Seat], error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return page(r.sorted(func(s domain.Seat) bool {
		return s.FlightID == flightID && s.DeletedAt == nil
	}), p), nil
}

func (r seatRepo) ListAllByFlight(_ context.Context, flightID int64) ([]domain.Seat, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return r.sorted(func(s domain.Seat) bool { return s.FlightID == flightID }), nil
}

func (r seatRepo) ListViable(_ context.Context, flightID int64, classGroup string, p domain.Page) (domain.PageResult[domain.Seat], error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return page(r.sorted(func(s domain.Seat) bool {
		return s.FlightID == flightID && s.DeletedAt == nil && !s.Booked && (classGroup == "" || s.ClassGroup == classGroup)
	}), p), nil
}

func (r seatRepo) CountViable(_ context.Context, flightID int64) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return len(r.sorted(func(s domain.Seat) bool {
		return s.FlightID == flightID && s.DeletedAt == nil && !s.Booked
	})), nil
}

func (r seatRepo) Claim(_ context.Context, seatID, flightID int64, classGroup string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	seat, ok := r.s.data.seats[seatID]
	if !ok || seat.FlightID != flightID || seat.ClassGroup != classGroup || seat.Booked || seat.DeletedAt != nil {
		return domain.ErrSeatUnavailable
	}
	seat.Booked = true
	seat.UpdatedAt = r.s.now()
	r.s.data.seats[seatID] = seat
	return nil
}

func (r seatRepo) Release(_ context.Context, seatID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if seat, ok := r.s.data.seats[seatID]; ok {
		seat.Booked = false
		seat.UpdatedAt = r.s.now()
		r.s.data.seats[seatID] = seat
	}
	return nil
}

func (r seatRepo) SoftDeleteByFlight(_ context.Context, flightID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	now := r.s.now()
	for id, seat := range r.s.data.seats {
		if seat.FlightID == flightID && seat.DeletedAt == nil {
			seat.DeletedAt = ptr(now)
			r.s.data.seats[id] = seat
			n++
		}
	}
	return n, nil
}

func (r seatRepo) HardDelete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.data.seats, id)
	return nil
}
