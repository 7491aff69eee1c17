package api

import (
	"time"

	"github.com/Domenick1991/airtech/internal/domain"
)

type locationRef struct {
	Country string `json:"country" binding:"required,max=60"`
	City    string `json:"city" binding:"required,max=60"`
	Airport string `json:"airport" binding:"required,max=60"`
}

func (r *locationRef) toDomain() *domain.LocationRef {
	if r == nil {
		return nil
	}
	return &domain.LocationRef{Country: r.Country, City: r.City, Airport: r.Airport}
}

type userSummaryResponse struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func newUserSummary(u domain.UserSummary) userSummaryResponse {
	return userSummaryResponse{Email: u.Email, FirstName: u.FirstName, LastName: u.LastName}
}

type userResponse struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	DateJoined  time.Time `json:"date_joined"`
	IsActive    bool      `json:"is_active"`
	IsStaff     bool      `json:"is_staff"`
	IsSuperuser bool      `json:"is_superuser"`
}

func newUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		DateJoined:  u.DateJoined,
		IsActive:    u.IsActive,
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
	}
}

type locationResponse struct {
	ID        int64     `json:"id"`
	Country   string    `json:"country"`
	City      string    `json:"city"`
	Airport   string    `json:"airport"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newLocationResponse(l *domain.Location) locationResponse {
	return locationResponse{ID: l.ID, Country: l.Country, City: l.City, Airport: l.Airport, CreatedAt: l.CreatedAt, UpdatedAt: l.UpdatedAt}
}

func optionalLocation(l *domain.Location) *locationResponse {
	if l == nil {
		return nil
	}
	r := newLocationResponse(l)
	return &r
}

type flightResponse struct {
	ID            int64                `json:"id"`
	Name          string               `json:"name"`
	Origin        *locationResponse    `json:"origin"`
	Destination   *locationResponse    `json:"destination"`
	DepartureTime *time.Time           `json:"departure_time"`
	ArrivalTime   *time.Time           `json:"arrival_time"`
	Gate          string               `json:"gate"`
	CreatedBy     *userSummaryResponse `json:"created_by,omitempty"`
}

// newFlightResponse renders a flight; created_by is only shown to staff.
func newFlightResponse(f *domain.Flight, staff bool) flightResponse {
	r := flightResponse{
		ID:            f.ID,
		Name:          f.Name,
		Origin:        optionalLocation(f.Origin),
		Destination:   optionalLocation(f.Destination),
		DepartureTime: f.DepartureTime,
		ArrivalTime:   f.ArrivalTime,
		Gate:          f.Gate,
	}
	if staff {
		createdBy := newUserSummary(f.CreatedBy)
		r.CreatedBy = &createdBy
	}
	return r
}

type seatResponse struct {
	ID         int64  `json:"id"`
	ClassGroup string `json:"class_group"`
	Letter     string `json:"letter"`
	Row        int    `json:"row"`
	Booked     bool   `json:"booked"`
	Flight     string `json:"flight"`
}

func newSeatResponse(s *domain.Seat) seatResponse {
	return seatResponse{ID: s.ID, ClassGroup: s.ClassGroup, Letter: s.Letter, Row: s.Row, Booked: s.Booked, Flight: s.FlightName}
}

// bookedSeatResponse is the seat as shown inside a booking.
type bookedSeatResponse struct {
	ID         int64  `json:"id"`
	ClassGroup string `json:"class_group"`
	Seat       string `json:"seat"`
	Booked     bool   `json:"booked"`
}

type bookingResponse struct {
	ID          int64               `json:"id"`
	BookedBy    userSummaryResponse `json:"booked_by"`
	Origin      *locationResponse   `json:"origin"`
	Destination *locationResponse   `json:"destination"`
	TravelDate  *string             `json:"travel_date"`
	Flight      *flightResponse     `json:"flight"`
	Seat        *bookedSeatResponse `json:"seat"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func newBookingResponse(b *domain.Booking) bookingResponse {
	r := bookingResponse{
		ID:          b.ID,
		BookedBy:    newUserSummary(b.BookedBy),
		Origin:      optionalLocation(b.Origin),
		Destination: optionalLocation(b.Destination),
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
	if b.TravelDate != nil {
		day := b.TravelDate.Format(domain.DateLayout)
		r.TravelDate = &day
	}
	if b.Flight != nil {
		flight := newFlightResponse(b.Flight, false)
		r.Flight = &flight
	}
	if b.Seat != nil {
		r.Seat = &bookedSeatResponse{ID: b.Seat.ID, ClassGroup: b.Seat.ClassGroup, Seat: b.Seat.Label(), Booked: b.Seat.Booked}
	}
	return r
}

type messageResponse struct {
	Message string `json:"message"`
}
