// Package mocks holds testify mocks of the repository interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/Domenick1991/airtech/internal/domain"
	"github.com/Domenick1991/airtech/internal/repository"
	"github.com/stretchr/testify/mock"
)

// Tx runs the callback directly, without a database.
type Tx struct{}

func (Tx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepository) FindActiveByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *UserRepository) FindAllByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *UserRepository) FindActiveByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *UserRepository) ListActive(ctx context.Context, page domain.Page) (domain.PageResult[domain.User], error) {
	args := m.Called(ctx, page)
	return args.Get(0).(domain.PageResult[domain.User]), args.Error(1)
}

func (m *UserRepository) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepository) SoftDelete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *UserRepository) HardDelete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type TokenRepository struct {
	mock.Mock
}

func (m *TokenRepository) Create(ctx context.Context, token *domain.Token) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *TokenRepository) GetByKey(ctx context.Context, key string) (*domain.Token, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Token), args.Error(1)
}

func (m *TokenRepository) GetByUserID(ctx context.Context, userID int64) (*domain.Token, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Token), args.Error(1)
}

func (m *TokenRepository) Rotate(ctx context.Context, userID int64, key string, expiresAt *time.Time) (*domain.Token, error) {
	args := m.Called(ctx, userID, key, expiresAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Token), args.Error(1)
}

func (m *TokenRepository) DeleteByKey(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type LocationRepository struct {
	mock.Mock
}

func (m *LocationRepository) Create(ctx context.Context, location *domain.Location) error {
	args := m.Called(ctx, location)
	return args.Error(0)
}

func (m *LocationRepository) GetByID(ctx context.Context, id int64) (*domain.Location, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Location), args.Error(1)
}

func (m *LocationRepository) FindByRef(ctx context.Context, ref domain.LocationRef) (*domain.Location, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Location), args.Error(1)
}

func (m *LocationRepository) List(ctx context.Context, page domain.Page) (domain.PageResult[domain.Location], error) {
	args := m.Called(ctx, page)
	return args.Get(0).(domain.PageResult[domain.Location]), args.Error(1)
}

func (m *LocationRepository) Update(ctx context.Context, location *domain.Location) error {
	args := m.Called(ctx, location)
	return args.Error(0)
}

type FlightRepository struct {
	mock.Mock
}

func (m *FlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	args := m.Called(ctx, flight)
	return args.Error(0)
}

func (m *FlightRepository) FindActiveByID(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *FlightRepository) FindAllByID(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *FlightRepository) FindActiveByName(ctx context.Context, name string) ([]domain.Flight, error) {
	args := m.Called(ctx, name)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *FlightRepository) NameTaken(ctx context.Context, name string, departure *time.Time, excludeID int64) (bool, error) {
	args := m.Called(ctx, name, departure, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *FlightRepository) ListActive(ctx context.Context, page domain.Page) (domain.PageResult[domain.Flight], error) {
	args := m.Called(ctx, page)
	return args.Get(0).(domain.PageResult[domain.Flight]), args.Error(1)
}

func (m *FlightRepository) Update(ctx context.Context, flight *domain.Flight) error {
	args := m.Called(ctx, flight)
	return args.Error(0)
}

func (m *FlightRepository) SoftDelete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *FlightRepository) HardDelete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type SeatRepository struct {
	mock.Mock
}

func (m *SeatRepository) Create(ctx context.Context, seat *domain.Seat) error {
	args := m.Called(ctx, seat)
	return args.Error(0)
}

func (m *SeatRepository) FindActiveByID(ctx context.Context, flightID, seatID int64) (*domain.Seat, error) {
	args := m.Called(ctx, flightID, seatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Seat), args.Error(1)
}

func (m *SeatRepository) FindActiveByPosition(ctx context.Context, flightID int64, row int, letter string) (*domain.Seat, error) {
	args := m.Called(ctx, flightID, row, letter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Seat), args.Error(1)
}

func (m *SeatRepository) ListActiveByFlight(ctx context.Context, flightID int64, page domain.Page) (domain.PageResult[domain.Seat], error) {
	args := m.Called(ctx, flightID, page)
	return args.Get(0).(domain.PageResult[domain.Seat]), args.Error(1)
}

func (m *SeatRepository) ListAllByFlight(ctx context.Context, flightID int64) ([]domain.Seat, error) {
	args := m.Called(ctx, flightID)
	return args.Get(0).([]domain.Seat), args.Error(1)
}

func (m *SeatRepository) ListViable(ctx context.Context, flightID int64, classGroup string, page domain.Page) (domain.PageResult[domain.Seat], error) {
	args := m.Called(ctx, flightID, classGroup, page)
	return args.Get(0).(domain.PageResult[domain.Seat]), args.Error(1)
}

func (m *SeatRepository) CountViable(ctx context.Context, flightID int64) (int, error) {
	args := m.Called(ctx, flightID)
	return args.Int(0), args.Error(1)
}

func (m *SeatRepository) Claim(ctx context.Context, seatID, flightID int64, classGroup string) error {
	args := m.Called(ctx, seatID, flightID, classGroup)
	return args.Error(0)
}

func (m *SeatRepository) Release(ctx context.Context, seatID int64) error {
	args := m.Called(ctx, seatID)
	return args.Error(0)
}

func (m *SeatRepository) SoftDeleteByFlight(ctx context.Context, flightID int64) (int64, error) {
	args := m.Called(ctx, flightID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *SeatRepository) HardDelete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type BookingRepository struct {
	mock.Mock
}

func (m *BookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *BookingRepository) FindActiveByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *BookingRepository) FindAllByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *BookingRepository) LockActiveByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *BookingRepository) ListActive(ctx context.Context, filter domain.BookingFilter, page domain.Page) (domain.PageResult[domain.Booking], error) {
	args := m.Called(ctx, filter, page)
	return args.Get(0).(domain.PageResult[domain.Booking]), args.Error(1)
}

func (m *BookingRepository) ListUnassigned(ctx context.Context, originID, destinationID *int64, travelDate *time.Time, limit int) ([]domain.Booking, error) {
	args := m.Called(ctx, originID, destinationID, travelDate, limit)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *BookingRepository) ListForTravelDate(ctx context.Context, date time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, date)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *BookingRepository) CountActiveBySeat(ctx context.Context, seatID int64) (int, error) {
	args := m.Called(ctx, seatID)
	return args.Int(0), args.Error(1)
}

func (m *BookingRepository) AssignFlight(ctx context.Context, bookingIDs []int64, flightID int64) (int64, error) {
	args := m.Called(ctx, bookingIDs, flightID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *BookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *BookingRepository) SoftDelete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *BookingRepository) HardDelete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var (
	_ repository.Transactor         = Tx{}
	_ repository.UserRepository     = (*UserRepository)(nil)
	_ repository.TokenRepository    = (*TokenRepository)(nil)
	_ repository.LocationRepository = (*LocationRepository)(nil)
	_ repository.FlightRepository   = (*FlightRepository)(nil)
	_ repository.SeatRepository     = (*SeatRepository)(nil)
	_ repository.BookingRepository  = (*BookingRepository)(nil)
)
