package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/airtech/internal/domain"
	"github.com/Domenick1991/airtech/internal/kafka"
	"github.com/Domenick1991/airtech/internal/metrics"
	"github.com/Domenick1991/airtech/internal/repository"
	"github.com/sirupsen/logrus"
)

const msgUnknownBooker = "Make sure the user you are trying to book for is maintained in the system."

type BookingUseCase interface {
	Create(ctx context.Context, actor *domain.User, input BookingInput) (*domain.Booking, error)
	Update(ctx context.Context, actor *domain.User, id int64, patch BookingInput) (*domain.Booking, error)
	Delete(ctx context.Context, actor *domain.User, id int64) error
	Get(ctx context.Context, actor *domain.User, id int64) (*domain.Booking, error)
	List(ctx context.Context, actor *domain.User, travelDate *time.Time, page domain.Page) (domain.PageResult[domain.Booking], error)
	ListForFlight(ctx context.Context, flightID int64, page domain.Page) (domain.PageResult[domain.Booking], error)
	CreateForFlight(ctx context.Context, flightID int64, input FlightBookingInput) (*domain.Booking, error)
	AssignFlight(ctx context.Context, flightID int64) (int64, error)
	DueForReminder(ctx context.Context, now time.Time) ([]domain.Booking, error)
}

// Producer publishes booking events once the change is committed.
type Producer interface {
	Publish(ctx context.Context, event kafka.BookingEvent) error
}

// SeatChoice picks a seat of the booking's flight by position. ClassGroup,
// when set, must match the seat's class.
type SeatChoice struct {
	Row        int
	Letter     string
	ClassGroup string
}

// BookingInput carries a new booking, or the fields of an update. On update,
// nil fields keep their current value.
type BookingInput struct {
	Origin      *domain.LocationRef
	Destination *domain.LocationRef
	TravelDate  *time.Time
	Flight      *string
	Seat        *SeatChoice
}

type FlightBookingInput struct {
	Email string
	Seat  *SeatChoice
}

type BookingService struct {
	bookings  repository.BookingRepository
	flights   repository.FlightRepository
	seats     repository.SeatRepository
	locations repository.LocationRepository
	users     repository.UserRepository
	tx        repository.Transactor
	producer  Producer
	now       func() time.Time
	log       logrus.FieldLogger
}

type BookingServiceOption func(*BookingService)

func WithProducer(producer Producer) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	flights repository.FlightRepository,
	seats repository.SeatRepository,
	locations repository.LocationRepository,
	users repository.UserRepository,
	tx repository.Transactor,
	log logrus.FieldLogger,
	opts ...BookingServiceOption,
) *BookingService {
	s := &BookingService{
		bookings:  bookings,
		flights:   flights,
		seats:     seats,
		locations: locations,
		users:     users,
		tx:        tx,
		now:       time.Now,
		log:       log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *BookingService) Create(ctx context.Context, actor *domain.User, input BookingInput) (*domain.Booking, error) {
	booking := &domain.Booking{BookedByID: actor.ID, TravelDate: dateOnly(input.TravelDate)}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		origin, destination, err := s.route(ctx, input.Origin, input.Destination)
		if err != nil {
			return err
		}
		booking.OriginID, booking.DestinationID = origin, destination

		var flight *domain.Flight
		if input.Flight != nil {
			if flight, err = s.flightByName(ctx, *input.Flight, booking.TravelDate); err != nil {
				return err
			}
			if err := checkFlight(flight, booking); err != nil {
				return err
			}
			booking.FlightID = &flight.ID
		}

		if input.Seat != nil {
			seat, err := s.claim(ctx, flight, *input.Seat)
			if err != nil {
				return err
			}
			booking.SeatID = &seat.ID
		}

		return s.write(ctx, booking, s.bookings.Create)
	})
	if err != nil {
		return nil, err
	}

	metrics.BookingsCreated.Inc()
	s.log.WithFields(logrus.Fields{"booking_id": booking.ID, "user_id": actor.ID}).Info("booking created")
	return s.committed(ctx, kafka.EventBookingCreated, booking.ID)
}

// Update applies the non-nil fields of patch. A new seat is claimed only
// after the previous one is released, both inside one transaction.
func (s *BookingService) Update(ctx context.Context, actor *domain.User, id int64, patch BookingInput) (*domain.Booking, error) {
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		booking, err := s.owned(ctx, actor, id, s.bookings.LockActiveByID)
		if err != nil {
			return err
		}
		previousFlight, previousSeat := booking.FlightID, booking.SeatID

		if patch.Origin != nil || patch.Destination != nil {
			origin, destination, err := s.route(ctx, patch.Origin, patch.Destination)
			if err != nil {
				return err
			}
			if patch.Origin != nil {
				booking.OriginID = origin
			}
			if patch.Destination != nil {
				booking.DestinationID = destination
			}
			if booking.OriginID != nil && sameID(booking.OriginID, booking.DestinationID) {
				return domain.Validation(domain.MsgSameOriginBooking)
			}
		}
		if patch.TravelDate != nil {
			booking.TravelDate = dateOnly(patch.TravelDate)
		}

		var flight *domain.Flight
		switch {
		case patch.Flight != nil:
			if flight, err = s.flightByName(ctx, *patch.Flight, booking.TravelDate); err != nil {
				return err
			}
		case booking.FlightID != nil:
			if flight, err = s.flights.FindAllByID(ctx, *booking.FlightID); err != nil {
				return fmt.Errorf("load flight %d: %w", *booking.FlightID, err)
			}
		}
		if flight != nil {
			if patch.Flight != nil || patch.Origin != nil || patch.Destination != nil || patch.TravelDate != nil {
				if err := checkFlight(flight, booking); err != nil {
					return err
				}
			}
			booking.FlightID = &flight.ID
		}
		flightChanged := !sameID(previousFlight, booking.FlightID)

		switch {
		case patch.Seat != nil:
			if err := s.reseat(ctx, booking, flight, previousSeat, *patch.Seat); err != nil {
				return err
			}
		case flightChanged && previousSeat != nil:
			if err := s.seats.Release(ctx, *previousSeat); err != nil {
				return fmt.Errorf("release seat %d: %w", *previousSeat, err)
			}
			booking.SeatID = nil
		}

		return s.write(ctx, booking, s.bookings.Update)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"booking_id": id, "user_id": actor.ID}).Info("booking updated")
	return s.committed(ctx, kafka.EventBookingUpdated, id)
}

// Delete soft-deletes the booking and frees its seat.
func (s *BookingService) Delete(ctx context.Context, actor *domain.User, id int64) error {
	var cancelled *domain.Booking
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		booking, err := s.owned(ctx, actor, id, s.bookings.LockActiveByID)
		if err != nil {
			return err
		}
		if err := s.bookings.SoftDelete(ctx, id); err != nil {
			return fmt.Errorf("delete booking %d: %w", id, err)
		}
		if booking.SeatID != nil {
			if err := s.seats.Release(ctx, *booking.SeatID); err != nil {
				return fmt.Errorf("release seat %d: %w", *booking.SeatID, err)
			}
		}
		cancelled = booking
		return nil
	})
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"booking_id": id, "user_id": actor.ID}).Info("booking cancelled")
	s.publish(ctx, kafka.EventBookingCancelled, cancelled)
	return nil
}

// Get hides other users' bookings from non-staff callers.
func (s *BookingService) Get(ctx context.Context, actor *domain.User, id int64) (*domain.Booking, error) {
	return s.owned(ctx, actor, id, s.bookings.FindActiveByID)
}

func (s *BookingService) List(ctx context.Context, actor *domain.User, travelDate *time.Time, page domain.Page) (domain.PageResult[domain.Booking], error) {
	filter := domain.BookingFilter{TravelDate: dateOnly(travelDate)}
	if !actor.IsStaff {
		filter.BookedBy = actor.ID
	}
	return s.bookings.ListActive(ctx, filter, page)
}

func (s *BookingService) ListForFlight(ctx context.Context, flightID int64, page domain.Page) (domain.PageResult[domain.Booking], error) {
	if _, err := s.flight(ctx, flightID); err != nil {
		return domain.PageResult[domain.Booking]{}, err
	}
	return s.bookings.ListActive(ctx, domain.BookingFilter{FlightID: flightID}, page)
}

// CreateForFlight books the flight on behalf of the user with the given
// e-mail. Route and travel date are taken from the flight.
func (s *BookingService) CreateForFlight(ctx context.Context, flightID int64, input FlightBookingInput) (*domain.Booking, error) {
	booking := &domain.Booking{}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		flight, err := s.flight(ctx, flightID)
		if err != nil {
			return err
		}

		user, err := s.users.FindActiveByEmail(ctx, domain.NormalizeEmail(input.Email))
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Validation(msgUnknownBooker)
		}
		if err != nil {
			return err
		}

		booking.BookedByID = user.ID
		booking.FlightID = &flight.ID
		booking.OriginID, booking.DestinationID = flight.OriginID, flight.DestinationID
		if flight.DepartureTime != nil {
			booking.TravelDate = dateOnly(flight.DepartureTime)
		}

		if input.Seat != nil {
			seat, err := s.claim(ctx, flight, *input.Seat)
			if err != nil {
				return err
			}
			booking.SeatID = &seat.ID
		}

		return s.write(ctx, booking, s.bookings.Create)
	})
	if err != nil {
		return nil, err
	}

	metrics.BookingsCreated.Inc()
	s.log.WithFields(logrus.Fields{"booking_id": booking.ID, "flight_id": flightID}).Info("flight booking created")
	return s.committed(ctx, kafka.EventBookingCreated, booking.ID)
}

// AssignFlight attaches the flight to the oldest flight-less bookings on its
// route and date, one per free seat.
func (s *BookingService) AssignFlight(ctx context.Context, flightID int64) (int64, error) {
	var assigned []domain.Booking
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		flight, err := s.flight(ctx, flightID)
		if err != nil {
			return err
		}

		free, err := s.seats.CountViable(ctx, flightID)
		if err != nil {
			return err
		}
		if free == 0 {
			return nil
		}

		var travelDate *time.Time
		if flight.DepartureTime != nil {
			travelDate = dateOnly(flight.DepartureTime)
		}
		candidates, err := s.bookings.ListUnassigned(ctx, flight.OriginID, flight.DestinationID, travelDate, free)
		if err != nil {
			return err
		}
		if len(candidates) == 0 {
			return nil
		}

		ids := make([]int64, 0, len(candidates))
		for _, b := range candidates {
			ids = append(ids, b.ID)
		}
		if _, err := s.bookings.AssignFlight(ctx, ids, flightID); err != nil {
			return fmt.Errorf("assign flight %d: %w", flightID, err)
		}
		assigned = candidates
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, b := range assigned {
		if _, err := s.committed(ctx, kafka.EventBookingUpdated, b.ID); err != nil {
			s.log.WithError(err).WithField("booking_id", b.ID).Warn("failed to reload assigned booking")
		}
	}
	s.log.WithFields(logrus.Fields{"flight_id": flightID, "assigned": len(assigned)}).Info("flight assigned to bookings")
	return int64(len(assigned)), nil
}

// DueForReminder lists the active bookings travelling the day after now.
func (s *BookingService) DueForReminder(ctx context.Context, now time.Time) ([]domain.Booking, error) {
	y, m, d := now.UTC().Date()
	tomorrow := time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC)
	return s.bookings.ListForTravelDate(ctx, tomorrow)
}

func (s *BookingService) route(ctx context.Context, origin, destination *domain.LocationRef) (*int64, *int64, error) {
	var originID, destinationID *int64
	if origin != nil {
		loc, err := s.locations.FindByRef(ctx, domain.NormalizeLocation(*origin))
		if err != nil {
			return nil, nil, lookupError(err, domain.MsgOriginUnknown)
		}
		originID = &loc.ID
	}
	if destination != nil {
		loc, err := s.locations.FindByRef(ctx, domain.NormalizeLocation(*destination))
		if err != nil {
			return nil, nil, lookupError(err, domain.MsgDestinationUnknown)
		}
		destinationID = &loc.ID
	}
	if originID != nil && sameID(originID, destinationID) {
		return nil, nil, domain.Validation(domain.MsgSameOriginBooking)
	}
	return originID, destinationID, nil
}

// flightByName resolves a flight reference. Several active flights may share
// a name; the one departing on the travel date wins, then the first listed.
func (s *BookingService) flightByName(ctx context.Context, name string, travelDate *time.Time) (*domain.Flight, error) {
	name = domain.NormalizeFlightName(name)
	candidates, err := s.flights.FindActiveByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, domain.Validation(map[string][]string{
			"flight": {fmt.Sprintf("Object with name=%s does not exist.", name)},
		})
	}
	if travelDate != nil {
		for i := range candidates {
			if candidates[i].DepartureTime != nil && candidates[i].DepartsOn(*travelDate) {
				return &candidates[i], nil
			}
		}
	}
	return &candidates[0], nil
}

func (s *BookingService) flight(ctx context.Context, id int64) (*domain.Flight, error) {
	flight, err := s.flights.FindActiveByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NotFound()
	}
	return flight, err
}

// seat resolves a seat choice on flight without claiming it.
func (s *BookingService) seat(ctx context.Context, flight *domain.Flight, choice SeatChoice) (*domain.Seat, error) {
	if flight == nil {
		return nil, domain.Validation(domain.MsgInvalidSeat)
	}
	seat, err := s.seats.FindActiveByPosition(ctx, flight.ID, choice.Row, domain.NormalizeSeatLetter(choice.Letter))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.Validation(domain.MsgInvalidSeat)
	}
	if err != nil {
		return nil, err
	}
	if choice.ClassGroup != "" && domain.NormalizeClassGroup(choice.ClassGroup) != seat.ClassGroup {
		return nil, domain.Validation(domain.MsgInvalidSeat)
	}
	return seat, nil
}

// claim marks the chosen seat booked if it is still viable.
func (s *BookingService) claim(ctx context.Context, flight *domain.Flight, choice SeatChoice) (*domain.Seat, error) {
	seat, err := s.seat(ctx, flight, choice)
	if err != nil {
		return nil, err
	}
	if err := s.take(ctx, seat); err != nil {
		return nil, err
	}
	return seat, nil
}

func (s *BookingService) take(ctx context.Context, seat *domain.Seat) error {
	if err := s.seats.Claim(ctx, seat.ID, seat.FlightID, seat.ClassGroup); err != nil {
		if errors.Is(err, domain.ErrSeatUnavailable) {
			metrics.SeatClaimConflicts.Inc()
			return domain.Validation(domain.MsgInvalidSeat).Wrap(err)
		}
		return fmt.Errorf("claim seat %d: %w", seat.ID, err)
	}
	seat.Booked = true
	return nil
}

func (s *BookingService) reseat(ctx context.Context, booking *domain.Booking, flight *domain.Flight, previous *int64, choice SeatChoice) error {
	seat, err := s.seat(ctx, flight, choice)
	if err != nil {
		return err
	}
	if previous != nil && *previous == seat.ID {
		return nil
	}
	if previous != nil {
		if err := s.seats.Release(ctx, *previous); err != nil {
			return fmt.Errorf("release seat %d: %w", *previous, err)
		}
	}
	if err := s.take(ctx, seat); err != nil {
		return err
	}
	booking.SeatID = &seat.ID
	return nil
}

func (s *BookingService) owned(ctx context.Context, actor *domain.User, id int64, load func(context.Context, int64) (*domain.Booking, error)) (*domain.Booking, error) {
	booking, err := load(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NotFound()
	}
	if err != nil {
		return nil, err
	}
	if !actor.IsStaff && booking.BookedByID != actor.ID {
		return nil, domain.NotFound()
	}
	return booking, nil
}

func (s *BookingService) write(ctx context.Context, booking *domain.Booking, save func(context.Context, *domain.Booking) error) error {
	err := save(ctx, booking)
	if errors.Is(err, domain.ErrDuplicate) {
		metrics.SeatClaimConflicts.Inc()
		return domain.Validation(domain.MsgInvalidSeat).Wrap(err)
	}
	if err != nil {
		return fmt.Errorf("save booking: %w", err)
	}
	return nil
}

// committed reloads the joined view of a written booking and announces it.
func (s *BookingService) committed(ctx context.Context, eventType string, id int64) (*domain.Booking, error) {
	booking, err := s.bookings.FindActiveByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load booking %d: %w", id, err)
	}
	s.publish(ctx, eventType, booking)
	return booking, nil
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) {
	if s.producer == nil || booking == nil {
		return
	}
	event := kafka.NewBookingEvent(eventType, booking, s.now())
	if err := s.producer.Publish(ctx, event); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"booking_id": booking.ID, "type": eventType}).Warn("failed to publish booking event")
	}
}

func checkFlight(flight *domain.Flight, booking *domain.Booking) error {
	if !flight.Serves(booking.OriginID, booking.DestinationID) {
		return domain.Validation(domain.MsgFlightRoute)
	}
	if flight.DepartureTime != nil && (booking.TravelDate == nil || !flight.DepartsOn(*booking.TravelDate)) {
		return domain.Validation(domain.MsgFlightDate)
	}
	return nil
}

func lookupError(err error, msg string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Validation(msg)
	}
	return err
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func dateOnly(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	y, m, d := t.UTC().Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &day
}

var _ BookingUseCase = (*BookingService)(nil)
