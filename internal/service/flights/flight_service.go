package flights

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/airtech/internal/cache"
	"github.com/Domenick1991/airtech/internal/domain"
	"github.com/Domenick1991/airtech/internal/repository"
	"github.com/sirupsen/logrus"
)

const msgArrivalBeforeDeparture = "Flight arrival time must be after its departure time."

type FlightUseCase interface {
	Create(ctx context.Context, actor *domain.User, input FlightInput) (*domain.Flight, error)
	List(ctx context.Context, page domain.Page) (domain.PageResult[domain.Flight], error)
	Get(ctx context.Context, id int64) (*domain.Flight, error)
	Update(ctx context.Context, id int64, patch FlightPatch) (*domain.Flight, error)
	Delete(ctx context.Context, id int64) error
}

type FlightInput struct {
	Name          string
	Origin        *domain.LocationRef
	Destination   *domain.LocationRef
	DepartureTime *time.Time
	ArrivalTime   *time.Time
	Gate          string
}

// FlightPatch lists the flight fields an update may change. Nil fields are
// left as they are.
type FlightPatch struct {
	Name          *string
	Origin        *domain.LocationRef
	Destination   *domain.LocationRef
	DepartureTime *time.Time
	ArrivalTime   *time.Time
	Gate          *string
}

type FlightService struct {
	repo      repository.FlightRepository
	seats     repository.SeatRepository
	locations *LocationService
	tx        repository.Transactor
	cache     listCache
	log       logrus.FieldLogger
}

func NewFlightService(
	repo repository.FlightRepository,
	seats repository.SeatRepository,
	locations *LocationService,
	tx repository.Transactor,
	c Cache,
	log logrus.FieldLogger,
) *FlightService {
	return &FlightService{repo: repo, seats: seats, locations: locations, tx: tx, cache: listCache{cache: c, log: log}, log: log}
}

func (s *FlightService) Create(ctx context.Context, actor *domain.User, input FlightInput) (*domain.Flight, error) {
	flight := &domain.Flight{
		Name:          domain.NormalizeFlightName(input.Name),
		DepartureTime: input.DepartureTime,
		ArrivalTime:   input.ArrivalTime,
		Gate:          input.Gate,
		CreatedBy:     actor.Summary(),
	}
	if err := s.setRoute(ctx, flight, input.Origin, input.Destination); err != nil {
		return nil, err
	}
	if err := s.checkSchedule(ctx, flight); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, flight); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, nameClash(flight).Wrap(err)
		}
		return nil, fmt.Errorf("create flight: %w", err)
	}

	s.cache.drop(ctx, cache.FlightsPrefix())
	s.log.WithFields(logrus.Fields{"flight_id": flight.ID, "name": flight.Name, "created_by": actor.ID}).Info("flight created")
	return flight, nil
}

func (s *FlightService) List(ctx context.Context, page domain.Page) (domain.PageResult[domain.Flight], error) {
	key := cache.FlightsKey(page.Number, page.Size)

	var result domain.PageResult[domain.Flight]
	if s.cache.load(ctx, key, &result) {
		return result, nil
	}

	result, err := s.repo.ListActive(ctx, page)
	if err != nil {
		return result, err
	}
	s.cache.store(ctx, key, result)
	return result, nil
}

func (s *FlightService) Get(ctx context.Context, id int64) (*domain.Flight, error) {
	flight, err := s.repo.FindActiveByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NotFound()
	}
	return flight, err
}

func (s *FlightService) Update(ctx context.Context, id int64, patch FlightPatch) (*domain.Flight, error) {
	flight, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	scheduleChanged := false
	if patch.Name != nil {
		name := domain.NormalizeFlightName(*patch.Name)
		scheduleChanged = scheduleChanged || name != flight.Name
		flight.Name = name
	}
	if patch.DepartureTime != nil {
		scheduleChanged = true
		flight.DepartureTime = patch.DepartureTime
	}
	if patch.ArrivalTime != nil {
		flight.ArrivalTime = patch.ArrivalTime
	}
	if patch.Gate != nil {
		flight.Gate = *patch.Gate
	}
	if patch.Origin != nil || patch.Destination != nil {
		origin, destination := patch.Origin, patch.Destination
		if origin == nil && flight.Origin != nil {
			ref := flight.Origin.Ref()
			origin = &ref
		}
		if destination == nil && flight.Destination != nil {
			ref := flight.Destination.Ref()
			destination = &ref
		}
		if err := s.setRoute(ctx, flight, origin, destination); err != nil {
			return nil, err
		}
	}

	if scheduleChanged {
		if err := s.checkSchedule(ctx, flight); err != nil {
			return nil, err
		}
	} else if err := checkTimes(flight); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, flight); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, nameClash(flight).Wrap(err)
		}
		return nil, fmt.Errorf("update flight %d: %w", id, err)
	}

	s.cache.drop(ctx, cache.FlightsPrefix())
	return flight, nil
}

// Delete soft-deletes the flight and its seats together. Bookings on the
// flight are kept.
func (s *FlightService) Delete(ctx context.Context, id int64) error {
	var seats int64
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.SoftDelete(ctx, id); err != nil {
			return err
		}
		n, err := s.seats.SoftDeleteByFlight(ctx, id)
		seats = n
		return err
	})
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NotFound()
	}
	if err != nil {
		return fmt.Errorf("delete flight %d: %w", id, err)
	}

	s.cache.drop(ctx, cache.FlightsPrefix())
	s.log.WithFields(logrus.Fields{"flight_id": id, "seats": seats}).Info("flight deleted")
	return nil
}

func (s *FlightService) setRoute(ctx context.Context, flight *domain.Flight, origin, destination *domain.LocationRef) error {
	flight.Origin, flight.OriginID = nil, nil
	flight.Destination, flight.DestinationID = nil, nil

	if origin != nil {
		loc, err := s.locations.Resolve(ctx, *origin)
		if err != nil {
			return locationError(err)
		}
		flight.Origin, flight.OriginID = loc, &loc.ID
	}
	if destination != nil {
		loc, err := s.locations.Resolve(ctx, *destination)
		if err != nil {
			return locationError(err)
		}
		flight.Destination, flight.DestinationID = loc, &loc.ID
	}

	if flight.OriginID != nil && flight.DestinationID != nil && *flight.OriginID == *flight.DestinationID {
		return domain.Validation(domain.MsgSameOriginFlight)
	}
	return nil
}

func (s *FlightService) checkSchedule(ctx context.Context, flight *domain.Flight) error {
	if err := checkTimes(flight); err != nil {
		return err
	}
	taken, err := s.repo.NameTaken(ctx, flight.Name, flight.DepartureTime, flight.ID)
	if err != nil {
		return err
	}
	if taken {
		return nameClash(flight)
	}
	return nil
}

func checkTimes(flight *domain.Flight) error {
	if flight.DepartureTime != nil && flight.ArrivalTime != nil && !flight.ArrivalTime.After(*flight.DepartureTime) {
		return domain.Validation(msgArrivalBeforeDeparture)
	}
	return nil
}

func nameClash(flight *domain.Flight) *domain.Error {
	if flight.DepartureTime == nil {
		return domain.Validation(domain.MsgFlightExists)
	}
	return domain.Validation(domain.MsgFlightScheduleExists)
}

func locationError(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Validation(domain.MsgFlightLocationUnknown)
	}
	return err
}

var _ FlightUseCase = (*FlightService)(nil)
