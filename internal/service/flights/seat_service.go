package flights

import (
	"context"
	"errors"
	"fmt"
	"unicode"

	"github.com/Domenick1991/airtech/internal/domain"
	"github.com/Domenick1991/airtech/internal/repository"
	"github.com/sirupsen/logrus"
)

const msgSeatLetter = "Seat letter must be a single letter."

type SeatUseCase interface {
	Create(ctx context.Context, flightID int64, input domain.SeatRef) (*domain.Seat, error)
	BulkCreate(ctx context.Context, flightID int64, input BulkSeatInput) ([]domain.Seat, error)
	List(ctx context.Context, flightID int64, page domain.Page) (domain.PageResult[domain.Seat], error)
	ListAvailable(ctx context.Context, flightID int64, classGroup string, page domain.Page) (domain.PageResult[domain.Seat], error)
	Get(ctx context.Context, flightID, seatID int64) (*domain.Seat, error)
}

type BulkSeatInput struct {
	Rows       []int
	Letters    []string
	ClassGroup string
}

type SeatService struct {
	repo    repository.SeatRepository
	flights repository.FlightRepository
	tx      repository.Transactor
	log     logrus.FieldLogger
}

func NewSeatService(repo repository.SeatRepository, flights repository.FlightRepository, tx repository.Transactor, log logrus.FieldLogger) *SeatService {
	return &SeatService{repo: repo, flights: flights, tx: tx, log: log}
}

func (s *SeatService) Create(ctx context.Context, flightID int64, input domain.SeatRef) (*domain.Seat, error) {
	flight, err := s.flight(ctx, flightID)
	if err != nil {
		return nil, err
	}
	seat, err := s.create(ctx, flight, input)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"flight_id": flightID, "seat": seat.Label()}).Info("seat created")
	return seat, nil
}

// BulkCreate adds every row/letter combination to the flight. One clash
// fails the whole batch.
func (s *SeatService) BulkCreate(ctx context.Context, flightID int64, input BulkSeatInput) ([]domain.Seat, error) {
	flight, err := s.flight(ctx, flightID)
	if err != nil {
		return nil, err
	}

	refs := expand(input)
	seats := make([]domain.Seat, 0, len(refs))
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		for _, ref := range refs {
			seat, err := s.create(ctx, flight, ref)
			if err != nil {
				return err
			}
			seats = append(seats, *seat)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"flight_id": flightID, "seats": len(seats)}).Info("seats created")
	return seats, nil
}

func (s *SeatService) List(ctx context.Context, flightID int64, page domain.Page) (domain.PageResult[domain.Seat], error) {
	if _, err := s.flight(ctx, flightID); err != nil {
		return domain.PageResult[domain.Seat]{}, err
	}
	return s.repo.ListActiveByFlight(ctx, flightID, page)
}

// ListAvailable lists the flight's unbooked seats. An empty classGroup
// matches every class.
func (s *SeatService) ListAvailable(ctx context.Context, flightID int64, classGroup string, page domain.Page) (domain.PageResult[domain.Seat], error) {
	if _, err := s.flight(ctx, flightID); err != nil {
		return domain.PageResult[domain.Seat]{}, err
	}
	if classGroup != "" {
		classGroup = domain.NormalizeClassGroup(classGroup)
	}
	return s.repo.ListViable(ctx, flightID, classGroup, page)
}

func (s *SeatService) Get(ctx context.Context, flightID, seatID int64) (*domain.Seat, error) {
	seat, err := s.repo.FindActiveByID(ctx, flightID, seatID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NotFound()
	}
	return seat, err
}

func (s *SeatService) create(ctx context.Context, flight *domain.Flight, ref domain.SeatRef) (*domain.Seat, error) {
	seat := &domain.Seat{
		FlightID:   flight.ID,
		FlightName: flight.Name,
		Row:        ref.Row,
		Letter:     domain.NormalizeSeatLetter(ref.Letter),
		ClassGroup: domain.NormalizeClassGroup(ref.ClassGroup),
	}
	if err := validateSeat(seat); err != nil {
		return nil, err
	}

	_, err := s.repo.FindActiveByPosition(ctx, flight.ID, seat.Row, seat.Letter)
	switch {
	case err == nil:
		return nil, seatExists(seat)
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	if err := s.repo.Create(ctx, seat); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, seatExists(seat).Wrap(err)
		}
		return nil, fmt.Errorf("create seat %s: %w", seat.Label(), err)
	}
	return seat, nil
}

func (s *SeatService) flight(ctx context.Context, id int64) (*domain.Flight, error) {
	flight, err := s.flights.FindActiveByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NotFound()
	}
	return flight, err
}

func validateSeat(seat *domain.Seat) error {
	fields := map[string][]string{}
	if seat.Row < 1 {
		fields["row"] = []string{"Ensure this value is greater than or equal to 1."}
	}
	letters := []rune(seat.Letter)
	if len(letters) != 1 || !unicode.IsLetter(letters[0]) {
		fields["letter"] = []string{msgSeatLetter}
	}
	if len(fields) > 0 {
		return domain.Validation(fields)
	}
	return nil
}

func seatExists(seat *domain.Seat) *domain.Error {
	return domain.Validationf("Seat %s already exists.", seat.Label())
}

// expand builds the row x letter product, dropping repeated combinations.
func expand(input BulkSeatInput) []domain.SeatRef {
	seen := make(map[domain.SeatRef]bool)
	refs := make([]domain.SeatRef, 0, len(input.Rows)*len(input.Letters))
	for _, row := range input.Rows {
		for _, letter := range input.Letters {
			ref := domain.SeatRef{Row: row, Letter: domain.NormalizeSeatLetter(letter), ClassGroup: input.ClassGroup}
			if seen[ref] {
				continue
			}
			seen[ref] = true
			refs = append(refs, ref)
		}
	}
	return refs
}

var _ SeatUseCase = (*SeatService)(nil)
