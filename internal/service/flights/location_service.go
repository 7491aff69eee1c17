package flights

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/airtech/internal/cache"
	"github.com/Domenick1991/airtech/internal/domain"
	"github.com/Domenick1991/airtech/internal/repository"
	"github.com/sirupsen/logrus"
)

type LocationUseCase interface {
	Create(ctx context.Context, ref domain.LocationRef) (*domain.Location, error)
	List(ctx context.Context, page domain.Page) (domain.PageResult[domain.Location], error)
	Get(ctx context.Context, id int64) (*domain.Location, error)
	Update(ctx context.Context, id int64, patch LocationPatch) (*domain.Location, error)
	Resolve(ctx context.Context, ref domain.LocationRef) (*domain.Location, error)
}

type LocationPatch struct {
	Country *string
	City    *string
	Airport *string
}

type LocationService struct {
	repo  repository.LocationRepository
	cache listCache
	log   logrus.FieldLogger
}

func NewLocationService(repo repository.LocationRepository, c Cache, log logrus.FieldLogger) *LocationService {
	return &LocationService{repo: repo, cache: listCache{cache: c, log: log}, log: log}
}

func (s *LocationService) Create(ctx context.Context, ref domain.LocationRef) (*domain.Location, error) {
	ref = domain.NormalizeLocation(ref)
	if err := s.ensureUnique(ctx, ref); err != nil {
		return nil, err
	}

	location := &domain.Location{Country: ref.Country, City: ref.City, Airport: ref.Airport}
	if err := s.repo.Create(ctx, location); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.Validation(domain.MsgLocationExists).Wrap(err)
		}
		return nil, fmt.Errorf("create location: %w", err)
	}

	s.cache.drop(ctx, cache.LocationsPrefix())
	s.log.WithField("location_id", location.ID).Info("location created")
	return location, nil
}

func (s *LocationService) List(ctx context.Context, page domain.Page) (domain.PageResult[domain.Location], error) {
	key := cache.LocationsKey(page.Number, page.Size)

	var result domain.PageResult[domain.Location]
	if s.cache.load(ctx, key, &result) {
		return result, nil
	}

	result, err := s.repo.List(ctx, page)
	if err != nil {
		return result, err
	}
	s.cache.store(ctx, key, result)
	return result, nil
}

func (s *LocationService) Get(ctx context.Context, id int64) (*domain.Location, error) {
	location, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NotFound()
	}
	return location, err
}

func (s *LocationService) Update(ctx context.Context, id int64, patch LocationPatch) (*domain.Location, error) {
	location, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	ref := location.Ref()
	if patch.Country != nil {
		ref.Country = *patch.Country
	}
	if patch.City != nil {
		ref.City = *patch.City
	}
	if patch.Airport != nil {
		ref.Airport = *patch.Airport
	}
	ref = domain.NormalizeLocation(ref)

	if ref != location.Ref() {
		if err := s.ensureUnique(ctx, ref); err != nil {
			return nil, err
		}
	}

	location.Country, location.City, location.Airport = ref.Country, ref.City, ref.Airport
	if err := s.repo.Update(ctx, location); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.Validation(domain.MsgLocationExists).Wrap(err)
		}
		return nil, fmt.Errorf("update location %d: %w", id, err)
	}

	// Flight pages embed their locations.
	s.cache.drop(ctx, cache.LocationsPrefix(), cache.FlightsPrefix())
	return location, nil
}

// Resolve looks a location up by its normalized natural key. It returns
// domain.ErrNotFound for unknown locations.
func (s *LocationService) Resolve(ctx context.Context, ref domain.LocationRef) (*domain.Location, error) {
	return s.repo.FindByRef(ctx, domain.NormalizeLocation(ref))
}

func (s *LocationService) ensureUnique(ctx context.Context, ref domain.LocationRef) error {
	_, err := s.repo.FindByRef(ctx, ref)
	switch {
	case err == nil:
		return domain.Validation(domain.MsgLocationExists)
	case errors.Is(err, domain.ErrNotFound):
		return nil
	default:
		return err
	}
}

var _ LocationUseCase = (*LocationService)(nil)
