package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/airtech/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FlightRepository interface {
	Create(ctx context.Context, flight *domain.Flight) error
	FindActiveByID(ctx context.Context, id int64) (*domain.Flight, error)
	FindAllByID(ctx context.Context, id int64) (*domain.Flight, error)
	FindActiveByName(ctx context.Context, name string) ([]domain.Flight, error)
	// NameTaken reports whether an active flight other than excludeID clashes
	// with name and departure. Unscheduled flights clash with every flight of
	// the same name.
	NameTaken(ctx context.Context, name string, departure *time.Time, excludeID int64) (bool, error)
	ListActive(ctx context.Context, page domain.Page) (domain.PageResult[domain.Flight], error)
	Update(ctx context.Context, flight *domain.Flight) error
	SoftDelete(ctx context.Context, id int64) error
	HardDelete(ctx context.Context, id int64) error
}

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

const flightSelect = `SELECT f.id, f.name, f.origin_id, f.destination_id, f.departure_time, f.arrival_time, f.gate,
	f.created_at, f.updated_at, f.deleted_at,
	u.id, u.email, u.first_name, u.last_name,
	o.country, o.city, o.airport,
	d.country, d.city, d.airport
FROM flights f
JOIN users u ON u.id = f.created_by
LEFT JOIN locations o ON o.id = f.origin_id
LEFT JOIN locations d ON d.id = f.destination_id`

func scanFlight(row scanner) (*domain.Flight, error) {
	var (
		f                         domain.Flight
		oCountry, oCity, oAirport *string
		dCountry, dCity, dAirport *string
	)
	if err := row.Scan(&f.ID, &f.Name, &f.OriginID, &f.DestinationID, &f.DepartureTime, &f.ArrivalTime, &f.Gate,
		&f.CreatedAt, &f.UpdatedAt, &f.DeletedAt,
		&f.CreatedBy.ID, &f.CreatedBy.Email, &f.CreatedBy.FirstName, &f.CreatedBy.LastName,
		&oCountry, &oCity, &oAirport,
		&dCountry, &dCity, &dAirport); err != nil {
		return nil, notFound(err)
	}
	f.Origin = joinedLocation(f.OriginID, oCountry, oCity, oAirport)
	f.Destination = joinedLocation(f.DestinationID, dCountry, dCity, dAirport)
	return &f, nil
}

func joinedLocation(id *int64, country, city, airport *string) *domain.Location {
	if id == nil || country == nil {
		return nil
	}
	return &domain.Location{ID: *id, Country: *country, City: deref(city), Airport: deref(airport)}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (r *PGFlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	err := conn(ctx, r.db).QueryRow(ctx, `INSERT INTO flights (name, origin_id, destination_id, departure_time, arrival_time, gate, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		flight.Name, flight.OriginID, flight.DestinationID, flight.DepartureTime, flight.ArrivalTime, flight.Gate, flight.CreatedBy.ID).
		Scan(&flight.ID, &flight.CreatedAt, &flight.UpdatedAt)
	return duplicate(err)
}

func (r *PGFlightRepository) FindActiveByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return scanFlight(conn(ctx, r.db).QueryRow(ctx, flightSelect+` WHERE f.id=$1 AND f.deleted_at IS NULL`, id))
}

func (r *PGFlightRepository) FindAllByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return scanFlight(conn(ctx, r.db).QueryRow(ctx, flightSelect+` WHERE f.id=$1`, id))
}

func (r *PGFlightRepository) FindActiveByName(ctx context.Context, name string) ([]domain.Flight, error) {
	rows, err := conn(ctx, r.db).Query(ctx, flightSelect+` WHERE f.name=$1 AND f.deleted_at IS NULL ORDER BY f.departure_time NULLS LAST, f.id`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, *f)
	}
	return flights, rows.Err()
}

func (r *PGFlightRepository) NameTaken(ctx context.Context, name string, departure *time.Time, excludeID int64) (bool, error) {
	var taken bool
	err := conn(ctx, r.db).QueryRow(ctx, `SELECT EXISTS (
		SELECT 1 FROM flights
		WHERE name=$1 AND id<>$3 AND deleted_at IS NULL
		  AND (departure_time IS NULL OR $2::timestamptz IS NULL OR departure_time=$2)
	)`, name, departure, excludeID).Scan(&taken)
	return taken, err
}

func (r *PGFlightRepository) ListActive(ctx context.Context, page domain.Page) (domain.PageResult[domain.Flight], error) {
	result := domain.PageResult[domain.Flight]{PageSize: page.Size, Items: make([]domain.Flight, 0)}
	db := conn(ctx, r.db)

	total, err := countRows(ctx, db, `SELECT count(*) FROM flights WHERE deleted_at IS NULL`)
	if err != nil {
		return result, err
	}
	result.TotalCount = total

	rows, err := db.Query(ctx, flightSelect+` WHERE f.deleted_at IS NULL ORDER BY f.departure_time NULLS LAST, f.id LIMIT $1 OFFSET $2`, page.Limit(), page.Offset())
	if err != nil {
		return result, err
	}
	defer rows.Close()

	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return result, err
		}
		result.Items = append(result.Items, *f)
	}
	return result, rows.Err()
}

func (r *PGFlightRepository) Update(ctx context.Context, flight *domain.Flight) error {
	err := conn(ctx, r.db).QueryRow(ctx, `UPDATE flights
		SET name=$2, origin_id=$3, destination_id=$4, departure_time=$5, arrival_time=$6, gate=$7, updated_at=now()
		WHERE id=$1 AND deleted_at IS NULL
		RETURNING updated_at`,
		flight.ID, flight.Name, flight.OriginID, flight.DestinationID, flight.DepartureTime, flight.ArrivalTime, flight.Gate).
		Scan(&flight.UpdatedAt)
	return duplicate(notFound(err))
}

func (r *PGFlightRepository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := conn(ctx, r.db).Exec(ctx, `UPDATE flights SET deleted_at=now() WHERE id=$1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PGFlightRepository) HardDelete(ctx context.Context, id int64) error {
	_, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM flights WHERE id=$1`, id)
	return err
}

var _ FlightRepository = (*PGFlightRepository)(nil)
