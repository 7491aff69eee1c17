package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/airtech/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	FindActiveByID(ctx context.Context, id int64) (*domain.Booking, error)
	FindAllByID(ctx context.Context, id int64) (*domain.Booking, error)
	// LockActiveByID loads the booking and locks its row until the surrounding transaction ends.
	LockActiveByID(ctx context.Context, id int64) (*domain.Booking, error)
	ListActive(ctx context.Context, filter domain.BookingFilter, page domain.Page) (domain.PageResult[domain.Booking], error)
	ListUnassigned(ctx context.Context, originID, destinationID *int64, travelDate *time.Time, limit int) ([]domain.Booking, error)
	ListForTravelDate(ctx context.Context, date time.Time) ([]domain.Booking, error)
	CountActiveBySeat(ctx context.Context, seatID int64) (int, error)
	AssignFlight(ctx context.Context, bookingIDs []int64, flightID int64) (int64, error)
	Update(ctx context.Context, booking *domain.Booking) error
	SoftDelete(ctx context.Context, id int64) error
	HardDelete(ctx context.Context, id int64) error
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingSelect = `SELECT b.id, b.booked_by, b.flight_id, b.seat_id, b.origin_id, b.destination_id, b.travel_date,
	b.created_at, b.updated_at, b.deleted_at,
	u.email, u.first_name, u.last_name,
	o.country, o.city, o.airport,
	d.country, d.city, d.airport,
	f.name, f.departure_time, f.arrival_time, f.gate,
	s.seat_row, s.seat_letter, s.class_group, s.booked
FROM bookings b
JOIN users u ON u.id = b.booked_by
LEFT JOIN locations o ON o.id = b.origin_id
LEFT JOIN locations d ON d.id = b.destination_id
LEFT JOIN flights f ON f.id = b.flight_id
LEFT JOIN seats s ON s.id = b.seat_id`

func scanBooking(row scanner) (*domain.Booking, error) {
	var (
		b                         domain.Booking
		oCountry, oCity, oAirport *string
		dCountry, dCity, dAirport *string
		flightName, gate          *string
		departure, arrival        *time.Time
		seatRow                   *int
		seatLetter, classGroup    *string
		seatBooked                *bool
	)
	if err := row.Scan(&b.ID, &b.BookedByID, &b.FlightID, &b.SeatID, &b.OriginID, &b.DestinationID, &b.TravelDate,
		&b.CreatedAt, &b.UpdatedAt, &b.DeletedAt,
		&b.BookedBy.Email, &b.BookedBy.FirstName, &b.BookedBy.LastName,
		&oCountry, &oCity, &oAirport,
		&dCountry, &dCity, &dAirport,
		&flightName, &departure, &arrival, &gate,
		&seatRow, &seatLetter, &classGroup, &seatBooked); err != nil {
		return nil, notFound(err)
	}

	b.BookedBy.ID = b.BookedByID
	b.Origin = joinedLocation(b.OriginID, oCountry, oCity, oAirport)
	b.Destination = joinedLocation(b.DestinationID, dCountry, dCity, dAirport)
	if b.FlightID != nil && flightName != nil {
		b.Flight = &domain.Flight{
			ID:            *b.FlightID,
			Name:          *flightName,
			DepartureTime: departure,
			ArrivalTime:   arrival,
			Gate:          deref(gate),
			OriginID:      b.OriginID,
			DestinationID: b.DestinationID,
		}
	}
	if b.SeatID != nil && seatRow != nil {
		b.Seat = &domain.Seat{
			ID:         *b.SeatID,
			Row:        *seatRow,
			Letter:     deref(seatLetter),
			ClassGroup: deref(classGroup),
			Booked:     seatBooked != nil && *seatBooked,
			FlightName: deref(flightName),
		}
		if b.FlightID != nil {
			b.Seat.FlightID = *b.FlightID
		}
	}
	return &b, nil
}

func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	err := conn(ctx, r.db).QueryRow(ctx, `INSERT INTO bookings (booked_by, flight_id, seat_id, origin_id, destination_id, travel_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		booking.BookedByID, booking.FlightID, booking.SeatID, booking.OriginID, booking.DestinationID, booking.TravelDate).
		Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
	return duplicate(err)
}

func (r *PGBookingRepository) FindActiveByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return scanBooking(conn(ctx, r.db).QueryRow(ctx, bookingSelect+` WHERE b.id=$1 AND b.deleted_at IS NULL`, id))
}

func (r *PGBookingRepository) FindAllByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return scanBooking(conn(ctx, r.db).QueryRow(ctx, bookingSelect+` WHERE b.id=$1`, id))
}

func (r *PGBookingRepository) LockActiveByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return scanBooking(conn(ctx, r.db).QueryRow(ctx, bookingSelect+` WHERE b.id=$1 AND b.deleted_at IS NULL FOR UPDATE OF b`, id))
}

func (r *PGBookingRepository) ListActive(ctx context.Context, filter domain.BookingFilter, page domain.Page) (domain.PageResult[domain.Booking], error) {
	result := domain.PageResult[domain.Booking]{PageSize: page.Size, Items: make([]domain.Booking, 0)}
	db := conn(ctx, r.db)

	conds := []string{"b.deleted_at IS NULL"}
	args := make([]any, 0, 5)
	if filter.BookedBy != 0 {
		args = append(args, filter.BookedBy)
		conds = append(conds, fmt.Sprintf("b.booked_by=$%d", len(args)))
	}
	if filter.FlightID != 0 {
		args = append(args, filter.FlightID)
		conds = append(conds, fmt.Sprintf("b.flight_id=$%d", len(args)))
	}
	if filter.TravelDate != nil {
		args = append(args, *filter.TravelDate)
		conds = append(conds, fmt.Sprintf("b.travel_date=$%d", len(args)))
	}
	where := " WHERE " + strings.Join(conds, " AND ")

	total, err := countRows(ctx, db, `SELECT count(*) FROM bookings b`+where, args...)
	if err != nil {
		return result, err
	}
	result.TotalCount = total

	n := len(args)
	args = append(args, page.Limit(), page.Offset())
	rows, err := db.Query(ctx, bookingSelect+where+` ORDER BY b.created_at, b.id`+limitOffset(n), args...)
	if err != nil {
		return result, err
	}
	defer rows.Close()

	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return result, err
		}
		result.Items = append(result.Items, *b)
	}
	return result, rows.Err()
}

func (r *PGBookingRepository) ListUnassigned(ctx context.Context, originID, destinationID *int64, travelDate *time.Time, limit int) ([]domain.Booking, error) {
	return r.list(ctx, bookingSelect+` WHERE b.deleted_at IS NULL AND b.flight_id IS NULL
		AND b.origin_id IS NOT DISTINCT FROM $1 AND b.destination_id IS NOT DISTINCT FROM $2
		AND b.travel_date IS NOT DISTINCT FROM $3
		ORDER BY b.created_at, b.id LIMIT $4 FOR UPDATE OF b`,
		originID, destinationID, travelDate, limit)
}

func (r *PGBookingRepository) ListForTravelDate(ctx context.Context, date time.Time) ([]domain.Booking, error) {
	return r.list(ctx, bookingSelect+` WHERE b.deleted_at IS NULL AND b.travel_date=$1 ORDER BY b.id`, date)
}

func (r *PGBookingRepository) list(ctx context.Context, sql string, args ...any) ([]domain.Booking, error) {
	rows, err := conn(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (r *PGBookingRepository) CountActiveBySeat(ctx context.Context, seatID int64) (int, error) {
	return countRows(ctx, conn(ctx, r.db), `SELECT count(*) FROM bookings WHERE seat_id=$1 AND deleted_at IS NULL`, seatID)
}

func (r *PGBookingRepository) AssignFlight(ctx context.Context, bookingIDs []int64, flightID int64) (int64, error) {
	if len(bookingIDs) == 0 {
		return 0, nil
	}
	tag, err := conn(ctx, r.db).Exec(ctx, `UPDATE bookings SET flight_id=$1, updated_at=now() WHERE id = ANY($2) AND flight_id IS NULL AND deleted_at IS NULL`,
		flightID, bookingIDs)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *PGBookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	err := conn(ctx, r.db).QueryRow(ctx, `UPDATE bookings
		SET flight_id=$2, seat_id=$3, origin_id=$4, destination_id=$5, travel_date=$6, updated_at=now()
		WHERE id=$1 AND deleted_at IS NULL
		RETURNING updated_at`,
		booking.ID, booking.FlightID, booking.SeatID, booking.OriginID, booking.DestinationID, booking.TravelDate).
		Scan(&booking.UpdatedAt)
	return duplicate(notFound(err))
}

func (r *PGBookingRepository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := conn(ctx, r.db).Exec(ctx, `UPDATE bookings SET deleted_at=now() WHERE id=$1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PGBookingRepository) HardDelete(ctx context.Context, id int64) error {
	_, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM bookings WHERE id=$1`, id)
	return err
}

var _ BookingRepository = (*PGBookingRepository)(nil)
