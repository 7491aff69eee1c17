package repository

import (
	"context"

	"github.com/Domenick1991/airtech/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SeatRepository interface {
	Create(ctx context.Context, seat *domain.Seat) error
	FindActiveByID(ctx context.Context, flightID, seatID int64) (*domain.Seat, error)
	FindActiveByPosition(ctx context.Context, flightID int64, row int, letter string) (*domain.Seat, error)
	ListActiveByFlight(ctx context.Context, flightID int64, page domain.Page) (domain.PageResult[domain.Seat], error)
	ListAllByFlight(ctx context.Context, flightID int64) ([]domain.Seat, error)
	// ListViable lists unbooked active seats of a flight, optionally limited to one class group.
	ListViable(ctx context.Context, flightID int64, classGroup string, page domain.Page) (domain.PageResult[domain.Seat], error)
	CountViable(ctx context.Context, flightID int64) (int, error)
	// Claim books the seat only if it is still a viable seat of the flight and
	// class group. It returns domain.ErrSeatUnavailable otherwise.
	Claim(ctx context.Context, seatID, flightID int64, classGroup string) error
	Release(ctx context.Context, seatID int64) error
	SoftDeleteByFlight(ctx context.Context, flightID int64) (int64, error)
	HardDelete(ctx context.Context, id int64) error
}

type PGSeatRepository struct {
	db *pgxpool.Pool
}

func NewSeatRepository(db *pgxpool.Pool) SeatRepository {
	return &PGSeatRepository{db: db}
}

const seatSelect = `SELECT s.id, s.flight_id, f.name, s.seat_row, s.seat_letter, s.class_group, s.booked, s.created_at, s.updated_at, s.deleted_at
FROM seats s
JOIN flights f ON f.id = s.flight_id`

func scanSeat(row scanner) (*domain.Seat, error) {
	var s domain.Seat
	if err := row.Scan(&s.ID, &s.FlightID, &s.FlightName, &s.Row, &s.Letter, &s.ClassGroup, &s.Booked, &s.CreatedAt, &s.UpdatedAt, &s.DeletedAt); err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func (r *PGSeatRepository) Create(ctx context.Context, seat *domain.Seat) error {
	err := conn(ctx, r.db).QueryRow(ctx, `INSERT INTO seats (flight_id, seat_row, seat_letter, class_group, booked)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		seat.FlightID, seat.Row, seat.Letter, seat.ClassGroup, seat.Booked).
		Scan(&seat.ID, &seat.CreatedAt, &seat.UpdatedAt)
	return duplicate(err)
}

func (r *PGSeatRepository) FindActiveByID(ctx context.Context, flightID, seatID int64) (*domain.Seat, error) {
	return scanSeat(conn(ctx, r.db).QueryRow(ctx, seatSelect+` WHERE s.id=$1 AND s.flight_id=$2 AND s.deleted_at IS NULL`, seatID, flightID))
}

func (r *PGSeatRepository) FindActiveByPosition(ctx context.Context, flightID int64, row int, letter string) (*domain.Seat, error) {
	return scanSeat(conn(ctx, r.db).QueryRow(ctx, seatSelect+` WHERE s.flight_id=$1 AND s.seat_row=$2 AND s.seat_letter=$3 AND s.deleted_at IS NULL`,
		flightID, row, letter))
}

func (r *PGSeatRepository) ListActiveByFlight(ctx context.Context, flightID int64, page domain.Page) (domain.PageResult[domain.Seat], error) {
	return r.listPage(ctx, page,
		`SELECT count(*) FROM seats s WHERE s.flight_id=$1 AND s.deleted_at IS NULL`,
		seatSelect+` WHERE s.flight_id=$1 AND s.deleted_at IS NULL ORDER BY s.seat_row, s.seat_letter`,
		flightID)
}

func (r *PGSeatRepository) ListViable(ctx context.Context, flightID int64, classGroup string, page domain.Page) (domain.PageResult[domain.Seat], error) {
	const where = ` WHERE s.flight_id=$1 AND s.deleted_at IS NULL AND s.booked=FALSE AND ($2='' OR s.class_group=$2)`
	return r.listPage(ctx, page,
		`SELECT count(*) FROM seats s`+where,
		seatSelect+where+` ORDER BY s.seat_row, s.seat_letter`,
		flightID, classGroup)
}

func (r *PGSeatRepository) listPage(ctx context.Context, page domain.Page, countSQL, selectSQL string, args ...any) (domain.PageResult[domain.Seat], error) {
	result := domain.PageResult[domain.Seat]{PageSize: page.Size, Items: make([]domain.Seat, 0)}
	db := conn(ctx, r.db)

	total, err := countRows(ctx, db, countSQL, args...)
	if err != nil {
		return result, err
	}
	result.TotalCount = total

	n := len(args)
	args = append(args, page.Limit(), page.Offset())
	rows, err := db.Query(ctx, selectSQL+limitOffset(n), args...)
	if err != nil {
		return result, err
	}
	defer rows.Close()

	for rows.Next() {
		s, err := scanSeat(rows)
		if err != nil {
			return result, err
		}
		result.Items = append(result.Items, *s)
	}
	return result, rows.Err()
}

func (r *PGSeatRepository) ListAllByFlight(ctx context.Context, flightID int64) ([]domain.Seat, error) {
	rows, err := conn(ctx, r.db).Query(ctx, seatSelect+` WHERE s.flight_id=$1 ORDER BY s.seat_row, s.seat_letter, s.id`, flightID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make([]domain.Seat, 0)
	for rows.Next() {
		s, err := scanSeat(rows)
		if err != nil {
			return nil, err
		}
		seats = append(seats, *s)
	}
	return seats, rows.Err()
}

func (r *PGSeatRepository) CountViable(ctx context.Context, flightID int64) (int, error) {
	return countRows(ctx, conn(ctx, r.db), `SELECT count(*) FROM seats WHERE flight_id=$1 AND deleted_at IS NULL AND booked=FALSE`, flightID)
}

// The UPDATE's row lock serialises concurrent claimers; only one sees a row affected.
func (r *PGSeatRepository) Claim(ctx context.Context, seatID, flightID int64, classGroup string) error {
	tag, err := conn(ctx, r.db).Exec(ctx, `UPDATE seats SET booked=TRUE, updated_at=now()
		WHERE id=$1 AND flight_id=$2 AND class_group=$3 AND booked=FALSE AND deleted_at IS NULL`,
		seatID, flightID, classGroup)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSeatUnavailable
	}
	return nil
}

func (r *PGSeatRepository) Release(ctx context.Context, seatID int64) error {
	_, err := conn(ctx, r.db).Exec(ctx, `UPDATE seats SET booked=FALSE, updated_at=now() WHERE id=$1`, seatID)
	return err
}

func (r *PGSeatRepository) SoftDeleteByFlight(ctx context.Context, flightID int64) (int64, error) {
	tag, err := conn(ctx, r.db).Exec(ctx, `UPDATE seats SET deleted_at=now() WHERE flight_id=$1 AND deleted_at IS NULL`, flightID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *PGSeatRepository) HardDelete(ctx context.Context, id int64) error {
	_, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM seats WHERE id=$1`, id)
	return err
}

var _ SeatRepository = (*PGSeatRepository)(nil)
