package repository

import (
	"context"

	"github.com/Domenick1991/airtech/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LocationRepository interface {
	Create(ctx context.Context, location *domain.Location) error
	GetByID(ctx context.Context, id int64) (*domain.Location, error)
	FindByRef(ctx context.Context, ref domain.LocationRef) (*domain.Location, error)
	List(ctx context.Context, page domain.Page) (domain.PageResult[domain.Location], error)
	Update(ctx context.Context, location *domain.Location) error
}

type PGLocationRepository struct {
	db *pgxpool.Pool
}

func NewLocationRepository(db *pgxpool.Pool) LocationRepository {
	return &PGLocationRepository{db: db}
}

const locationColumns = `id, country, city, airport, created_at, updated_at`

func scanLocation(row scanner) (*domain.Location, error) {
	var l domain.Location
	if err := row.Scan(&l.ID, &l.Country, &l.City, &l.Airport, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, notFound(err)
	}
	return &l, nil
}

func (r *PGLocationRepository) Create(ctx context.Context, location *domain.Location) error {
	err := conn(ctx, r.db).QueryRow(ctx, `INSERT INTO locations (country, city, airport) VALUES ($1, $2, $3) RETURNING id, created_at, updated_at`,
		location.Country, location.City, location.Airport).Scan(&location.ID, &location.CreatedAt, &location.UpdatedAt)
	return duplicate(err)
}

func (r *PGLocationRepository) GetByID(ctx context.Context, id int64) (*domain.Location, error) {
	return scanLocation(conn(ctx, r.db).QueryRow(ctx, `SELECT `+locationColumns+` FROM locations WHERE id=$1`, id))
}

func (r *PGLocationRepository) FindByRef(ctx context.Context, ref domain.LocationRef) (*domain.Location, error) {
	return scanLocation(conn(ctx, r.db).QueryRow(ctx, `SELECT `+locationColumns+` FROM locations WHERE country=$1 AND city=$2 AND airport=$3`,
		ref.Country, ref.City, ref.Airport))
}

func (r *PGLocationRepository) List(ctx context.Context, page domain.Page) (domain.PageResult[domain.Location], error) {
	result := domain.PageResult[domain.Location]{PageSize: page.Size, Items: make([]domain.Location, 0)}
	db := conn(ctx, r.db)

	total, err := countRows(ctx, db, `SELECT count(*) FROM locations`)
	if err != nil {
		return result, err
	}
	result.TotalCount = total

	rows, err := db.Query(ctx, `SELECT `+locationColumns+` FROM locations ORDER BY country, city, airport LIMIT $1 OFFSET $2`, page.Limit(), page.Offset())
	if err != nil {
		return result, err
	}
	defer rows.Close()

	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return result, err
		}
		result.Items = append(result.Items, *l)
	}
	return result, rows.Err()
}

func (r *PGLocationRepository) Update(ctx context.Context, location *domain.Location) error {
	err := conn(ctx, r.db).QueryRow(ctx, `UPDATE locations SET country=$2, city=$3, airport=$4, updated_at=now() WHERE id=$1 RETURNING updated_at`,
		location.ID, location.Country, location.City, location.Airport).Scan(&location.UpdatedAt)
	return duplicate(notFound(err))
}

var _ LocationRepository = (*PGLocationRepository)(nil)
