package repository

import (
	"context"

	"github.com/Domenick1991/airtech/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindActiveByID(ctx context.Context, id int64) (*domain.User, error)
	FindAllByID(ctx context.Context, id int64) (*domain.User, error)
	FindActiveByEmail(ctx context.Context, email string) (*domain.User, error)
	ListActive(ctx context.Context, page domain.Page) (domain.PageResult[domain.User], error)
	Update(ctx context.Context, user *domain.User) error
	SoftDelete(ctx context.Context, id int64) error
	HardDelete(ctx context.Context, id int64) error
}

type PGUserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) UserRepository {
	return &PGUserRepository{db: db}
}

const userColumns = `id, email, first_name, last_name, password_hash, is_active, is_staff, is_superuser, date_joined, updated_at, deleted_at`

func scanUser(row scanner) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &u.IsActive, &u.IsStaff, &u.IsSuperuser, &u.DateJoined, &u.UpdatedAt, &u.DeletedAt); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *PGUserRepository) Create(ctx context.Context, user *domain.User) error {
	err := conn(ctx, r.db).QueryRow(ctx, `INSERT INTO users (email, first_name, last_name, password_hash, is_active, is_staff, is_superuser)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, date_joined, updated_at`,
		user.Email, user.FirstName, user.LastName, user.PasswordHash, user.IsActive, user.IsStaff, user.IsSuperuser).
		Scan(&user.ID, &user.DateJoined, &user.UpdatedAt)
	return duplicate(err)
}

func (r *PGUserRepository) FindActiveByID(ctx context.Context, id int64) (*domain.User, error) {
	return scanUser(conn(ctx, r.db).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1 AND deleted_at IS NULL`, id))
}

func (r *PGUserRepository) FindAllByID(ctx context.Context, id int64) (*domain.User, error) {
	return scanUser(conn(ctx, r.db).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
}

func (r *PGUserRepository) FindActiveByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(conn(ctx, r.db).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email)=lower($1) AND deleted_at IS NULL`, email))
}

func (r *PGUserRepository) ListActive(ctx context.Context, page domain.Page) (domain.PageResult[domain.User], error) {
	result := domain.PageResult[domain.User]{PageSize: page.Size, Items: make([]domain.User, 0)}
	db := conn(ctx, r.db)

	total, err := countRows(ctx, db, `SELECT count(*) FROM users WHERE deleted_at IS NULL`)
	if err != nil {
		return result, err
	}
	result.TotalCount = total

	rows, err := db.Query(ctx, `SELECT `+userColumns+` FROM users WHERE deleted_at IS NULL ORDER BY id LIMIT $1 OFFSET $2`, page.Limit(), page.Offset())
	if err != nil {
		return result, err
	}
	defer rows.Close()

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return result, err
		}
		result.Items = append(result.Items, *u)
	}
	return result, rows.Err()
}

func (r *PGUserRepository) Update(ctx context.Context, user *domain.User) error {
	err := conn(ctx, r.db).QueryRow(ctx, `UPDATE users
		SET email=$2, first_name=$3, last_name=$4, password_hash=$5, is_active=$6, is_staff=$7, is_superuser=$8, updated_at=now()
		WHERE id=$1 AND deleted_at IS NULL
		RETURNING updated_at`,
		user.ID, user.Email, user.FirstName, user.LastName, user.PasswordHash, user.IsActive, user.IsStaff, user.IsSuperuser).
		Scan(&user.UpdatedAt)
	return duplicate(notFound(err))
}

func (r *PGUserRepository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := conn(ctx, r.db).Exec(ctx, `UPDATE users SET deleted_at=now(), is_active=FALSE WHERE id=$1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PGUserRepository) HardDelete(ctx context.Context, id int64) error {
	_, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	return err
}

var _ UserRepository = (*PGUserRepository)(nil)
