package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/airtech/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TokenRepository interface {
	Create(ctx context.Context, token *domain.Token) error
	GetByKey(ctx context.Context, key string) (*domain.Token, error)
	GetByUserID(ctx context.Context, userID int64) (*domain.Token, error)
	// Rotate replaces the user's key in place and resets its expiry. A user
	// without a token gets a new one.
	Rotate(ctx context.Context, userID int64, key string, expiresAt *time.Time) (*domain.Token, error)
	DeleteByKey(ctx context.Context, key string) error
}

type PGTokenRepository struct {
	db *pgxpool.Pool
}

func NewTokenRepository(db *pgxpool.Pool) TokenRepository {
	return &PGTokenRepository{db: db}
}

func scanToken(row scanner) (*domain.Token, error) {
	var t domain.Token
	if err := row.Scan(&t.Key, &t.UserID, &t.CreatedAt, &t.ExpiresAt); err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (r *PGTokenRepository) Create(ctx context.Context, token *domain.Token) error {
	err := conn(ctx, r.db).QueryRow(ctx, `INSERT INTO tokens (key, user_id, expires_at) VALUES ($1, $2, $3) RETURNING created_at`,
		token.Key, token.UserID, token.ExpiresAt).Scan(&token.CreatedAt)
	return duplicate(err)
}

func (r *PGTokenRepository) GetByKey(ctx context.Context, key string) (*domain.Token, error) {
	return scanToken(conn(ctx, r.db).QueryRow(ctx, `SELECT key, user_id, created_at, expires_at FROM tokens WHERE key=$1`, key))
}

func (r *PGTokenRepository) GetByUserID(ctx context.Context, userID int64) (*domain.Token, error) {
	return scanToken(conn(ctx, r.db).QueryRow(ctx, `SELECT key, user_id, created_at, expires_at FROM tokens WHERE user_id=$1`, userID))
}

func (r *PGTokenRepository) Rotate(ctx context.Context, userID int64, key string, expiresAt *time.Time) (*domain.Token, error) {
	return scanToken(conn(ctx, r.db).QueryRow(ctx, `INSERT INTO tokens (user_id, key, expires_at) VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET key=EXCLUDED.key, created_at=now(), expires_at=EXCLUDED.expires_at
		RETURNING key, user_id, created_at, expires_at`, userID, key, expiresAt))
}

func (r *PGTokenRepository) DeleteByKey(ctx context.Context, key string) error {
	_, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM tokens WHERE key=$1`, key)
	return err
}

var _ TokenRepository = (*PGTokenRepository)(nil)
