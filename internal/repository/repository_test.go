package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Domenick1991/airtech/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRepositories(t *testing.T) {
	pool := &pgxpool.Pool{}

	assert.NotNil(t, NewUserRepository(pool))
	assert.NotNil(t, NewTokenRepository(pool))
	assert.NotNil(t, NewLocationRepository(pool))
	assert.NotNil(t, NewFlightRepository(pool))
	assert.NotNil(t, NewSeatRepository(pool))
	assert.NotNil(t, NewBookingRepository(pool))
	assert.NotNil(t, NewTxManager(pool))
}

func TestNotFound(t *testing.T) {
	assert.ErrorIs(t, notFound(pgx.ErrNoRows), domain.ErrNotFound)
	assert.ErrorIs(t, notFound(fmt.Errorf("scan: %w", pgx.ErrNoRows)), domain.ErrNotFound)

	other := errors.New("connection reset")
	assert.Equal(t, other, notFound(other))
	assert.NoError(t, notFound(nil))
}

func TestDuplicate(t *testing.T) {
	err := duplicate(&pgconn.PgError{Code: uniqueViolation, ConstraintName: "seats_flight_row_letter_key"})
	require.ErrorIs(t, err, domain.ErrDuplicate)
	assert.Contains(t, err.Error(), "seats_flight_row_letter_key")

	fk := &pgconn.PgError{Code: "23503"}
	assert.Equal(t, error(fk), duplicate(fk))
}

func TestLimitOffset(t *testing.T) {
	assert.Equal(t, " LIMIT $1 OFFSET $2", limitOffset(0))
	assert.Equal(t, " LIMIT $3 OFFSET $4", limitOffset(2))
}

func TestGetTx_Empty(t *testing.T) {
	assert.Nil(t, GetTx(context.Background()))
}

func TestJoinedLocation(t *testing.T) {
	id := int64(4)
	country, city, airport := "Kenya", "Nairobi", "Jkia"

	loc := joinedLocation(&id, &country, &city, &airport)
	require.NotNil(t, loc)
	assert.Equal(t, domain.Location{ID: 4, Country: "Kenya", City: "Nairobi", Airport: "Jkia"}, *loc)

	assert.Nil(t, joinedLocation(nil, &country, &city, &airport))
	assert.Nil(t, joinedLocation(&id, nil, nil, nil))
}

func TestMigrationsEmbedded(t *testing.T) {
	script, err := migrations.ReadFile("migrations/0001_init.sql")
	require.NoError(t, err)
	assert.Contains(t, string(script), "bookings_active_seat_key")
}
