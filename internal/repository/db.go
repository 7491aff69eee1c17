package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/airtech/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// DBTX is the part of pgxpool.Pool and pgx.Tx the repositories use.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type TxManager struct {
	pool *pgxpool.Pool
}

func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return &TxManager{pool: pool}
}

type txKey struct{}

// WithinTransaction runs fn in a transaction carried by ctx. Nested calls
// join the outer transaction.
func (tm *TxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if GetTx(ctx) != nil {
		return fn(ctx)
	}

	tx, err := tm.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if cerr := tx.Commit(ctx); cerr != nil {
			err = fmt.Errorf("commit transaction: %w", cerr)
		}
	}()

	return fn(context.WithValue(ctx, txKey{}, tx))
}

// GetTx returns the transaction stored in ctx, or nil.
func GetTx(ctx context.Context) pgx.Tx {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return nil
}

func conn(ctx context.Context, pool *pgxpool.Pool) DBTX {
	if tx := GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}

type scanner interface {
	Scan(dest ...any) error
}

// notFound maps pgx.ErrNoRows to domain.ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

// duplicate maps a unique violation to domain.ErrDuplicate, keeping the
// constraint name in the message.
func duplicate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", domain.ErrDuplicate, pgErr.ConstraintName)
	}
	return err
}

func countRows(ctx context.Context, db DBTX, sql string, args ...any) (int, error) {
	var n int
	if err := db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

var _ Transactor = (*TxManager)(nil)

// limitOffset renders the LIMIT/OFFSET clause for a query that already binds n arguments.
func limitOffset(n int) string {
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", n+1, n+2)
}
