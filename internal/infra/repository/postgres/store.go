// Package postgres implements the unit of work and repositories on pgx.
// NUMERIC columns travel as text so decimals keep their exact value.
package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"bookstore-choreography/internal/pkg/clock"
	"bookstore-choreography/internal/pkg/errs"
	"bookstore-choreography/internal/pkg/retry"
	"bookstore-choreography/internal/usecase/shared"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	errTransactionBegin  = errs.New("failed to begin transaction")
	errTransactionCommit = errs.New("failed to commit transaction")
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	pool   *pgxpool.Pool
	clock  clock.Clock
	logger *slog.Logger
	// serialization failures and deadlocks are retried under this policy
	txRetry retry.Policy
}

func NewStore(pool *pgxpool.Pool, clk clock.Clock, logger *slog.Logger) *Store {
	return &Store{
		pool:    pool,
		clock:   clk,
		logger:  logger.With("component", "postgres-store"),
		txRetry: retry.Exponential(3, 100*time.Millisecond),
	}
}

// ReadCommitted is enough: status transitions are guarded in SQL and the outbox claim locks rows.
func (s *Store) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return retry.Do(ctx, s.txRetry, func(ctx context.Context) error {
		err := s.runOnce(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, fn)
		if err != nil && !isRetryableError(err) {
			return retry.Permanent(err)
		}
		return err
	}, func(err error, wait time.Duration) {
		s.logger.Warn("retrying transaction due to retryable error",
			"wait_ms", wait.Milliseconds(),
			"error", err.Error())
	})
}

func (s *Store) runOnce(ctx context.Context, opts pgx.TxOptions, fn func(ctx context.Context, tx shared.Tx) error) error {
	pgxTx, err := s.pool.BeginTx(ctx, opts)
	if err != nil {
		return errs.Mark(err, errTransactionBegin)
	}

	err = fn(ctx, &pgTx{db: pgxTx, clock: s.clock})
	if err == nil {
		if err = pgxTx.Commit(ctx); err == nil {
			return nil
		}
		err = errs.Mark(err, errTransactionCommit)
	}

	if rollbackErr := pgxTx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
		s.logger.Warn("rollback failed", "error", rollbackErr.Error())
	}
	return err
}

func (s *Store) OrderReader() *OrderRepository {
	return &OrderRepository{db: s.pool}
}

func (s *Store) PaymentReader() *PaymentRepository {
	return &PaymentRepository{db: s.pool}
}

func (s *Store) BookReader() *BookRepository {
	return &BookRepository{db: s.pool}
}

func (s *Store) OutboxReader() *OutboxRepository {
	return &OutboxRepository{db: s.pool, clock: s.clock}
}

type pgTx struct {
	db    DBTX
	clock clock.Clock

	// Lazy-initialized repositories
	orders   *OrderRepository
	outbox   *OutboxRepository
	payments *PaymentRepository
	books    *BookRepository
}

func (t *pgTx) Orders() shared.OrderRepository {
	if t.orders == nil {
		t.orders = &OrderRepository{db: t.db}
	}
	return t.orders
}

func (t *pgTx) Outbox() shared.OutboxRepository {
	if t.outbox == nil {
		t.outbox = &OutboxRepository{db: t.db, clock: t.clock}
	}
	return t.outbox
}

func (t *pgTx) Payments() shared.PaymentRepository {
	if t.payments == nil {
		t.payments = &PaymentRepository{db: t.db}
	}
	return t.payments
}

func (t *pgTx) Books() shared.BookRepository {
	if t.books == nil {
		t.books = &BookRepository{db: t.db}
	}
	return t.books
}
