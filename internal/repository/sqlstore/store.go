// Package sqlstore implements the repository contracts on database/sql.
// Backend differences live behind Dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"task-tracker/internal/errors"
	"task-tracker/internal/logging"
	"task-tracker/internal/repository"
)

// Store implements repository.Store.
type Store struct {
	*queries
	db     *sql.DB
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for created_at and updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.queries.now = now
	}
}

// WithLogger sets the store logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New wraps an open database handle. Call Migrate before first use.
func New(db *sql.DB, dialect Dialect, opts ...Option) *Store {
	s := &Store{
		queries: &queries{q: db, dialect: dialect, now: time.Now},
		db:      db,
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Migrate applies the dialect's pending migrations.
func (s *Store) Migrate(ctx context.Context) error {
	if err := RunMigrations(ctx, s.db, s.dialect.Migrations(), s.logger); err != nil {
		return HandleDatabaseError("run migrations", err)
	}
	return nil
}

// DB exposes the underlying handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the backend dialect.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// WithinTx runs fn in one transaction. Inside fn only tx may be used;
// reaching back to the Store can deadlock single-connection databases.
func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, s.dialect.TxOptions())
	if err != nil {
		return s.txError(HandleDatabaseError("begin transaction", err))
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&queries{q: tx, dialect: s.dialect, now: s.now}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("rollback failed", slog.String("dialect", s.dialect.Name()), slog.Any("error", rbErr))
		}
		return s.txError(err)
	}

	if err := tx.Commit(); err != nil {
		return s.txError(HandleDatabaseError("commit transaction", err))
	}
	return nil
}

// txError reports lock contention as a conflict so a losing concurrent
// start answers like a duplicate one.
func (s *Store) txError(err error) error {
	if !s.dialect.IsTxContention(err) {
		return err
	}
	conflict := errors.NewConflictError("transaction", s.dialect.Name(), "a concurrent change holds the lock")
	conflict.Cause = err
	return conflict
}

// queries holds the statements shared by the Store and its transactions.
type queries struct {
	q       querier
	dialect Dialect
	now     func() time.Time
}

func (q *queries) timeArg(t time.Time) interface{} {
	return q.dialect.FormatTime(t.UTC())
}

func (q *queries) timePtrArg(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return q.timeArg(*t)
}

var _ repository.Store = (*Store)(nil)
