// Package sqlite is the default single-instance store, backed by
// modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	stderrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"task-tracker/internal/errors"
	"task-tracker/internal/repository/sqlstore"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Dialect is the sqlstore dialect for SQLite.
type Dialect struct{}

// Name implements sqlstore.Dialect.
func (Dialect) Name() string { return "sqlite" }

// FormatTime stores timestamps as fixed width UTC text.
func (Dialect) FormatTime(t time.Time) interface{} {
	return sqlstore.FormatTimeForDB(t)
}

// IsUniqueViolation implements sqlstore.Dialect.
func (Dialect) IsUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !stderrors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return strings.Contains(sqliteErr.Error(), "UNIQUE constraint failed")
}

// IsTxContention implements sqlstore.Dialect. BUSY survives only once the
// busy timeout has run out.
func (Dialect) IsTxContention(err error) bool {
	var sqliteErr *sqlite.Error
	if !stderrors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return true
	}
	return false
}

// TxOptions implements sqlstore.Dialect. Write locking comes from the
// _txlock=immediate DSN parameter.
func (Dialect) TxOptions() *sql.TxOptions { return nil }

// Migrations implements sqlstore.Dialect.
func (Dialect) Migrations() fs.FS {
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// Options tunes the connection.
type Options struct {
	BusyTimeout time.Duration
	Logger      *slog.Logger
	Clock       func() time.Time
}

// DSN builds the modernc connection string. Transactions take the write
// lock up front so concurrent starts queue instead of failing mid-way.
func DSN(path string, busyTimeout time.Duration) string {
	if busyTimeout <= 0 {
		busyTimeout = 5 * time.Second
	}
	params := url.Values{}
	params.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeout.Milliseconds()))
	params.Add("_pragma", "foreign_keys(1)")
	params.Set("_txlock", "immediate")
	return "file:" + path + "?" + params.Encode()
}

// Open opens (creating if needed) the database at path and migrates it.
func Open(ctx context.Context, path string, opts Options) (*sqlstore.Store, error) {
	db, err := sql.Open("sqlite", DSN(path, opts.BusyTimeout))
	if err != nil {
		return nil, errors.NewDatabaseError("open database", err)
	}

	if path == MemoryPath {
		// Every connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	storeOpts := []sqlstore.Option{sqlstore.WithLogger(opts.Logger)}
	if opts.Clock != nil {
		storeOpts = append(storeOpts, sqlstore.WithClock(opts.Clock))
	}
	store := sqlstore.New(db, Dialect{}, storeOpts...)

	if err := store.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}
