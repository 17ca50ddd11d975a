// Package mysql is the multi-user store, backed by go-sql-driver/mysql.
package mysql

import (
	"context"
	"database/sql"
	"embed"
	stderrors "errors"
	"io/fs"
	"log/slog"
	"time"

	"github.com/go-sql-driver/mysql"

	"task-tracker/internal/errors"
	"task-tracker/internal/repository/sqlstore"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	errLockWaitTimeout = 1205 // ER_LOCK_WAIT_TIMEOUT
	errDuplicateEntry  = 1062 // ER_DUP_ENTRY
	errLockDeadlock    = 1213 // ER_LOCK_DEADLOCK
)

// Dialect is the sqlstore dialect for MySQL.
type Dialect struct{}

// Name implements sqlstore.Dialect.
func (Dialect) Name() string { return "mysql" }

// FormatTime binds timestamps natively into DATETIME(6) columns.
func (Dialect) FormatTime(t time.Time) interface{} {
	return t.UTC()
}

// IsUniqueViolation implements sqlstore.Dialect.
func (Dialect) IsUniqueViolation(err error) bool {
	var mysqlErr *mysql.MySQLError
	return stderrors.As(err, &mysqlErr) && mysqlErr.Number == errDuplicateEntry
}

// IsTxContention implements sqlstore.Dialect. Serializable starts on the
// same scope from two processes can deadlock; the loser sees 1213.
func (Dialect) IsTxContention(err error) bool {
	var mysqlErr *mysql.MySQLError
	if !stderrors.As(err, &mysqlErr) {
		return false
	}
	return mysqlErr.Number == errLockDeadlock || mysqlErr.Number == errLockWaitTimeout
}

// TxOptions makes the existence check and the insert of a start one
// serializable unit.
func (Dialect) TxOptions() *sql.TxOptions {
	return &sql.TxOptions{Isolation: sql.LevelSerializable}
}

// Migrations implements sqlstore.Dialect.
func (Dialect) Migrations() fs.FS {
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// Options tunes the connection pool.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Logger          *slog.Logger
	Clock           func() time.Time
}

// NormalizeDSN forces the settings the store relies on: native time
// values in UTC and affected-row counts that include unchanged rows.
func NormalizeDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", err
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.ClientFoundRows = true
	return cfg.FormatDSN(), nil
}

// Open connects using dsn (user:pass@tcp(host:3306)/dbname) and migrates.
func Open(ctx context.Context, dsn string, opts Options) (*sqlstore.Store, error) {
	if dsn == "" {
		return nil, errors.NewInvalidInputError("database.dsn", dsn, "a DSN is required")
	}
	normalized, err := NormalizeDSN(dsn)
	if err != nil {
		return nil, errors.NewInvalidInputError("database.dsn", "<redacted>", err.Error())
	}

	db, err := sql.Open("mysql", normalized)
	if err != nil {
		return nil, errors.NewDatabaseError("open database", err)
	}

	maxOpen := opts.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 10
	}
	maxIdle := opts.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = 5
	}
	lifetime := opts.ConnMaxLifetime
	if lifetime <= 0 {
		lifetime = 30 * time.Minute
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(lifetime)

	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(c); err != nil {
		db.Close()
		return nil, errors.NewDatabaseError("ping database", err)
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
