package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"task-tracker/internal/repository"
	"task-tracker/internal/repository/mysql"
	"task-tracker/internal/repository/sqlite"
)

// StoreFactory creates store instances based on configuration and environment
type StoreFactory struct {
	config *Config
	env    Environment
}

// NewStoreFactory creates a factory for the current TT_ENV environment
func NewStoreFactory(config *Config) *StoreFactory {
	return &StoreFactory{config: config, env: GetEnvironment()}
}

// WithEnvironment overrides the detected environment
func (f *StoreFactory) WithEnvironment(env Environment) *StoreFactory {
	f.env = env
	return f
}

// Open creates and migrates the configured store
func (f *StoreFactory) Open(ctx context.Context, logger *slog.Logger) (repository.Store, error) {
	switch f.env {
	case Testing:
		// In-memory SQLite keeps tests isolated
		return f.openSQLite(ctx, sqlite.MemoryPath, logger)
	case Development:
		if f.config.Database.Driver == DriverSQLite {
			// Local database file in the working directory
			return f.openSQLite(ctx, "tt.db", logger)
		}
	}

	switch f.config.Database.Driver {
	case DriverMySQL:
		store, err := mysql.Open(ctx, f.config.Database.DSN, mysql.Options{Logger: logger})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize mysql database: %w", err)
		}
		return store, nil
	default:
		if err := os.MkdirAll(f.config.Database.Dir, os.FileMode(f.config.Database.DirPermissions)); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		return f.openSQLite(ctx, f.config.GetDatabasePath(), logger)
	}
}

func (f *StoreFactory) openSQLite(ctx context.Context, path string, logger *slog.Logger) (repository.Store, error) {
	store, err := sqlite.Open(ctx, path, sqlite.Options{
		BusyTimeout: f.config.GetWriteTimeout(),
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return store, nil
}
