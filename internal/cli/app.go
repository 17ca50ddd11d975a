package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"task-tracker/internal/api"
	"task-tracker/internal/config"
	"task-tracker/internal/errors"
	"task-tracker/internal/logging"
	"task-tracker/internal/services"
)

// timeNow is a variable that can be replaced in tests
var timeNow = time.Now

// Runtime is everything a command needs once configuration is resolved.
type Runtime struct {
	API      api.API
	Services *services.Container
	Logger   *slog.Logger
	Close    func() error
}

// Bootstrap builds the runtime for a resolved configuration.
type Bootstrap func(ctx context.Context, cfg *config.Config) (*Runtime, error)

// DefaultBootstrap opens the configured store and wires the services and
// facade over it.
func DefaultBootstrap(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	logger := logging.New(logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	slog.SetDefault(logger)
	logging.Debugf("opening %s store (env %s)", cfg.Database.Driver, config.GetEnvironment())

	policy, err := services.ParsePolicy(cfg.Tracking.Policy)
	if err != nil {
		return nil, err
	}

	store, err := config.NewStoreFactory(cfg).Open(ctx, logger)
	if err != nil {
		return nil, err
	}

	svc := services.NewContainer(store, services.Options{Policy: policy, Clock: timeNow, Logger: logger})
	return &Runtime{
		API:      api.New(store, svc, timeNow),
		Services: svc,
		Logger:   logger,
		Close:    store.Close,
	}, nil
}

// App represents the main CLI application
type App struct {
	api      api.API
	services *services.Container
	config   *config.Config
	logger   *slog.Logger
	out      io.Writer
}

// NewApp creates a new CLI application instance with dependency injection
func NewApp(rt *Runtime, cfg *config.Config, out io.Writer) *App {
	if out == nil {
		out = os.Stdout
	}
	logger := rt.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &App{
		api:      rt.API,
		services: rt.Services,
		config:   cfg,
		logger:   logger,
		out:      out,
	}
}

// user is the acting user for this invocation.
func (a *App) user() string {
	if a.config == nil {
		return ""
	}
	return a.config.Tracking.DefaultUser
}

func (a *App) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) timeFormat() string {
	if a.config == nil || a.config.Display.TimeFormat == "" {
		return "2006-01-02 15:04:05"
	}
	return a.config.Display.TimeFormat
}

// parseID parses a positional numeric id argument.
func parseID(field, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewInvalidInputError(field, raw, "must be a positive number")
	}
	return id, nil
}

// parseDate accepts RFC3339 or a plain YYYY-MM-DD. A plain date keeps
// the current time of day, so today's date behaves like no date at all.
func parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	day, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return nil, errors.NewInvalidInputError("date", raw, "use RFC3339 or YYYY-MM-DD")
	}
	now := timeNow().In(time.Local)
	ref := time.Date(day.Year(), day.Month(), day.Day(), now.Hour(), now.Minute(), now.Second(), 0, time.Local)
	return &ref, nil
}
