package cli

import (
	"context"
	"log/slog"

	"task-tracker/internal/api"
	"task-tracker/internal/httpapi"
	"task-tracker/internal/realtime"
)

// ServeCommand runs the HTTP API. Running timers are tracked by a hub so
// break reminders reach the log while the server is up.
type ServeCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewServeCommand creates a new serve command handler
func NewServeCommand(app *App) *ServeCommand {
	return &ServeCommand{app: app, errorHandler: NewErrorHandler(app.logger)}
}

// Execute serves until ctx is cancelled.
func (c *ServeCommand) Execute(ctx context.Context, args []string) error {
	cfg := c.app.config

	scheduler := realtime.NewScheduler()
	opts := realtime.HubOptions{
		Clock:    timeNow,
		Notifier: realtime.LogNotifier{Logger: c.app.logger},
		Logger:   c.app.logger,
	}
	if cfg != nil {
		opts.TickInterval = cfg.Tracking.TickInterval
		opts.BreakInterval = cfg.Tracking.BreakInterval
	}
	hub := realtime.NewHub(scheduler, opts)

	if c.app.services != nil {
		c.app.services.Timers.Subscribe(hub)
	}
	if err := c.watchRunning(ctx, hub); err != nil {
		return c.errorHandler.Handle("load running timers", err)
	}

	scheduler.Start()
	defer func() {
		hub.Close()
		scheduler.Stop()
	}()

	serverOpts := httpapi.Options{Logger: c.app.logger}
	if cfg != nil {
		serverOpts.Addr = cfg.Server.Addr
		serverOpts.ShutdownTimeout = cfg.Server.ShutdownTimeout
	}
	if err := httpapi.NewServer(c.app.api, serverOpts).Run(ctx); err != nil {
		return c.errorHandler.Handle("serve", err)
	}
	return nil
}

// watchRunning seeds the hub with timers started before the server.
func (c *ServeCommand) watchRunning(ctx context.Context, hub *realtime.Hub) error {
	active := true
	entries, err := c.app.api.ListEntries(ctx, api.EntryQuery{Active: &active})
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := hub.Watch(*entry); err != nil {
			c.app.logger.Warn("watch running timer failed", slog.Int64("entry_id", entry.ID), slog.Any("error", err))
		}
	}
	return nil
}
