package cli

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"task-tracker/internal/api"
	"task-tracker/internal/domain"
	"task-tracker/internal/errors"
	"task-tracker/internal/realtime"
)

const watchPollInterval = 5 * time.Second

// WatchCommand shows a live elapsed time for a running timer and prints
// break reminders until the timer stops or the user interrupts.
type WatchCommand struct {
	app          *App
	businessAPI  api.BusinessAPI
	errorHandler *ErrorHandler
	pollInterval time.Duration
}

// NewWatchCommand creates a new watch command handler
func NewWatchCommand(app *App) *WatchCommand {
	return &WatchCommand{
		app:          app,
		businessAPI:  app.api,
		errorHandler: NewErrorHandler(app.logger),
		pollInterval: watchPollInterval,
	}
}

// Execute runs the watch command
func (c *WatchCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return c.errorHandler.HandleSimple(errors.NewInvalidInputError("command", "watch", "usage: tt watch <task-id>"))
	}
	taskID, err := parseID("task_id", args[0])
	if err != nil {
		return c.errorHandler.HandleSimple(err)
	}
	scope := domain.Scope{TaskID: taskID, UserID: c.app.user()}

	session, err := c.businessAPI.ActiveTimer(ctx, scope)
	if errors.IsNotFound(err) {
		c.app.printf("No timer is running for task %d\n", taskID)
		return nil
	}
	if err != nil {
		return c.errorHandler.Handle("get active timer", err)
	}

	scheduler := realtime.NewScheduler()
	hub := realtime.NewHub(scheduler, c.hubOptions(session.Task.Name))
	if err := hub.Watch(*session.TimeEntry); err != nil {
		return c.errorHandler.Handle("watch timer", err)
	}

	done := make(chan struct{})
	var finish sync.Once
	watched := session.TimeEntry.ID

	// Store reads happen here, never on the view ticks.
	cancelPoll, err := scheduler.Every(c.pollInterval, func() {
		current, err := c.businessAPI.ActiveTimer(ctx, scope)
		switch {
		case errors.IsNotFound(err):
			hub.Unwatch(watched)
			finish.Do(func() { close(done) })
		case err != nil:
			c.app.logger.Warn("poll active timer failed", slog.Any("error", err))
		case current.TimeEntry.ID != watched:
			hub.Unwatch(watched)
			watched = current.TimeEntry.ID
			if err := hub.Watch(*current.TimeEntry); err != nil {
				c.app.logger.Warn("watch timer failed", slog.Any("error", err))
			}
		}
	})
	if err != nil {
		hub.Close()
		return c.errorHandler.Handle("watch timer", err)
	}

	scheduler.Start()

	stopped := false
	select {
	case <-done:
		stopped = true
	case <-ctx.Done():
	}

	cancelPoll()
	hub.Close()
	scheduler.Stop()

	if stopped {
		c.app.printf("\nTimer stopped\n")
	} else {
		c.app.printf("\n")
	}
	return nil
}

func (c *WatchCommand) hubOptions(taskName string) realtime.HubOptions {
	opts := realtime.HubOptions{
		Clock:    timeNow,
		Notifier: realtime.NewWriterNotifier(c.app.out),
		Logger:   c.app.logger,
		Render: func(entry domain.TimeEntry, elapsed time.Duration, now time.Time) {
			c.app.printf("\r%s  %s ", taskName, realtime.FormatElapsed(elapsed))
		},
	}
	if cfg := c.app.config; cfg != nil {
		opts.TickInterval = cfg.Tracking.TickInterval
		opts.BreakInterval = cfg.Tracking.BreakInterval
	}
	return opts
}
