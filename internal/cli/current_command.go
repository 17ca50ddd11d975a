package cli

import (
	"context"

	"task-tracker/internal/api"
)

// CurrentCommand handles the current command
type CurrentCommand struct {
	app          *App
	businessAPI  api.BusinessAPI
	errorHandler *ErrorHandler
}

// NewCurrentCommand creates a new current command handler
func NewCurrentCommand(app *App) *CurrentCommand {
	return &CurrentCommand{
		app:          app,
		businessAPI:  app.api,
		errorHandler: NewErrorHandler(app.logger),
	}
}

// Execute shows every running timer of the acting user.
func (c *CurrentCommand) Execute(ctx context.Context, args []string) error {
	sessions, err := c.businessAPI.CurrentSessions(ctx, c.app.user())
	if err != nil {
		return c.errorHandler.Handle("get current timers", err)
	}

	if len(sessions) == 0 {
		c.app.printf("No timer is currently running\n")
		return nil
	}

	for _, session := range sessions {
		c.app.printf("Current task: %s (%s)\n", session.Task.Name, session.Duration)
	}
	return nil
}
