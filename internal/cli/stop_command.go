package cli

import (
	"context"

	"task-tracker/internal/api"
	"task-tracker/internal/domain"
	"task-tracker/internal/errors"
)

// StopCommand handles the stop command
type StopCommand struct {
	app          *App
	businessAPI  api.BusinessAPI
	errorHandler *ErrorHandler
}

// NewStopCommand creates a new stop command handler
func NewStopCommand(app *App) *StopCommand {
	return &StopCommand{
		app:          app,
		businessAPI:  app.api,
		errorHandler: NewErrorHandler(app.logger),
	}
}

// Execute runs the stop command
func (c *StopCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return c.errorHandler.HandleSimple(errors.NewInvalidInputError("command", "stop", "usage: tt stop <task-id>"))
	}
	taskID, err := parseID("task_id", args[0])
	if err != nil {
		return c.errorHandler.HandleSimple(err)
	}

	session, err := c.businessAPI.StopTimer(ctx, domain.Scope{TaskID: taskID, UserID: c.app.user()})
	if err != nil {
		return c.errorHandler.Handle("stop timer", err)
	}

	c.app.printf("Stopped timer for task %d: %s (%s)\n", session.Task.ID, session.Task.Name, session.Duration)
	return nil
}
