package cli

import (
	"context"
	"strings"

	"task-tracker/internal/api"
	"task-tracker/internal/domain"
	"task-tracker/internal/errors"
)

// StartCommand handles the start command
type StartCommand struct {
	app          *App
	businessAPI  api.BusinessAPI
	errorHandler *ErrorHandler
}

// NewStartCommand creates a new start command handler
func NewStartCommand(app *App) *StartCommand {
	return &StartCommand{
		app:          app,
		businessAPI:  app.api,
		errorHandler: NewErrorHandler(app.logger),
	}
}

// Execute runs the start command
func (c *StartCommand) Execute(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return c.errorHandler.HandleSimple(errors.NewInvalidInputError("command", "start", "usage: tt start <task-id> [description]"))
	}
	taskID, err := parseID("task_id", args[0])
	if err != nil {
		return c.errorHandler.HandleSimple(err)
	}
	description := strings.Join(args[1:], " ")

	scope := domain.Scope{TaskID: taskID, UserID: c.app.user()}
	session, err := c.businessAPI.StartTimer(ctx, scope, description)
	if err != nil {
		return c.errorHandler.Handle("start timer", err)
	}

	c.app.printf("Started timer for task %d: %s\n", session.Task.ID, session.Task.Name)
	return nil
}
