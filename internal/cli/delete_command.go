package cli

import (
	"context"

	"task-tracker/internal/api"
	"task-tracker/internal/errors"
)

// DeleteCommand handles the delete command
type DeleteCommand struct {
	app          *App
	businessAPI  api.BusinessAPI
	errorHandler *ErrorHandler
}

// NewDeleteCommand creates a new delete command handler
func NewDeleteCommand(app *App) *DeleteCommand {
	return &DeleteCommand{
		app:          app,
		businessAPI:  app.api,
		errorHandler: NewErrorHandler(app.logger),
	}
}

// Execute deletes one time entry. Deleting a running entry stops its timer.
func (c *DeleteCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return c.errorHandler.HandleSimple(errors.NewInvalidInputError("command", "delete", "usage: tt delete <entry-id>"))
	}
	id, err := parseID("entry_id", args[0])
	if err != nil {
		return c.errorHandler.HandleSimple(err)
	}

	if err := c.businessAPI.DeleteEntry(ctx, id); err != nil {
		return c.errorHandler.Handle("delete time entry", err)
	}

	c.app.printf("Deleted entry #%d\n", id)
	return nil
}
