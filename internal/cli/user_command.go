package cli

import (
	"context"

	"task-tracker/internal/api"
	"task-tracker/internal/errors"
)

// UserCommand handles user registration
type UserCommand struct {
	app          *App
	api          api.API
	errorHandler *ErrorHandler
	displayName  string
}

// NewUserCommand creates a new user command handler
func NewUserCommand(app *App, displayName string) *UserCommand {
	return &UserCommand{
		app:          app,
		api:          app.api,
		errorHandler: NewErrorHandler(app.logger),
		displayName:  displayName,
	}
}

// Add registers a tracking user.
func (c *UserCommand) Add(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return c.errorHandler.HandleSimple(errors.NewInvalidInputError("command", "user add", "usage: tt user add <id>"))
	}
	user, err := c.api.CreateUser(ctx, args[0], c.displayName)
	if err != nil {
		return c.errorHandler.Handle("create user", err)
	}
	c.app.printf("Created user %s (%s)\n", user.ID, user.DisplayName)
	return nil
}
