package cli

import (
	"context"
	"time"

	"task-tracker/internal/api"
	"task-tracker/internal/errors"
	"task-tracker/internal/services"
)

// UpdateOptions carries the flags the user actually set.
type UpdateOptions struct {
	Description *string
	Duration    *int
	Start       *string
	End         *string
}

// UpdateCommand edits a time entry
type UpdateCommand struct {
	app          *App
	businessAPI  api.BusinessAPI
	errorHandler *ErrorHandler
	opts         UpdateOptions
}

// NewUpdateCommand creates a new update command handler
func NewUpdateCommand(app *App, opts UpdateOptions) *UpdateCommand {
	return &UpdateCommand{
		app:          app,
		businessAPI:  app.api,
		errorHandler: NewErrorHandler(app.logger),
		opts:         opts,
	}
}

// Execute runs the update command
func (c *UpdateCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return c.errorHandler.HandleSimple(errors.NewInvalidInputError("command", "update", "usage: tt update <entry-id> [flags]"))
	}
	id, err := parseID("entry_id", args[0])
	if err != nil {
		return c.errorHandler.HandleSimple(err)
	}

	input := services.UpdateInput{
		Description:     c.opts.Description,
		DurationMinutes: c.opts.Duration,
	}
	if input.StartTime, err = parseTimestamp("start", c.opts.Start); err != nil {
		return c.errorHandler.HandleSimple(err)
	}
	if input.EndTime, err = parseTimestamp("end", c.opts.End); err != nil {
		return c.errorHandler.HandleSimple(err)
	}

	entry, err := c.businessAPI.UpdateEntry(ctx, id, input)
	if err != nil {
		return c.errorHandler.Handle("update time entry", err)
	}

	c.app.printf("Updated entry #%d (%s)\n", entry.ID, api.DescribeDuration(entry, timeNow()))
	return nil
}

func parseTimestamp(field string, raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *raw)
	if err != nil {
		return nil, errors.NewInvalidInputError(field, *raw, "must be an RFC3339 timestamp")
	}
	return &t, nil
}
