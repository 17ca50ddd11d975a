package cli

import (
	"context"
	"strconv"

	"task-tracker/internal/api"
	"task-tracker/internal/domain"
	"task-tracker/internal/errors"
)

// AddCommand records backdated work
type AddCommand struct {
	app          *App
	businessAPI  api.BusinessAPI
	errorHandler *ErrorHandler
	date         string
	description  string
}

// NewAddCommand creates a new add command handler. date is RFC3339 or
// YYYY-MM-DD and marks when the work ended.
func NewAddCommand(app *App, date, description string) *AddCommand {
	return &AddCommand{
		app:          app,
		businessAPI:  app.api,
		errorHandler: NewErrorHandler(app.logger),
		date:         date,
		description:  description,
	}
}

// Execute runs the add command
func (c *AddCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return c.errorHandler.HandleSimple(errors.NewInvalidInputError("command", "add", "usage: tt add <task-id> <minutes>"))
	}
	taskID, err := parseID("task_id", args[0])
	if err != nil {
		return c.errorHandler.HandleSimple(err)
	}
	minutes, err := strconv.Atoi(args[1])
	if err != nil {
		return c.errorHandler.HandleSimple(errors.NewInvalidInputError("minutes", args[1], "must be a whole number"))
	}
	date, err := parseDate(c.date)
	if err != nil {
		return c.errorHandler.HandleSimple(err)
	}

	entry, err := c.businessAPI.AddManualEntry(ctx, api.ManualEntryRequest{
		Scope:           domain.Scope{TaskID: taskID, UserID: c.app.user()},
		DurationMinutes: minutes,
		Date:            date,
		Description:     c.description,
	})
	if err != nil {
		return c.errorHandler.Handle("add time entry", err)
	}

	c.app.printf("Added %d min to task %d (entry #%d, %s - %s)\n",
		minutes, taskID, entry.ID,
		entry.StartTime.Format(c.app.timeFormat()), entry.EndTime.Format(c.app.timeFormat()))
	return nil
}
