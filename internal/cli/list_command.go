package cli

import (
	"context"

	"task-tracker/internal/api"
)

// ListOptions are the flags of the list command.
type ListOptions struct {
	TaskID int64
	Active bool
	Since  string
	Limit  int
	Format string
	// AllUsers lists every user's entries instead of the acting user's.
	AllUsers bool
}

// ListCommand handles the list command
type ListCommand struct {
	app          *App
	businessAPI  api.BusinessAPI
	printer      *EntryPrinter
	errorHandler *ErrorHandler
	opts         ListOptions
}

// NewListCommand creates a new list command handler
func NewListCommand(app *App, opts ListOptions) *ListCommand {
	if opts.Format == "" && app.config != nil {
		opts.Format = app.config.Display.ListFormat
	}
	return &ListCommand{
		app:          app,
		businessAPI:  app.api,
		printer:      NewEntryPrinter(app),
		errorHandler: NewErrorHandler(app.logger),
		opts:         opts,
	}
}

// Execute lists time entries, newest first.
func (c *ListCommand) Execute(ctx context.Context, args []string) error {
	query := api.EntryQuery{
		Since: c.opts.Since,
		Limit: c.opts.Limit,
	}
	if c.opts.TaskID > 0 {
		query.TaskID = &c.opts.TaskID
	}
	if c.opts.Active {
		active := true
		query.Active = &active
	}
	if !c.opts.AllUsers {
		user := c.app.user()
		query.UserID = &user
	}

	entries, err := c.businessAPI.ListEntries(ctx, query)
	if err != nil {
		return c.errorHandler.Handle("list time entries", err)
	}

	if err := c.printer.Print(ctx, c.opts.Format, entries); err != nil {
		return c.errorHandler.Handle("print time entries", err)
	}
	return nil
}
