package cli

import (
	"context"
	"strings"

	"task-tracker/internal/api"
	"task-tracker/internal/errors"
	"task-tracker/internal/services"
)

// TaskCommand groups the task subcommands
type TaskCommand struct {
	app          *App
	api          api.API
	errorHandler *ErrorHandler
}

// NewTaskCommand creates a new task command handler
func NewTaskCommand(app *App) *TaskCommand {
	return &TaskCommand{
		app:          app,
		api:          app.api,
		errorHandler: NewErrorHandler(app.logger),
	}
}

// Add creates a task from the joined arguments.
func (c *TaskCommand) Add(ctx context.Context, args []string) error {
	task, err := c.api.CreateTask(ctx, strings.Join(args, " "))
	if err != nil {
		return c.errorHandler.Handle("create task", err)
	}
	c.app.printf("Created task %d: %s\n", task.ID, task.Name)
	return nil
}

// List prints every task with its status.
func (c *TaskCommand) List(ctx context.Context, args []string) error {
	tasks, err := c.api.ListTasks(ctx)
	if err != nil {
		return c.errorHandler.Handle("list tasks", err)
	}
	if len(tasks) == 0 {
		c.app.printf("No tasks found\n")
		return nil
	}
	for _, task := range tasks {
		c.app.printf("%d\t%-11s\t%s\n", task.ID, task.Status, task.Name)
	}
	return nil
}

// Status moves a task to a new status, starting or stopping its timer.
func (c *TaskCommand) Status(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return c.errorHandler.HandleSimple(errors.NewInvalidInputError("command", "task status", "usage: tt task status <task-id> <status>"))
	}
	taskID, err := parseID("task_id", args[0])
	if err != nil {
		return c.errorHandler.HandleSimple(err)
	}

	change, err := c.api.ChangeTaskStatus(ctx, taskID, c.app.user(), args[1])
	if err != nil {
		return c.errorHandler.Handle("change task status", err)
	}
	if !change.Changed {
		c.app.printf("Task %d is already %s\n", taskID, change.New)
		return nil
	}

	c.app.printf("Task %d: %s -> %s\n", taskID, change.Old, change.New)
	switch change.Action {
	case services.ActionStart:
		c.app.printf("Timer started\n")
	case services.ActionStop:
		if change.Entry != nil {
			c.app.printf("Timer stopped (%s)\n", api.DescribeDuration(change.Entry, timeNow()))
		}
	}
	return nil
}

// History prints the activity log of a task.
func (c *TaskCommand) History(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return c.errorHandler.HandleSimple(errors.NewInvalidInputError("command", "task history", "usage: tt task history <task-id>"))
	}
	taskID, err := parseID("task_id", args[0])
	if err != nil {
		return c.errorHandler.HandleSimple(err)
	}

	history, err := c.api.TaskHistory(ctx, taskID)
	if err != nil {
		return c.errorHandler.Handle("get task history", err)
	}
	for _, activity := range history {
		c.app.printf("%s  %s\n", activity.CreatedAt.Format(c.app.timeFormat()), activity.Message)
	}
	return nil
}
