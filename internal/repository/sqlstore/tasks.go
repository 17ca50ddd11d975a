package sqlstore

import (
	"context"
	"fmt"

	"task-tracker/internal/domain"
	"task-tracker/internal/repository"
)

// CreateTask creates a new task
func (q *queries) CreateTask(ctx context.Context, task *domain.Task) (repository.InsertResult, error) {
	status := task.Status
	if !status.IsValid() {
		status = domain.StatusToDo
	}
	now := q.now()

	query := `INSERT INTO tasks (task_name, status, created_at, updated_at) VALUES (?, ?, ?, ?)`
	id, err := ExecuteWithLastInsertID(ctx, q.q, query, task.Name, status.String(), q.timeArg(now), q.timeArg(now))
	if err != nil {
		return repository.InsertResult{}, HandleDatabaseError("create task", err)
	}
	return repository.InsertResult{ID: id}, nil
}

// GetTask retrieves a task by ID
func (q *queries) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`
	return QuerySingle(ctx, q.q, query, ScanTask, "task", fmt.Sprintf("%d", id), id)
}

// TaskExists reports whether a task with the ID exists
func (q *queries) TaskExists(ctx context.Context, id int64) (bool, error) {
	return queryExists(ctx, q.q, `SELECT 1 FROM tasks WHERE id = ?`, "check task", id)
}

// CurrentStatus returns the stored status of a task
func (q *queries) CurrentStatus(ctx context.Context, id int64) (domain.TaskStatus, error) {
	task, err := q.GetTask(ctx, id)
	if err != nil {
		return 0, err
	}
	return task.Status, nil
}

// SetStatus persists a new status for a task
func (q *queries) SetStatus(ctx context.Context, id int64, status domain.TaskStatus) error {
	query := `UPDATE tasks SET status = ?, updated_at = ? WHERE id = ?`
	return ExecuteWithRowsAffected(ctx, q.q, query, "task", fmt.Sprintf("%d", id), status.String(), q.timeArg(q.now()), id)
}

// ListTasks retrieves all tasks
func (q *queries) ListTasks(ctx context.Context) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks ORDER BY id ASC`
	return QueryMultiple(ctx, q.q, query, ScanTasks, "tasks")
}
