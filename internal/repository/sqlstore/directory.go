package sqlstore

import (
	"context"

	"task-tracker/internal/domain"
	"task-tracker/internal/errors"
)

// CreateUser registers a tracking user
func (q *queries) CreateUser(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (id, display_name, created_at) VALUES (?, ?, ?)`
	if _, err := q.q.ExecContext(ctx, query, user.ID, user.DisplayName, q.timeArg(q.now())); err != nil {
		if q.dialect.IsUniqueViolation(err) {
			return errors.NewConflictError("user", user.ID, "already exists")
		}
		return HandleDatabaseError("create user", err)
	}
	return nil
}

// UserExists reports whether the user is registered
func (q *queries) UserExists(ctx context.Context, id string) (bool, error) {
	return queryExists(ctx, q.q, `SELECT 1 FROM users WHERE id = ?`, "check user", id)
}

// AppendActivity adds a line to the task's history
func (q *queries) AppendActivity(ctx context.Context, taskID int64, text string) error {
	query := `INSERT INTO activity_log (task_id, message, created_at) VALUES (?, ?, ?)`
	if _, err := q.q.ExecContext(ctx, query, taskID, text, q.timeArg(q.now())); err != nil {
		return HandleDatabaseError("append activity", err)
	}
	return nil
}

// ListActivity returns a task's history, oldest first
func (q *queries) ListActivity(ctx context.Context, taskID int64) ([]*domain.Activity, error) {
	query := `SELECT id, task_id, message, created_at FROM activity_log WHERE task_id = ? ORDER BY id ASC`
	return QueryMultiple(ctx, q.q, query, ScanActivities, "activity", taskID)
}
