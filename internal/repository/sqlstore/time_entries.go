package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"task-tracker/internal/domain"
	"task-tracker/internal/errors"
	"task-tracker/internal/repository"
)

// CreateTimeEntry creates a new time entry
func (q *queries) CreateTimeEntry(ctx context.Context, entry *domain.TimeEntry) (repository.InsertResult, error) {
	query := `
	INSERT INTO time_entries (task_id, user_id, start_time, end_time, duration_minutes, description, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	var duration interface{}
	if entry.DurationMinutes != nil {
		duration = *entry.DurationMinutes
	}
	now := q.now()

	id, err := ExecuteWithLastInsertID(ctx, q.q, query,
		entry.TaskID, entry.UserID,
		q.timeArg(entry.StartTime), q.timePtrArg(entry.EndTime), duration,
		entry.Description, q.timeArg(now), q.timeArg(now))
	if err != nil {
		if q.dialect.IsUniqueViolation(err) {
			return repository.InsertResult{}, errors.NewConflictError("active time entry", entry.Scope().String(), "a timer is already running")
		}
		return repository.InsertResult{}, HandleDatabaseError("create time entry", err)
	}

	return repository.InsertResult{ID: id}, nil
}

// GetTimeEntry retrieves a time entry by ID
func (q *queries) GetTimeEntry(ctx context.Context, id int64) (*domain.TimeEntry, error) {
	query := `SELECT ` + timeEntryColumns + ` FROM time_entries WHERE id = ?`
	return QuerySingle(ctx, q.q, query, ScanTimeEntry, "time entry", fmt.Sprintf("%d", id), id)
}

// GetActive returns the open entry for the scope, or nil
func (q *queries) GetActive(ctx context.Context, scope domain.Scope) (*domain.TimeEntry, error) {
	query := `SELECT ` + timeEntryColumns + ` FROM time_entries
	WHERE task_id = ? AND user_id = ? AND end_time IS NULL`
	return QueryOptional(ctx, q.q, query, ScanTimeEntry, "active time entry", scope.TaskID, scope.UserID)
}

// ListActiveByUser returns every open entry of the user across tasks
func (q *queries) ListActiveByUser(ctx context.Context, userID string) ([]*domain.TimeEntry, error) {
	query := `SELECT ` + timeEntryColumns + ` FROM time_entries
	WHERE user_id = ? AND end_time IS NULL
	ORDER BY start_time DESC, id DESC`
	return QueryMultiple(ctx, q.q, query, ScanTimeEntries, "active time entries", userID)
}

// CloseTimeEntry closes an open entry
func (q *queries) CloseTimeEntry(ctx context.Context, id int64, endTime time.Time, minutes int) error {
	query := `
	UPDATE time_entries
	SET end_time = ?, duration_minutes = ?, updated_at = ?
	WHERE id = ? AND end_time IS NULL`

	return ExecuteWithRowsAffected(ctx, q.q, query, "active time entry", fmt.Sprintf("%d", id),
		q.timeArg(endTime), minutes, q.timeArg(q.now()), id)
}

// UpdateTimeEntry applies the set fields of patch
func (q *queries) UpdateTimeEntry(ctx context.Context, id int64, patch domain.TimeEntryPatch) error {
	sets := []string{"updated_at = ?"}
	args := []interface{}{q.timeArg(q.now())}

	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.StartTime != nil {
		sets = append(sets, "start_time = ?")
		args = append(args, q.timeArg(*patch.StartTime))
	}
	if patch.EndTime != nil {
		sets = append(sets, "end_time = ?")
		args = append(args, q.timeArg(*patch.EndTime))
	}
	if patch.DurationMinutes != nil {
		sets = append(sets, "duration_minutes = ?")
		args = append(args, *patch.DurationMinutes)
	}

	query := `UPDATE time_entries SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	args = append(args, id)

	return ExecuteWithRowsAffected(ctx, q.q, query, "time entry", fmt.Sprintf("%d", id), args...)
}

// DeleteTimeEntry deletes a time entry by ID
func (q *queries) DeleteTimeEntry(ctx context.Context, id int64) error {
	query := `DELETE FROM time_entries WHERE id = ?`
	return ExecuteWithRowsAffected(ctx, q.q, query, "time entry", fmt.Sprintf("%d", id), id)
}

// ListTimeEntries searches for time entries, newest first
func (q *queries) ListTimeEntries(ctx context.Context, filter domain.ListFilter) ([]*domain.TimeEntry, error) {
	var conditions []string
	var args []interface{}

	if filter.TaskID != nil {
		conditions = append(conditions, "task_id = ?")
		args = append(args, *filter.TaskID)
	}
	if filter.UserID != nil {
		conditions = append(conditions, "user_id = ?")
		args = append(args, *filter.UserID)
	}
	if filter.Active != nil {
		if *filter.Active {
			conditions = append(conditions, "end_time IS NULL")
		} else {
			conditions = append(conditions, "end_time IS NOT NULL")
		}
	}
	if filter.From != nil {
		conditions = append(conditions, "start_time >= ?")
		args = append(args, q.timeArg(*filter.From))
	}
	if filter.To != nil {
		conditions = append(conditions, "start_time <= ?")
		args = append(args, q.timeArg(*filter.To))
	}

	query := `SELECT ` + timeEntryColumns + ` FROM time_entries`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY start_time DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	return QueryMultiple(ctx, q.q, query, ScanTimeEntries, "time entries", args...)
}
