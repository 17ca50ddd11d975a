package sqlstore

import (
	"database/sql"

	"task-tracker/internal/domain"
)

// Scanner interface defines the common scanning behavior for both sql.Row and sql.Rows
type Scanner interface {
	Scan(dest ...interface{}) error
}

// Rows interface defines the common behavior for sql.Rows
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

const timeEntryColumns = `id, task_id, user_id, start_time, end_time, duration_minutes, description, created_at, updated_at`

// ScanTimeEntry scans a single time entry from a database row
func ScanTimeEntry(scanner Scanner) (*domain.TimeEntry, error) {
	entry := &domain.TimeEntry{}
	var start, end, created, updated dbTime
	var duration sql.NullInt64

	err := scanner.Scan(
		&entry.ID,
		&entry.TaskID,
		&entry.UserID,
		&start,
		&end,
		&duration,
		&entry.Description,
		&created,
		&updated,
	)
	if err != nil {
		return nil, err
	}

	entry.StartTime = start.Time
	entry.EndTime = end.Ptr()
	if duration.Valid {
		minutes := int(duration.Int64)
		entry.DurationMinutes = &minutes
	}
	entry.CreatedAt = created.Time
	entry.UpdatedAt = updated.Time

	return entry, nil
}

// ScanTimeEntries scans multiple time entries from database rows
func ScanTimeEntries(rows Rows) ([]*domain.TimeEntry, error) {
	return scanAll(rows, ScanTimeEntry)
}

const taskColumns = `id, task_name, status, created_at, updated_at`

// ScanTask scans a single task from a database row
func ScanTask(scanner Scanner) (*domain.Task, error) {
	task := &domain.Task{}
	var status string
	var created, updated dbTime

	if err := scanner.Scan(&task.ID, &task.Name, &status, &created, &updated); err != nil {
		return nil, err
	}

	parsed, err := domain.ParseTaskStatus(status)
	if err != nil {
		return nil, err
	}
	task.Status = parsed
	task.CreatedAt = created.Time
	task.UpdatedAt = updated.Time

	return task, nil
}

// ScanTasks scans multiple tasks from database rows
func ScanTasks(rows Rows) ([]*domain.Task, error) {
	return scanAll(rows, ScanTask)
}

// ScanActivity scans a single activity log line
func ScanActivity(scanner Scanner) (*domain.Activity, error) {
	activity := &domain.Activity{}
	var created dbTime
	if err := scanner.Scan(&activity.ID, &activity.TaskID, &activity.Message, &created); err != nil {
		return nil, err
	}
	activity.CreatedAt = created.Time
	return activity, nil
}

// ScanActivities scans multiple activity log lines
func ScanActivities(rows Rows) ([]*domain.Activity, error) {
	return scanAll(rows, ScanActivity)
}

func scanAll[T any](rows Rows, scan func(Scanner) (*T, error)) ([]*T, error) {
	var results []*T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}
