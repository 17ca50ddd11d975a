package repository

import (
	"context"
	"time"

	"task-tracker/internal/domain"
)

// InsertResult is the only thing a create operation hands back, whatever
// the backend reports.
type InsertResult struct {
	ID int64
}

// TimeEntryStore is the persistence boundary for time entries.
type TimeEntryStore interface {
	// CreateTimeEntry inserts entry. A second open entry for the same scope
	// is rejected with a conflict error.
	CreateTimeEntry(ctx context.Context, entry *domain.TimeEntry) (InsertResult, error)
	GetTimeEntry(ctx context.Context, id int64) (*domain.TimeEntry, error)
	// GetActive returns the open entry for scope, or nil when the scope is idle.
	GetActive(ctx context.Context, scope domain.Scope) (*domain.TimeEntry, error)
	ListActiveByUser(ctx context.Context, userID string) ([]*domain.TimeEntry, error)
	// CloseTimeEntry sets end time and duration on an open entry. Closing a
	// missing or already closed entry is a not found error.
	CloseTimeEntry(ctx context.Context, id int64, endTime time.Time, minutes int) error
	UpdateTimeEntry(ctx context.Context, id int64, patch domain.TimeEntryPatch) error
	DeleteTimeEntry(ctx context.Context, id int64) error
	// ListTimeEntries returns matching entries newest first.
	ListTimeEntries(ctx context.Context, filter domain.ListFilter) ([]*domain.TimeEntry, error)
}

// TaskDirectory is the slice of the task collaborator the tracker needs.
type TaskDirectory interface {
	CreateTask(ctx context.Context, task *domain.Task) (InsertResult, error)
	GetTask(ctx context.Context, id int64) (*domain.Task, error)
	TaskExists(ctx context.Context, id int64) (bool, error)
	CurrentStatus(ctx context.Context, id int64) (domain.TaskStatus, error)
	SetStatus(ctx context.Context, id int64, status domain.TaskStatus) error
	ListTasks(ctx context.Context) ([]*domain.Task, error)
}

// UserDirectory resolves tracking users.
type UserDirectory interface {
	CreateUser(ctx context.Context, user *domain.User) error
	UserExists(ctx context.Context, id string) (bool, error)
}

// ActivityLog records human readable task history.
type ActivityLog interface {
	AppendActivity(ctx context.Context, taskID int64, text string) error
	ListActivity(ctx context.Context, taskID int64) ([]*domain.Activity, error)
}

// Tx is every store operation bound to one transaction.
type Tx interface {
	TimeEntryStore
	TaskDirectory
	UserDirectory
	ActivityLog
}

// Store runs operations either directly or inside WithinTx. Writes made
// by fn commit together when it returns nil and roll back together
// otherwise.
type Store interface {
	Tx
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
	Close() error
}
