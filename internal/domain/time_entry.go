package domain

import (
	"fmt"
	"time"
)

// Scope identifies the unit over which at most one active time entry may
// exist: a task, optionally narrowed to a user. An empty UserID is the
// single-user deployment.
type Scope struct {
	TaskID int64  `json:"task_id" yaml:"task_id"`
	UserID string `json:"user_id,omitempty" yaml:"user_id,omitempty"`
}

// TaskScope returns the scope for a task tracked without a user.
func TaskScope(taskID int64) Scope {
	return Scope{TaskID: taskID}
}

// String renders the scope for log lines and error messages.
func (s Scope) String() string {
	if s.UserID == "" {
		return fmt.Sprintf("task %d", s.TaskID)
	}
	return fmt.Sprintf("task %d for user %s", s.TaskID, s.UserID)
}

// TimeEntry is one contiguous span of tracked work.
type TimeEntry struct {
	ID              int64      `json:"id" yaml:"id"`
	TaskID          int64      `json:"task_id" yaml:"task_id"`
	UserID          string     `json:"user_id,omitempty" yaml:"user_id,omitempty"`
	StartTime       time.Time  `json:"start_time" yaml:"start_time"`
	EndTime         *time.Time `json:"end_time" yaml:"end_time"`
	DurationMinutes *int       `json:"duration_minutes" yaml:"duration_minutes"`
	Description     string     `json:"description" yaml:"description"`
	CreatedAt       time.Time  `json:"created_at" yaml:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" yaml:"updated_at"`
}

// NewTimeEntry creates an open entry for the scope starting at startTime.
func NewTimeEntry(scope Scope, startTime time.Time, description string) TimeEntry {
	return TimeEntry{
		TaskID:      scope.TaskID,
		UserID:      scope.UserID,
		StartTime:   startTime,
		Description: description,
	}
}

// Scope returns the tracking scope the entry belongs to.
func (te TimeEntry) Scope() Scope {
	return Scope{TaskID: te.TaskID, UserID: te.UserID}
}

// IsActive returns true if the time entry is still open (no end time).
func (te TimeEntry) IsActive() bool {
	return te.EndTime == nil
}

// Close returns a copy of the entry with end time and duration set.
func (te TimeEntry) Close(endTime time.Time) (TimeEntry, error) {
	minutes, err := DurationMinutes(te.StartTime, endTime)
	if err != nil {
		return te, err
	}
	te.EndTime = &endTime
	te.DurationMinutes = &minutes
	return te, nil
}

// Elapsed returns how long the entry has been running at now, or its
// recorded span when closed.
func (te TimeEntry) Elapsed(now time.Time) time.Duration {
	if te.EndTime != nil {
		return te.EndTime.Sub(te.StartTime)
	}
	if now.Before(te.StartTime) {
		return 0
	}
	return now.Sub(te.StartTime)
}

// IsValid checks if the time entry has valid data.
func (te TimeEntry) IsValid() bool {
	if te.TaskID <= 0 {
		return false
	}
	if te.StartTime.IsZero() {
		return false
	}
	if te.EndTime != nil && te.EndTime.Before(te.StartTime) {
		return false
	}
	if (te.EndTime == nil) != (te.DurationMinutes == nil) {
		return false
	}
	return true
}

// TimeEntryPatch carries the mutable fields of an update. Nil fields are
// left untouched.
type TimeEntryPatch struct {
	Description     *string
	DurationMinutes *int
	StartTime       *time.Time
	EndTime         *time.Time
}

// IsEmpty reports whether the patch changes nothing.
func (p TimeEntryPatch) IsEmpty() bool {
	return p.Description == nil && p.DurationMinutes == nil && p.StartTime == nil && p.EndTime == nil
}

// ListFilter narrows a time entry listing. Results are always ordered by
// start time, newest first.
type ListFilter struct {
	TaskID *int64
	UserID *string
	Active *bool
	From   *time.Time
	To     *time.Time
	Limit  int
}
