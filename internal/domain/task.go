package domain

import (
	"fmt"
	"strings"
	"time"
)

// TaskStatus is the workflow state of a task. The set is closed: every
// switch over it must handle all four values.
type TaskStatus int

const (
	StatusToDo TaskStatus = iota + 1
	StatusInProgress
	StatusOnHold
	StatusDone
)

// String returns the storage and wire form of the status.
func (s TaskStatus) String() string {
	switch s {
	case StatusToDo:
		return "to_do"
	case StatusInProgress:
		return "in_progress"
	case StatusOnHold:
		return "on_hold"
	case StatusDone:
		return "done"
	default:
		return fmt.Sprintf("TaskStatus(%d)", int(s))
	}
}

// IsValid reports whether s is one of the known statuses.
func (s TaskStatus) IsValid() bool {
	switch s {
	case StatusToDo, StatusInProgress, StatusOnHold, StatusDone:
		return true
	default:
		return false
	}
}

// ParseTaskStatus converts the wire form back into a TaskStatus.
func ParseTaskStatus(raw string) (TaskStatus, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "to_do":
		return StatusToDo, nil
	case "in_progress":
		return StatusInProgress, nil
	case "on_hold":
		return StatusOnHold, nil
	case "done":
		return StatusDone, nil
	default:
		return 0, fmt.Errorf("unknown task status %q", raw)
	}
}

// MarshalText implements encoding.TextMarshaler so statuses render as strings in JSON and YAML.
func (s TaskStatus) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("invalid task status %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *TaskStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseTaskStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Task is the external task entity. The tracker only needs its identity,
// name and status.
type Task struct {
	ID        int64      `json:"id" yaml:"id"`
	Name      string     `json:"name" yaml:"name"`
	Status    TaskStatus `json:"status" yaml:"status"`
	CreatedAt time.Time  `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" yaml:"updated_at"`
}

// NewTask creates a new Task with the given name in the to_do state.
func NewTask(name string) Task {
	return Task{
		Name:   name,
		Status: StatusToDo,
	}
}

// IsValid checks if the task has valid data.
func (t Task) IsValid() bool {
	return strings.TrimSpace(t.Name) != "" && t.Status.IsValid()
}

// String returns the task name for display purposes.
func (t Task) String() string {
	return t.Name
}
