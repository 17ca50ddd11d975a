package services

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"task-tracker/internal/domain"
	"task-tracker/internal/repository"
)

// Policy selects the scope the single-active-entry rule is enforced over
// when a timer starts.
type Policy string

const (
	// PolicyPerScope allows one running timer per task (and user).
	PolicyPerScope Policy = "per_scope"
	// PolicyPerUser allows one running timer per user across all tasks;
	// starting a new one auto-stops the others.
	PolicyPerUser Policy = "per_user"
)

// ParsePolicy converts a config value into a Policy. Empty is per_scope.
func ParsePolicy(raw string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", PolicyPerScope:
		return PolicyPerScope, nil
	case PolicyPerUser:
		return PolicyPerUser, nil
	default:
		return "", fmt.Errorf("unknown tracking policy %q", raw)
	}
}

// lockKey is the in-process lock a start or stop for scope must hold.
// Under per_user every task of the user shares one key so auto-stop and
// start cannot interleave.
func (p Policy) lockKey(scope domain.Scope) string {
	if p == PolicyPerUser {
		return "user:" + scope.UserID
	}
	return fmt.Sprintf("task:%d|user:%s", scope.TaskID, scope.UserID)
}

// StopMode decides what stopping an idle scope means.
type StopMode int

const (
	// StopExplicit is a user request; an idle scope is a not found error.
	StopExplicit StopMode = iota
	// StopInternal comes from a status transition; an idle scope is fine.
	StopInternal
)

// TimerAction is what a status transition asks of the timer.
type TimerAction int

const (
	ActionNone TimerAction = iota
	ActionStart
	ActionStop
)

func (a TimerAction) String() string {
	switch a {
	case ActionStart:
		return "start"
	case ActionStop:
		return "stop"
	default:
		return "none"
	}
}

// TimerObserver is told about entries opening and closing after the
// change has committed. Implementations must not block.
type TimerObserver interface {
	EntryStarted(entry *domain.TimeEntry)
	EntryStopped(entry *domain.TimeEntry)
}

// TxResult collects what a transactional timer call changed.
type TxResult struct {
	Started *domain.TimeEntry
	Stopped []*domain.TimeEntry
}

// UpdateInput carries the editable fields of a time entry.
type UpdateInput = domain.TimeEntryPatch

// StatusChange reports the outcome of a task status transition.
type StatusChange struct {
	TaskID  int64             `json:"task_id" yaml:"task_id"`
	Old     domain.TaskStatus `json:"old_status" yaml:"old_status"`
	New     domain.TaskStatus `json:"new_status" yaml:"new_status"`
	Changed bool              `json:"changed" yaml:"changed"`
	Action  TimerAction       `json:"-" yaml:"-"`
	// Entry is the entry the transition opened or closed, if any.
	Entry *domain.TimeEntry `json:"entry,omitempty" yaml:"entry,omitempty"`
}

// Options are shared by the services.
type Options struct {
	Policy Policy
	Clock  func() time.Time
	Logger *slog.Logger
}

// Container wires the services over one store.
type Container struct {
	Timers *TimerService
	Manual *ManualEntryService
	Status *StatusService
}

// NewContainer builds every service over store.
func NewContainer(store repository.Store, opts Options) *Container {
	timers := NewTimerService(store, opts)
	return &Container{
		Timers: timers,
		Manual: NewManualEntryService(store, opts),
		Status: NewStatusService(store, timers, opts),
	}
}
