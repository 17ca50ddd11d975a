package services

import (
	"context"
	"fmt"
	"log/slog"

	"task-tracker/internal/domain"
	"task-tracker/internal/logging"
	"task-tracker/internal/repository"
	"task-tracker/internal/validation"
)

// StatusStartDescription is given to entries opened by a status change.
const StatusStartDescription = "Started from status change to in_progress"

// Transition decides what moving a task from old to new asks of its timer.
func Transition(old, new domain.TaskStatus) TimerAction {
	if old == new {
		return ActionNone
	}
	switch wasRunning, running := isRunning(old), isRunning(new); {
	case !wasRunning && running:
		return ActionStart
	case wasRunning && !running:
		return ActionStop
	default:
		return ActionNone
	}
}

func isRunning(status domain.TaskStatus) bool {
	switch status {
	case domain.StatusInProgress:
		return true
	case domain.StatusToDo, domain.StatusOnHold, domain.StatusDone:
		return false
	default:
		panic(fmt.Sprintf("unhandled task status %v", status))
	}
}

// StatusService changes task status and keeps the task's timer in step:
// entering in_progress starts it, leaving in_progress stops it. Status,
// timer and activity log commit together or not at all.
type StatusService struct {
	store         repository.Store
	timers        *TimerService
	logger        *slog.Logger
	taskValidator *validation.TaskValidator
}

// NewStatusService creates a StatusService that drives timers.
func NewStatusService(store repository.Store, timers *TimerService, opts Options) *StatusService {
	s := &StatusService{
		store:         store,
		timers:        timers,
		logger:        opts.Logger,
		taskValidator: validation.NewTaskValidator(),
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	return s
}

// ChangeStatus moves taskID to newStatus on behalf of userID.
func (s *StatusService) ChangeStatus(ctx context.Context, taskID int64, userID string, newStatus domain.TaskStatus) (*StatusChange, error) {
	if err := s.taskValidator.ValidateTaskID(taskID); err != nil {
		return nil, validation.AsAppError(err)
	}
	if !newStatus.IsValid() {
		_, err := s.taskValidator.ValidateStatus(newStatus.String())
		return nil, validation.AsAppError(err)
	}
	scope := domain.Scope{TaskID: taskID, UserID: userID}

	unlock := s.timers.lock(scope)
	defer unlock()

	change := &StatusChange{TaskID: taskID, New: newStatus}
	var timerResult *TxResult

	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		old, err := tx.CurrentStatus(ctx, taskID)
		if err != nil {
			return err
		}
		change.Old = old
		change.Action = Transition(old, newStatus)
		if old == newStatus {
			return nil
		}

		switch change.Action {
		case ActionStart:
			timerResult, err = s.timers.StartTx(ctx, tx, scope, StatusStartDescription)
			if err != nil {
				return err
			}
			change.Entry = timerResult.Started
			if err := s.holdAutoStopped(ctx, tx, timerResult.Stopped); err != nil {
				return err
			}
		case ActionStop:
			timerResult, err = s.timers.StopTaskTx(ctx, tx, scope)
			if err != nil {
				return err
			}
			if len(timerResult.Stopped) > 0 && timerResult.Stopped[0].UserID == userID {
				change.Entry = timerResult.Stopped[0]
			}
		case ActionNone:
		}

		if err := tx.SetStatus(ctx, taskID, newStatus); err != nil {
			return err
		}
		if err := tx.AppendActivity(ctx, taskID, statusActivity(old, newStatus)); err != nil {
			return err
		}
		change.Changed = true
		return nil
	})
	if err != nil {
		s.timers.logFailure("change task status", scope, err)
		return nil, err
	}

	if change.Changed {
		s.logger.Info("task status changed",
			slog.Int64("task_id", taskID),
			slog.String("from", change.Old.String()),
			slog.String("to", change.New.String()),
			slog.String("timer", change.Action.String()))
	}
	s.timers.Publish(timerResult)
	return change, nil
}

// holdAutoStopped moves tasks whose timer the per_user policy just closed
// from in_progress to on_hold, unless another user still runs them.
func (s *StatusService) holdAutoStopped(ctx context.Context, tx repository.Tx, stopped []*domain.TimeEntry) error {
	active := true
	for _, entry := range stopped {
		status, err := tx.CurrentStatus(ctx, entry.TaskID)
		if err != nil {
			return err
		}
		if status != domain.StatusInProgress {
			continue
		}

		taskID := entry.TaskID
		running, err := tx.ListTimeEntries(ctx, domain.ListFilter{TaskID: &taskID, Active: &active, Limit: 1})
		if err != nil {
			return err
		}
		if len(running) > 0 {
			continue
		}

		if err := tx.SetStatus(ctx, taskID, domain.StatusOnHold); err != nil {
			return err
		}
		text := statusActivity(domain.StatusInProgress, domain.StatusOnHold) + " (timer auto-stopped)"
		if err := tx.AppendActivity(ctx, taskID, text); err != nil {
			return err
		}
	}
	return nil
}

// History returns the activity log of a task, oldest first.
func (s *StatusService) History(ctx context.Context, taskID int64) ([]*domain.Activity, error) {
	if err := s.taskValidator.ValidateTaskID(taskID); err != nil {
		return nil, validation.AsAppError(err)
	}
	return s.store.ListActivity(ctx, taskID)
}

func statusActivity(old, new domain.TaskStatus) string {
	return fmt.Sprintf("status changed from %s to %s", old, new)
}
