package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"task-tracker/internal/domain"
	"task-tracker/internal/errors"
	"task-tracker/internal/logging"
	"task-tracker/internal/repository"
	"task-tracker/internal/validation"
)

// TimerService opens and closes time entries and owns the rule that a
// scope has at most one open entry. The rule is held three times over:
// an in-process lock per key, one transaction per sequence, and the
// store's uniqueness constraint which turns a racing insert into a
// conflict.
type TimerService struct {
	store     repository.Store
	policy    Policy
	clock     func() time.Time
	logger    *slog.Logger
	validator *validation.TimeEntryValidator
	locks     *keyedLocks

	observersMu sync.RWMutex
	observers   []TimerObserver
}

// NewTimerService creates a TimerService over store.
func NewTimerService(store repository.Store, opts Options) *TimerService {
	s := &TimerService{
		store:     store,
		policy:    opts.Policy,
		clock:     opts.Clock,
		logger:    opts.Logger,
		validator: validation.NewTimeEntryValidator(),
		locks:     newKeyedLocks(),
	}
	if s.policy == "" {
		s.policy = PolicyPerScope
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	return s
}

// Policy returns the policy the service enforces.
func (s *TimerService) Policy() Policy {
	return s.policy
}

// Subscribe registers an observer for entry start and stop events.
func (s *TimerService) Subscribe(observer TimerObserver) {
	s.observersMu.Lock()
	defer s.observersMu.Unlock()
	s.observers = append(s.observers, observer)
}

// Start opens a new entry for scope.
func (s *TimerService) Start(ctx context.Context, scope domain.Scope, description string) (*domain.TimeEntry, error) {
	if err := s.validateStart(scope, description); err != nil {
		return nil, err
	}

	unlock := s.lock(scope)
	defer unlock()

	var result *TxResult
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		var err error
		result, err = s.StartTx(ctx, tx, scope, description)
		return err
	})
	if err != nil {
		s.logFailure("start timer", scope, err)
		return nil, err
	}

	s.Publish(result)
	return result.Started, nil
}

// StartTx runs the start sequence inside a caller-owned transaction.
// Nothing is published; the caller passes the result to Publish once the
// transaction commits.
func (s *TimerService) StartTx(ctx context.Context, tx repository.Tx, scope domain.Scope, description string) (*TxResult, error) {
	if err := ensureScopeExists(ctx, tx, scope); err != nil {
		return nil, err
	}

	active, err := tx.GetActive(ctx, scope)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, errors.NewConflictError("active time entry", scope.String(), "a timer is already running").
			WithContext("entry_id", active.ID)
	}

	now := s.clock()
	result := &TxResult{}

	if s.policy == PolicyPerUser {
		others, err := tx.ListActiveByUser(ctx, scope.UserID)
		if err != nil {
			return nil, err
		}
		for _, other := range others {
			if other.TaskID == scope.TaskID {
				continue
			}
			closed, err := s.closeTx(ctx, tx, other, now)
			if err != nil {
				return nil, err
			}
			result.Stopped = append(result.Stopped, closed)
		}
	}

	entry := domain.NewTimeEntry(scope, now, description)
	inserted, err := tx.CreateTimeEntry(ctx, &entry)
	if err != nil {
		return nil, err
	}

	result.Started, err = tx.GetTimeEntry(ctx, inserted.ID)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Stop closes the open entry of scope. In StopInternal mode an idle scope
// returns nil, nil.
func (s *TimerService) Stop(ctx context.Context, scope domain.Scope, mode StopMode) (*domain.TimeEntry, error) {
	if err := s.validator.ValidateScope(scope); err != nil {
		return nil, validation.AsAppError(err)
	}

	unlock := s.lock(scope)
	defer unlock()

	var result *TxResult
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		var err error
		result, err = s.StopTx(ctx, tx, scope, mode)
		return err
	})
	if err != nil {
		s.logFailure("stop timer", scope, err)
		return nil, err
	}

	s.Publish(result)
	if len(result.Stopped) == 0 {
		return nil, nil
	}
	return result.Stopped[0], nil
}

// StopTx runs the stop sequence inside a caller-owned transaction.
func (s *TimerService) StopTx(ctx context.Context, tx repository.Tx, scope domain.Scope, mode StopMode) (*TxResult, error) {
	active, err := tx.GetActive(ctx, scope)
	if err != nil {
		return nil, err
	}
	if active == nil {
		if mode == StopInternal {
			return &TxResult{}, nil
		}
		return nil, errors.NewNotFoundError("active time entry", scope.String())
	}

	closed, err := s.closeTx(ctx, tx, active, s.clock())
	if err != nil {
		return nil, err
	}
	return &TxResult{Stopped: []*domain.TimeEntry{closed}}, nil
}

// StopTaskTx closes every open entry on taskID, whatever user owns it.
// The entry of scope, when open, comes first in the result.
func (s *TimerService) StopTaskTx(ctx context.Context, tx repository.Tx, scope domain.Scope) (*TxResult, error) {
	result, err := s.StopTx(ctx, tx, scope, StopInternal)
	if err != nil {
		return nil, err
	}

	taskID, active := scope.TaskID, true
	others, err := tx.ListTimeEntries(ctx, domain.ListFilter{TaskID: &taskID, Active: &active})
	if err != nil {
		return nil, err
	}
	now := s.clock()
	for _, other := range others {
		closed, err := s.closeTx(ctx, tx, other, now)
		if err != nil {
			return nil, err
		}
		result.Stopped = append(result.Stopped, closed)
	}
	return result, nil
}

func (s *TimerService) closeTx(ctx context.Context, tx repository.Tx, entry *domain.TimeEntry, end time.Time) (*domain.TimeEntry, error) {
	minutes, err := domain.DurationMinutes(entry.StartTime, end)
	if err != nil {
		return nil, err
	}
	if err := tx.CloseTimeEntry(ctx, entry.ID, end, minutes); err != nil {
		return nil, err
	}
	return tx.GetTimeEntry(ctx, entry.ID)
}

// Active returns the open entry of scope.
func (s *TimerService) Active(ctx context.Context, scope domain.Scope) (*domain.TimeEntry, error) {
	if err := s.validator.ValidateScope(scope); err != nil {
		return nil, validation.AsAppError(err)
	}

	entry, err := s.store.GetActive(ctx, scope)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, errors.NewNotFoundError("active time entry", scope.String())
	}
	return entry, nil
}

// Get returns one entry by id.
func (s *TimerService) Get(ctx context.Context, id int64) (*domain.TimeEntry, error) {
	if err := s.validator.ValidateTimeEntryID(id); err != nil {
		return nil, validation.AsAppError(err)
	}
	return s.store.GetTimeEntry(ctx, id)
}

// List returns entries matching filter, newest start first.
func (s *TimerService) List(ctx context.Context, filter domain.ListFilter) ([]*domain.TimeEntry, error) {
	if err := s.validator.ValidateListFilter(filter); err != nil {
		return nil, validation.AsAppError(err)
	}
	return s.store.ListTimeEntries(ctx, filter)
}

// Update edits description, duration, or the start/end pair of a closed
// entry. Moving start and end recomputes the duration. An update never
// opens or closes an entry.
func (s *TimerService) Update(ctx context.Context, id int64, input UpdateInput) (*domain.TimeEntry, error) {
	if err := s.validator.ValidateTimeEntryID(id); err != nil {
		return nil, validation.AsAppError(err)
	}

	var updated *domain.TimeEntry
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		current, err := tx.GetTimeEntry(ctx, id)
		if err != nil {
			return err
		}
		if err := s.validator.ValidateUpdate(*current, input); err != nil {
			return validation.AsAppError(err)
		}

		patch := input
		if patch.StartTime != nil && patch.EndTime != nil {
			minutes, err := domain.DurationMinutes(*patch.StartTime, *patch.EndTime)
			if err != nil {
				return err
			}
			patch.DurationMinutes = &minutes
		}

		if err := tx.UpdateTimeEntry(ctx, id, patch); err != nil {
			return err
		}
		updated, err = tx.GetTimeEntry(ctx, id)
		return err
	})
	if err != nil {
		s.logFailure("update time entry", domain.Scope{}, err)
		return nil, err
	}
	return updated, nil
}

// Delete removes an entry. Deleting an active entry discards the session
// and tells observers it stopped.
func (s *TimerService) Delete(ctx context.Context, id int64) error {
	if err := s.validator.ValidateTimeEntryID(id); err != nil {
		return validation.AsAppError(err)
	}

	var deleted *domain.TimeEntry
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		entry, err := tx.GetTimeEntry(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.DeleteTimeEntry(ctx, id); err != nil {
			return err
		}
		deleted = entry
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("time entry deleted", slog.Int64("entry_id", id), slog.Bool("active", deleted.IsActive()))
	if deleted.IsActive() {
		s.Publish(&TxResult{Stopped: []*domain.TimeEntry{deleted}})
	}
	return nil
}

// Publish logs and forwards a committed result to observers, stops first.
func (s *TimerService) Publish(result *TxResult) {
	if result == nil {
		return
	}

	s.observersMu.RLock()
	observers := append([]TimerObserver(nil), s.observers...)
	s.observersMu.RUnlock()

	for _, entry := range result.Stopped {
		attrs := []any{slog.Int64("entry_id", entry.ID), slog.Int64("task_id", entry.TaskID), slog.String("user_id", entry.UserID)}
		if entry.DurationMinutes != nil {
			attrs = append(attrs, slog.Int("duration_minutes", *entry.DurationMinutes))
		}
		s.logger.Info("timer stopped", attrs...)
		for _, o := range observers {
			o.EntryStopped(entry)
		}
	}

	if entry := result.Started; entry != nil {
		s.logger.Info("timer started",
			slog.Int64("entry_id", entry.ID),
			slog.Int64("task_id", entry.TaskID),
			slog.String("user_id", entry.UserID),
			slog.Int("auto_stopped", len(result.Stopped)))
		for _, o := range observers {
			o.EntryStarted(entry)
		}
	}
}

func (s *TimerService) validateStart(scope domain.Scope, description string) error {
	if err := s.validator.ValidateScope(scope); err != nil {
		return validation.AsAppError(err)
	}
	if err := s.validator.ValidateDescription(description); err != nil {
		return validation.AsAppError(err)
	}
	return nil
}

func ensureScopeExists(ctx context.Context, tx repository.Tx, scope domain.Scope) error {
	exists, err := tx.TaskExists(ctx, scope.TaskID)
	if err != nil {
		return err
	}
	if !exists {
		return errors.NewNotFoundError("task", fmt.Sprintf("%d", scope.TaskID))
	}

	if scope.UserID == "" {
		return nil
	}
	exists, err = tx.UserExists(ctx, scope.UserID)
	if err != nil {
		return err
	}
	if !exists {
		return errors.NewNotFoundError("user", scope.UserID)
	}
	return nil
}

func (s *TimerService) lock(scope domain.Scope) func() {
	return s.locks.Lock(s.policy.lockKey(scope))
}

func (s *TimerService) logFailure(op string, scope domain.Scope, err error) {
	if !errors.ShouldLogError(err) {
		return
	}
	s.logger.Error(op+" failed", slog.String("scope", scope.String()), slog.Any("error", err))
}
