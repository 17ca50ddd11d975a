package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"task-tracker/internal/domain"
	"task-tracker/internal/logging"
	"task-tracker/internal/repository"
	"task-tracker/internal/validation"
)

// ManualEntryService records backdated work as already closed entries.
// It never opens an entry, so it takes no timer locks.
type ManualEntryService struct {
	store     repository.Store
	clock     func() time.Time
	logger    *slog.Logger
	validator *validation.TimeEntryValidator
}

// NewManualEntryService creates a ManualEntryService over store.
func NewManualEntryService(store repository.Store, opts Options) *ManualEntryService {
	m := &ManualEntryService{
		store:     store,
		clock:     opts.Clock,
		logger:    opts.Logger,
		validator: validation.NewTimeEntryValidator(),
	}
	if m.clock == nil {
		m.clock = time.Now
	}
	if m.logger == nil {
		m.logger = logging.Discard()
	}
	return m
}

// ManualDescription is the description given to a manual entry saved
// without one.
func ManualDescription(minutes int) string {
	return fmt.Sprintf("Manual entry: %d min", minutes)
}

// AddManual records minutes of work ending at referenceDate, or now when
// referenceDate is nil.
func (m *ManualEntryService) AddManual(ctx context.Context, scope domain.Scope, minutes int, referenceDate *time.Time, description string) (*domain.TimeEntry, error) {
	if err := m.validator.ValidateManual(scope, minutes, description); err != nil {
		return nil, validation.AsAppError(err)
	}
	if description == "" {
		description = ManualDescription(minutes)
	}

	end := m.clock()
	if referenceDate != nil {
		end = *referenceDate
	}
	start := end.Add(-time.Duration(minutes) * time.Minute)

	entry, err := domain.NewTimeEntry(scope, start, description).Close(end)
	if err != nil {
		return nil, err
	}

	var created *domain.TimeEntry
	err = m.store.WithinTx(ctx, func(tx repository.Tx) error {
		if err := ensureScopeExists(ctx, tx, scope); err != nil {
			return err
		}
		inserted, err := tx.CreateTimeEntry(ctx, &entry)
		if err != nil {
			return err
		}
		created, err = tx.GetTimeEntry(ctx, inserted.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("manual entry added",
		slog.Int64("entry_id", created.ID),
		slog.Int64("task_id", created.TaskID),
		slog.String("user_id", created.UserID),
		slog.Int("duration_minutes", minutes))
	return created, nil
}
