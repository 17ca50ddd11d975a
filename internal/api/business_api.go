package api

import (
	"context"
	"fmt"
	"time"

	"task-tracker/internal/domain"
	"task-tracker/internal/errors"
	"task-tracker/internal/repository"
	"task-tracker/internal/services"
	"task-tracker/internal/validation"
)

// TaskSession pairs a time entry with its task for display.
type TaskSession struct {
	Task      *domain.Task      `json:"task" yaml:"task"`
	TimeEntry *domain.TimeEntry `json:"time_entry" yaml:"time_entry"`
	Duration  string            `json:"duration" yaml:"duration"` // Human-readable
}

// TimeRange represents a time period with start and end times
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ManualEntryRequest describes backdated work.
type ManualEntryRequest struct {
	Scope           domain.Scope
	DurationMinutes int
	// Date is when the work ended; nil means now.
	Date        *time.Time
	Description string
}

// EntryQuery filters a listing. Since is a shorthand like "2h" and, when
// set, overrides From.
type EntryQuery struct {
	TaskID *int64
	UserID *string
	Active *bool
	Since  string
	From   *time.Time
	To     *time.Time
	Limit  int
}

// BusinessAPI is the time tracking workflow surface.
type BusinessAPI interface {
	// ========== Timer Workflows ==========

	// StartTimer opens a timer for scope. Conflict when one is already running.
	StartTimer(ctx context.Context, scope domain.Scope, description string) (*TaskSession, error)

	// StopTimer closes the running timer of scope. Not found when idle.
	StopTimer(ctx context.Context, scope domain.Scope) (*TaskSession, error)

	// ActiveTimer returns the running timer of scope.
	ActiveTimer(ctx context.Context, scope domain.Scope) (*TaskSession, error)

	// CurrentSessions returns every running timer of the user, newest first.
	CurrentSessions(ctx context.Context, userID string) ([]*TaskSession, error)

	// ChangeTaskStatus moves a task to status, starting or stopping its timer.
	ChangeTaskStatus(ctx context.Context, taskID int64, userID string, status string) (*services.StatusChange, error)

	// ========== Entry Operations ==========

	AddManualEntry(ctx context.Context, req ManualEntryRequest) (*domain.TimeEntry, error)
	GetEntry(ctx context.Context, id int64) (*domain.TimeEntry, error)
	UpdateEntry(ctx context.Context, id int64, input services.UpdateInput) (*domain.TimeEntry, error)
	DeleteEntry(ctx context.Context, id int64) error
	ListEntries(ctx context.Context, query EntryQuery) ([]*domain.TimeEntry, error)

	// ParseTimeRange converts time shorthand ("30m", "2h", "1d") to actual time range
	ParseTimeRange(ctx context.Context, shorthand string) (*TimeRange, error)
}

type businessAPIImpl struct {
	store              repository.Store
	services           *services.Container
	clock              func() time.Time
	taskValidator      *validation.TaskValidator
	timeEntryValidator *validation.TimeEntryValidator
	validator          *validation.Validator
}

func newBusinessAPI(store repository.Store, svc *services.Container, clock func() time.Time) *businessAPIImpl {
	return &businessAPIImpl{
		store:              store,
		services:           svc,
		clock:              clock,
		taskValidator:      validation.NewTaskValidator(),
		timeEntryValidator: validation.NewTimeEntryValidator(),
		validator:          validation.NewValidator(),
	}
}

// ========== Timer Workflows ==========

func (b *businessAPIImpl) StartTimer(ctx context.Context, scope domain.Scope, description string) (*TaskSession, error) {
	entry, err := b.services.Timers.Start(ctx, scope, description)
	if err != nil {
		return nil, err
	}
	return b.session(ctx, entry)
}

func (b *businessAPIImpl) StopTimer(ctx context.Context, scope domain.Scope) (*TaskSession, error) {
	entry, err := b.services.Timers.Stop(ctx, scope, services.StopExplicit)
	if err != nil {
		return nil, err
	}
	return b.session(ctx, entry)
}

func (b *businessAPIImpl) ActiveTimer(ctx context.Context, scope domain.Scope) (*TaskSession, error) {
	entry, err := b.services.Timers.Active(ctx, scope)
	if err != nil {
		return nil, err
	}
	return b.session(ctx, entry)
}

func (b *businessAPIImpl) CurrentSessions(ctx context.Context, userID string) ([]*TaskSession, error) {
	active := true
	entries, err := b.services.Timers.List(ctx, domain.ListFilter{UserID: &userID, Active: &active})
	if err != nil {
		return nil, err
	}

	sessions := make([]*TaskSession, 0, len(entries))
	for _, entry := range entries {
		session, err := b.session(ctx, entry)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

func (b *businessAPIImpl) ChangeTaskStatus(ctx context.Context, taskID int64, userID string, status string) (*services.StatusChange, error) {
	parsed, err := b.taskValidator.ValidateStatus(status)
	if err != nil {
		return nil, validation.AsAppError(err)
	}
	return b.services.Status.ChangeStatus(ctx, taskID, userID, parsed)
}

// ========== Entry Operations ==========

func (b *businessAPIImpl) AddManualEntry(ctx context.Context, req ManualEntryRequest) (*domain.TimeEntry, error) {
	return b.services.Manual.AddManual(ctx, req.Scope, req.DurationMinutes, req.Date, req.Description)
}

func (b *businessAPIImpl) GetEntry(ctx context.Context, id int64) (*domain.TimeEntry, error) {
	return b.services.Timers.Get(ctx, id)
}

func (b *businessAPIImpl) UpdateEntry(ctx context.Context, id int64, input services.UpdateInput) (*domain.TimeEntry, error) {
	return b.services.Timers.Update(ctx, id, input)
}

func (b *businessAPIImpl) DeleteEntry(ctx context.Context, id int64) error {
	return b.services.Timers.Delete(ctx, id)
}

func (b *businessAPIImpl) ListEntries(ctx context.Context, query EntryQuery) ([]*domain.TimeEntry, error) {
	filter := domain.ListFilter{
		TaskID: query.TaskID,
		UserID: query.UserID,
		Active: query.Active,
		From:   query.From,
		To:     query.To,
		Limit:  query.Limit,
	}

	if query.Since != "" {
		timeRange, err := b.ParseTimeRange(ctx, query.Since)
		if err != nil {
			return nil, err
		}
		filter.From = &timeRange.Start
	}

	return b.services.Timers.List(ctx, filter)
}

func (b *businessAPIImpl) ParseTimeRange(ctx context.Context, shorthand string) (*TimeRange, error) {
	if err := b.timeEntryValidator.ValidateTimeShorthand(shorthand); err != nil {
		return nil, validation.AsAppError(err)
	}

	now := b.clock()
	start, err := b.validator.ParseTimeShorthand(shorthand, now)
	if err != nil {
		return nil, errors.NewInvalidInputError("since", shorthand, err.Error())
	}
	return &TimeRange{Start: start, End: now}, nil
}

func (b *businessAPIImpl) session(ctx context.Context, entry *domain.TimeEntry) (*TaskSession, error) {
	task, err := b.store.GetTask(ctx, entry.TaskID)
	if err != nil {
		return nil, err
	}
	return &TaskSession{
		Task:      task,
		TimeEntry: entry,
		Duration:  DescribeDuration(entry, b.clock()),
	}, nil
}

// DescribeDuration renders an entry's length: "running for 1h 5m" while
// active, "1h 5m" once closed.
func DescribeDuration(entry *domain.TimeEntry, now time.Time) string {
	if entry.IsActive() {
		return "running for " + FormatDuration(entry.Elapsed(now))
	}
	if entry.DurationMinutes != nil {
		return FormatDuration(time.Duration(*entry.DurationMinutes) * time.Minute)
	}
	return FormatDuration(entry.Elapsed(now))
}

// FormatDuration formats a duration into human-readable string
func FormatDuration(duration time.Duration) string {
	if duration < 0 {
		return "0m"
	}

	hours := int(duration.Hours())
	minutes := int(duration.Minutes()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
