package api

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-tracker/internal/domain"
	"task-tracker/internal/errors"
	"task-tracker/internal/services"
)

func TestStartStopTimer(t *testing.T) {
	// Arrange
	a := setupTestAPI(t)
	ctx := context.Background()
	task, err := a.CreateTask(ctx, "Timer")
	require.NoError(t, err)
	scope := domain.TaskScope(task.ID)

	// Act
	started, err := a.StartTimer(ctx, scope, "")
	require.NoError(t, err)
	_, err = a.StartTimer(ctx, scope, "")
	conflict := err
	stopped, err := a.StopTimer(ctx, scope)
	require.NoError(t, err)
	_, err = a.StopTimer(ctx, scope)

	// Assert
	assert.Equal(t, "Timer", started.Task.Name)
	assert.Equal(t, "running for 0m", started.Duration)
	assert.True(t, errors.IsConflict(conflict))
	assert.Equal(t, "0m", stopped.Duration)
	assert.True(t, errors.IsNotFound(err))
}

func TestActiveTimerAndCurrentSessions(t *testing.T) {
	a := setupTestAPI(t)
	ctx := context.Background()
	first, err := a.CreateTask(ctx, "First")
	require.NoError(t, err)
	second, err := a.CreateTask(ctx, "Second")
	require.NoError(t, err)

	_, err = a.ActiveTimer(ctx, domain.TaskScope(first.ID))
	assert.True(t, errors.IsNotFound(err))

	sessions, err := a.CurrentSessions(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, sessions)

	_, err = a.StartTimer(ctx, domain.TaskScope(first.ID), "")
	require.NoError(t, err)
	_, err = a.StartTimer(ctx, domain.TaskScope(second.ID), "")
	require.NoError(t, err)

	active, err := a.ActiveTimer(ctx, domain.TaskScope(first.ID))
	require.NoError(t, err)
	assert.Equal(t, first.ID, active.Task.ID)

	sessions, err = a.CurrentSessions(ctx, "")
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}

func TestAddManualEntry(t *testing.T) {
	a := setupTestAPI(t)
	ctx := context.Background()
	task, err := a.CreateTask(ctx, "Backfill")
	require.NoError(t, err)
	date := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	entry, err := a.AddManualEntry(ctx, ManualEntryRequest{Scope: domain.TaskScope(task.ID), DurationMinutes: 90, Date: &date})
	require.NoError(t, err)
	assert.True(t, time.Date(2024, 1, 1, 8, 30, 0, 0, time.UTC).Equal(entry.StartTime))

	_, err = a.AddManualEntry(ctx, ManualEntryRequest{Scope: domain.TaskScope(task.ID), DurationMinutes: 1441})
	assert.True(t, errors.IsValidation(err))
}

func TestUpdateAndDeleteEntry(t *testing.T) {
	a := setupTestAPI(t)
	ctx := context.Background()
	task, err := a.CreateTask(ctx, "Editable")
	require.NoError(t, err)
	entry, err := a.AddManualEntry(ctx, ManualEntryRequest{Scope: domain.TaskScope(task.ID), DurationMinutes: 30})
	require.NoError(t, err)

	minutes := 40
	updated, err := a.UpdateEntry(ctx, entry.ID, services.UpdateInput{DurationMinutes: &minutes})
	require.NoError(t, err)
	assert.Equal(t, 40, *updated.DurationMinutes)

	require.NoError(t, a.DeleteEntry(ctx, entry.ID))
	assert.True(t, errors.IsNotFound(a.DeleteEntry(ctx, entry.ID)))
}

func TestListEntries(t *testing.T) {
	a := setupTestAPI(t)
	ctx := context.Background()
	task, err := a.CreateTask(ctx, "History")
	require.NoError(t, err)
	scope := domain.TaskScope(task.ID)

	old := testNow.Add(-48 * time.Hour)
	_, err = a.AddManualEntry(ctx, ManualEntryRequest{Scope: scope, DurationMinutes: 60, Date: &old})
	require.NoError(t, err)
	_, err = a.AddManualEntry(ctx, ManualEntryRequest{Scope: scope, DurationMinutes: 60})
	require.NoError(t, err)
	_, err = a.StartTimer(ctx, scope, "")
	require.NoError(t, err)

	active := true
	tests := []struct {
		name     string
		query    EntryQuery
		expected int
	}{
		{"all", EntryQuery{TaskID: &task.ID}, 3},
		{"active only", EntryQuery{Active: &active}, 1},
		{"since one day", EntryQuery{Since: "1d"}, 2},
		{"limit", EntryQuery{Limit: 1}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := a.ListEntries(ctx, tt.query)
			require.NoError(t, err)
			assert.Len(t, entries, tt.expected)
		})
	}

	_, err = a.ListEntries(ctx, EntryQuery{Since: "yesterday"})
	assert.True(t, errors.IsValidation(err))
}

func TestChangeTaskStatus(t *testing.T) {
	a := setupTestAPI(t)
	ctx := context.Background()
	task, err := a.CreateTask(ctx, "Workflow")
	require.NoError(t, err)

	change, err := a.ChangeTaskStatus(ctx, task.ID, "", "in_progress")
	require.NoError(t, err)
	assert.True(t, change.Changed)
	require.NotNil(t, change.Entry)
	assert.True(t, change.Entry.IsActive())

	_, err = a.ChangeTaskStatus(ctx, task.ID, "", "blocked")
	assert.True(t, errors.IsValidation(err))
}

func TestParseTimeRange(t *testing.T) {
	a := setupTestAPI(t)

	timeRange, err := a.ParseTimeRange(context.Background(), "2h")
	require.NoError(t, err)
	assert.True(t, testNow.Add(-2*time.Hour).Equal(timeRange.Start))
	assert.True(t, testNow.Equal(timeRange.End))

	_, err = a.ParseTimeRange(context.Background(), "")
	assert.True(t, errors.IsValidation(err))
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in       time.Duration
		expected string
	}{
		{-time.Minute, "0m"},
		{45 * time.Minute, "45m"},
		{90 * time.Minute, "1h 30m"},
		{2 * time.Hour, "2h 0m"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatDuration(tt.in))
		})
	}
}

func TestDescribeDuration(t *testing.T) {
	start := testNow.Add(-75 * time.Minute)
	running := &domain.TimeEntry{StartTime: start}
	assert.Equal(t, "running for 1h 15m", DescribeDuration(running, testNow))

	closed, err := running.Close(testNow)
	require.NoError(t, err)
	assert.Equal(t, "1h 15m", DescribeDuration(&closed, testNow.Add(time.Hour)))
}
