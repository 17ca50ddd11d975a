package api

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-tracker/internal/errors"
	"task-tracker/internal/repository/sqlite"
	"task-tracker/internal/services"
)

var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func setupTestAPI(t *testing.T) API {
	t.Helper()
	clock := func() time.Time { return testNow }

	store, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "tt.db"), sqlite.Options{Clock: clock})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	svc := services.NewContainer(store, services.Options{Clock: clock})
	return New(store, svc, clock)
}

func TestCreateTask(t *testing.T) {
	tests := []struct {
		name           string
		input          string
		expectedName   string
		errorAssertion func(t *testing.T, err error)
	}{
		{
			name:         "should create task with trimmed name",
			input:        "  Write docs  ",
			expectedName: "Write docs",
		},
		{
			name:  "should reject empty name",
			input: "   ",
			errorAssertion: func(t *testing.T, err error) {
				assert.True(t, errors.IsValidation(err))
				assert.Contains(t, errors.GetUserMessage(err), "name")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			a := setupTestAPI(t)

			// Act
			task, err := a.CreateTask(context.Background(), tt.input)

			// Assert
			if tt.errorAssertion != nil {
				require.Error(t, err)
				tt.errorAssertion(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedName, task.Name)
			assert.Greater(t, task.ID, int64(0))
		})
	}
}

func TestGetTask(t *testing.T) {
	a := setupTestAPI(t)
	ctx := context.Background()
	created, err := a.CreateTask(ctx, "Lookup")
	require.NoError(t, err)

	task, err := a.GetTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lookup", task.Name)

	_, err = a.GetTask(ctx, 999)
	assert.True(t, errors.IsNotFound(err))

	_, err = a.GetTask(ctx, 0)
	assert.True(t, errors.IsValidation(err))
}

func TestListTasks(t *testing.T) {
	a := setupTestAPI(t)
	ctx := context.Background()
	for _, name := range []string{"One", "Two"} {
		_, err := a.CreateTask(ctx, name)
		require.NoError(t, err)
	}

	tasks, err := a.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "One", tasks[0].Name)
}

func TestCreateUser(t *testing.T) {
	a := setupTestAPI(t)
	ctx := context.Background()

	user, err := a.CreateUser(ctx, "alice", "")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.DisplayName)

	_, err = a.CreateUser(ctx, "alice", "Alice")
	assert.True(t, errors.IsConflict(err))

	_, err = a.CreateUser(ctx, "not valid", "")
	assert.True(t, errors.IsValidation(err))
}

func TestTaskHistory(t *testing.T) {
	a := setupTestAPI(t)
	ctx := context.Background()
	task, err := a.CreateTask(ctx, "Tracked")
	require.NoError(t, err)

	_, err = a.ChangeTaskStatus(ctx, task.ID, "", "in_progress")
	require.NoError(t, err)

	history, err := a.TaskHistory(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "status changed from to_do to in_progress", history[0].Message)

	_, err = a.TaskHistory(ctx, 404)
	assert.True(t, errors.IsNotFound(err))
}
