package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-tracker/internal/api"
	"task-tracker/internal/repository/sqlite"
	"task-tracker/internal/services"
)

var testNow = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

type testServer struct {
	t       *testing.T
	handler http.Handler
	api     api.API
}

func setupTestServer(t *testing.T, policy services.Policy) *testServer {
	t.Helper()
	clock := func() time.Time { return testNow }

	store, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "tt.db"), sqlite.Options{Clock: clock})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	a := api.New(store, services.NewContainer(store, services.Options{Policy: policy, Clock: clock}), clock)
	return &testServer{t: t, handler: NewServer(a, Options{}).Handler(), api: a}
}

func (s *testServer) do(method, path string, body interface{}, headers ...string) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)

	var env envelope
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func (s *testServer) createTask(name string) int64 {
	s.t.Helper()
	task, err := s.api.CreateTask(context.Background(), name)
	require.NoError(s.t, err)
	return task.ID
}

func TestHealthz(t *testing.T) {
	srv := setupTestServer(t, services.PolicyPerScope)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	srv.handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestRequestIDIsEchoed(t *testing.T) {
	srv := setupTestServer(t, services.PolicyPerScope)

	w, _ := srv.do(http.MethodGet, "/api/tasks", nil, RequestIDHeader, "abc-123")

	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestTimerLifecycle(t *testing.T) {
	srv := setupTestServer(t, services.PolicyPerScope)
	taskID := srv.createTask("API work")

	w, env := srv.do(http.MethodPost, "/api/timers/start", body{"task_id": taskID})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Success)

	w, env = srv.do(http.MethodPost, "/api/timers/start", body{"task_id": taskID})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "CONFLICT", env.Code)

	w, _ = srv.do(http.MethodGet, "/api/timers/active?task_id=1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = srv.do(http.MethodPost, "/api/timers/stop", body{"task_id": taskID})
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = srv.do(http.MethodPost, "/api/timers/stop", body{"task_id": taskID})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", env.Code)

	w, _ = srv.do(http.MethodGet, "/api/timers/active?task_id=1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStartTimerErrors(t *testing.T) {
	srv := setupTestServer(t, services.PolicyPerScope)

	tests := []struct {
		name           string
		body           interface{}
		expectedStatus int
	}{
		{"missing task", body{"task_id": 42}, http.StatusNotFound},
		{"zero task id", body{"task_id": 0}, http.StatusBadRequest},
		{"malformed body", "not an object", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := srv.do(http.MethodPost, "/api/timers/start", tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.False(t, env.Success)
			assert.NotEmpty(t, env.Error)
		})
	}
}

func TestManualEntryAndList(t *testing.T) {
	srv := setupTestServer(t, services.PolicyPerScope)
	taskID := srv.createTask("Backfill")

	w, env := srv.do(http.MethodPost, "/api/entries/manual", body{
		"task_id":          taskID,
		"duration_minutes": 90,
		"date":             "2024-01-01T10:00:00Z",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var entry struct {
		ID        int64     `json:"id"`
		StartTime time.Time `json:"start_time"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &entry))
	assert.True(t, time.Date(2024, 1, 1, 8, 30, 0, 0, time.UTC).Equal(entry.StartTime))

	w, _ = srv.do(http.MethodPost, "/api/entries/manual", body{"task_id": taskID, "duration_minutes": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = srv.do(http.MethodGet, "/api/entries?task_id=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var entries []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &entries))
	assert.Len(t, entries, 1)

	w, _ = srv.do(http.MethodGet, "/api/entries?active=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateAndDeleteEntry(t *testing.T) {
	srv := setupTestServer(t, services.PolicyPerScope)
	taskID := srv.createTask("Editable")
	w, _ := srv.do(http.MethodPost, "/api/entries/manual", body{"task_id": taskID, "duration_minutes": 30})
	require.Equal(t, http.StatusCreated, w.Code)

	w, _ = srv.do(http.MethodPatch, "/api/entries/1", body{"duration_minutes": 45})
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = srv.do(http.MethodPatch, "/api/entries/1", body{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = srv.do(http.MethodPatch, "/api/entries/abc", body{"duration_minutes": 45})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = srv.do(http.MethodDelete, "/api/entries/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = srv.do(http.MethodDelete, "/api/entries/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTaskStatusRoutes(t *testing.T) {
	srv := setupTestServer(t, services.PolicyPerScope)

	w, env := srv.do(http.MethodPost, "/api/tasks", body{"name": "Workflow"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Success)

	w, _ = srv.do(http.MethodPost, "/api/tasks", body{"name": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = srv.do(http.MethodPost, "/api/tasks/1/status", body{"status": "in_progress"})
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = srv.do(http.MethodPost, "/api/tasks/1/status", body{"status": "blocked"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = srv.do(http.MethodPost, "/api/tasks/9/status", body{"status": "done"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = srv.do(http.MethodGet, "/api/tasks/1/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var history []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &history))
	assert.Len(t, history, 1)
}

func TestUserScopedTimers(t *testing.T) {
	srv := setupTestServer(t, services.PolicyPerScope)
	taskID := srv.createTask("Shared")

	w, _ := srv.do(http.MethodPost, "/api/users", body{"id": "alice"})
	require.Equal(t, http.StatusCreated, w.Code)
	w, _ = srv.do(http.MethodPost, "/api/users", body{"id": "bob"})
	require.Equal(t, http.StatusCreated, w.Code)

	w, _ = srv.do(http.MethodPost, "/api/timers/start", body{"task_id": taskID}, UserHeader, "alice")
	assert.Equal(t, http.StatusCreated, w.Code)
	w, _ = srv.do(http.MethodPost, "/api/timers/start", body{"task_id": taskID}, UserHeader, "bob")
	assert.Equal(t, http.StatusCreated, w.Code)

	w, _ = srv.do(http.MethodPost, "/api/timers/start", body{"task_id": taskID}, UserHeader, "carol")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env := srv.do(http.MethodGet, "/api/timers/current", nil, UserHeader, "alice")
	require.Equal(t, http.StatusOK, w.Code)
	var sessions []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &sessions))
	assert.Len(t, sessions, 1)
}

// body is shorthand for JSON request bodies.
type body map[string]interface{}

func TestEntryChangesRequireOwner(t *testing.T) {
	srv := setupTestServer(t, services.PolicyPerScope)
	taskID := srv.createTask("Owned")
	for _, id := range []string{"alice", "bob"} {
		w, _ := srv.do(http.MethodPost, "/api/users", body{"id": id})
		require.Equal(t, http.StatusCreated, w.Code)
	}
	w, _ := srv.do(http.MethodPost, "/api/entries/manual", body{"task_id": taskID, "duration_minutes": 30}, UserHeader, "alice")
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := srv.do(http.MethodPatch, "/api/entries/1", body{"duration_minutes": 45}, UserHeader, "bob")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "PERMISSION_DENIED", env.Code)

	w, _ = srv.do(http.MethodDelete, "/api/entries/1", nil, UserHeader, "bob")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = srv.do(http.MethodDelete, "/api/entries/7", nil, UserHeader, "bob")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = srv.do(http.MethodPatch, "/api/entries/1", body{"duration_minutes": 45}, UserHeader, "alice")
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = srv.do(http.MethodDelete, "/api/entries/1", nil, UserHeader, "alice")
	assert.Equal(t, http.StatusOK, w.Code)
}
