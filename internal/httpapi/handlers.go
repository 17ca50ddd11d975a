package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"task-tracker/internal/api"
	"task-tracker/internal/domain"
	"task-tracker/internal/errors"
	"task-tracker/internal/services"
)

type timerRequest struct {
	TaskID      int64  `json:"task_id"`
	Description string `json:"description"`
}

type manualEntryRequest struct {
	TaskID          int64      `json:"task_id"`
	DurationMinutes int        `json:"duration_minutes"`
	Date            *time.Time `json:"date"`
	Description     string     `json:"description"`
}

type updateEntryRequest struct {
	Description     *string    `json:"description"`
	DurationMinutes *int       `json:"duration_minutes"`
	StartTime       *time.Time `json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
}

type createTaskRequest struct {
	Name string `json:"name"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type createUserRequest struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Timer handlers

func (s *Server) handleStartTimer(c *gin.Context) {
	var req timerRequest
	if !s.bind(c, &req) {
		return
	}

	session, err := s.api.StartTimer(c.Request.Context(), s.scope(c, req.TaskID), req.Description)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, session.TimeEntry)
}

func (s *Server) handleStopTimer(c *gin.Context) {
	var req timerRequest
	if !s.bind(c, &req) {
		return
	}

	session, err := s.api.StopTimer(c.Request.Context(), s.scope(c, req.TaskID))
	if err != nil {
		s.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, session.TimeEntry)
}

func (s *Server) handleActiveTimer(c *gin.Context) {
	taskID, err := queryInt64(c, "task_id")
	if err != nil {
		s.respondError(c, err)
		return
	}
	if taskID == nil {
		s.respondError(c, errors.NewFieldValidationError("task_id", "is required"))
		return
	}

	session, err := s.api.ActiveTimer(c.Request.Context(), s.scope(c, *taskID))
	if err != nil {
		s.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, session.TimeEntry)
}

func (s *Server) handleCurrentTimers(c *gin.Context) {
	sessions, err := s.api.CurrentSessions(c.Request.Context(), s.identity(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, sessions)
}

// Entry handlers

func (s *Server) handleManualEntry(c *gin.Context) {
	var req manualEntryRequest
	if !s.bind(c, &req) {
		return
	}

	entry, err := s.api.AddManualEntry(c.Request.Context(), api.ManualEntryRequest{
		Scope:           s.scope(c, req.TaskID),
		DurationMinutes: req.DurationMinutes,
		Date:            req.Date,
		Description:     req.Description,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, entry)
}

func (s *Server) handleUpdateEntry(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	if !s.authorizeEntry(c, id, "update") {
		return
	}
	var req updateEntryRequest
	if !s.bind(c, &req) {
		return
	}

	entry, err := s.api.UpdateEntry(c.Request.Context(), id, services.UpdateInput{
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, entry)
}

func (s *Server) handleDeleteEntry(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}

	if !s.authorizeEntry(c, id, "delete") {
		return
	}
	if err := s.api.DeleteEntry(c.Request.Context(), id); err != nil {
		s.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": id})
}

func (s *Server) handleListEntries(c *gin.Context) {
	query, err := s.entryQuery(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	entries, err := s.api.ListEntries(c.Request.Context(), query)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, entries)
}

// Task handlers

func (s *Server) handleCreateTask(c *gin.Context) {
	var req createTaskRequest
	if !s.bind(c, &req) {
		return
	}

	task, err := s.api.CreateTask(c.Request.Context(), req.Name)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, task)
}

func (s *Server) handleListTasks(c *gin.Context) {
	tasks, err := s.api.ListTasks(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, tasks)
}

func (s *Server) handleGetTask(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}

	task, err := s.api.GetTask(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, task)
}

func (s *Server) handleTaskHistory(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}

	history, err := s.api.TaskHistory(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, history)
}

func (s *Server) handleChangeStatus(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	var req statusRequest
	if !s.bind(c, &req) {
		return
	}

	change, err := s.api.ChangeTaskStatus(c.Request.Context(), id, s.identity(c), req.Status)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, change)
}

func (s *Server) handleCreateUser(c *gin.Context) {
	var req createUserRequest
	if !s.bind(c, &req) {
		return
	}

	user, err := s.api.CreateUser(c.Request.Context(), req.ID, req.DisplayName)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, user)
}

// Request helpers

func (s *Server) scope(c *gin.Context, taskID int64) domain.Scope {
	return domain.Scope{TaskID: taskID, UserID: s.identity(c)}
}

func (s *Server) bind(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		s.respondError(c, errors.NewInvalidInputError("body", "", "request body must be valid JSON"))
		return false
	}
	return true
}

func (s *Server) pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		s.respondError(c, errors.NewInvalidInputError("id", c.Param("id"), "must be a number"))
		return 0, false
	}
	return id, true
}

// entryQuery reads the listing filters. The acting user, when known,
// always narrows the listing.
func (s *Server) entryQuery(c *gin.Context) (api.EntryQuery, error) {
	var query api.EntryQuery
	var err error

	if query.TaskID, err = queryInt64(c, "task_id"); err != nil {
		return query, err
	}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return query, errors.NewInvalidInputError("active", raw, "must be true or false")
		}
		query.Active = &active
	}
	if query.From, err = queryTime(c, "from"); err != nil {
		return query, err
	}
	if query.To, err = queryTime(c, "to"); err != nil {
		return query, err
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return query, errors.NewInvalidInputError("limit", raw, "must be a number")
		}
		query.Limit = limit
	}
	query.Since = c.Query("since")

	if user := s.identity(c); user != "" {
		query.UserID = &user
	}
	return query, nil
}

func queryInt64(c *gin.Context, name string) (*int64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, errors.NewInvalidInputError(name, raw, "must be a number")
	}
	return &v, nil
}

func queryTime(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, errors.NewInvalidInputError(name, raw, "must be an RFC3339 timestamp")
	}
	return &t, nil
}

// authorizeEntry rejects changes to another user's entry. Requests without
// an acting user are not checked.
func (s *Server) authorizeEntry(c *gin.Context, id int64, operation string) bool {
	user := s.identity(c)
	if user == "" {
		return true
	}
	entry, err := s.api.GetEntry(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return false
	}
	if entry.UserID != user {
		s.respondError(c, errors.NewPermissionError(operation, fmt.Sprintf("time entry %d", id)))
		return false
	}
	return true
}
