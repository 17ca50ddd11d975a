// Package api is the application facade shared by the CLI and the HTTP
// transport. It validates raw input, resolves defaults and delegates to
// the services.
package api

import (
	"context"
	"fmt"
	"strings"
	"time"

	"task-tracker/internal/domain"
	"task-tracker/internal/errors"
	"task-tracker/internal/repository"
	"task-tracker/internal/services"
	"task-tracker/internal/validation"
)

// API is every operation a transport may call.
type API interface {
	BusinessAPI

	// Task operations
	CreateTask(ctx context.Context, name string) (*domain.Task, error)
	GetTask(ctx context.Context, id int64) (*domain.Task, error)
	ListTasks(ctx context.Context) ([]*domain.Task, error)
	TaskHistory(ctx context.Context, taskID int64) ([]*domain.Activity, error)

	// User operations
	CreateUser(ctx context.Context, id, displayName string) (*domain.User, error)
}

type apiImpl struct {
	*businessAPIImpl
}

// New creates the facade over store and the services built on it.
func New(store repository.Store, svc *services.Container, clock func() time.Time) API {
	if clock == nil {
		clock = time.Now
	}
	return &apiImpl{businessAPIImpl: newBusinessAPI(store, svc, clock)}
}

func (a *apiImpl) CreateTask(ctx context.Context, name string) (*domain.Task, error) {
	cleanedName, err := a.taskValidator.GetValidTaskName(name)
	if err != nil {
		return nil, validation.AsAppError(err)
	}

	task := domain.NewTask(cleanedName)
	res, err := a.store.CreateTask(ctx, &task)
	if err != nil {
		return nil, err
	}
	return a.store.GetTask(ctx, res.ID)
}

func (a *apiImpl) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	if err := a.taskValidator.ValidateTaskID(id); err != nil {
		return nil, validation.AsAppError(err)
	}
	return a.store.GetTask(ctx, id)
}

func (a *apiImpl) ListTasks(ctx context.Context) ([]*domain.Task, error) {
	return a.store.ListTasks(ctx)
}

func (a *apiImpl) TaskHistory(ctx context.Context, taskID int64) ([]*domain.Activity, error) {
	if _, err := a.GetTask(ctx, taskID); err != nil {
		return nil, err
	}
	return a.services.Status.History(ctx, taskID)
}

// CreateUser registers a tracking user. Display name defaults to the id.
func (a *apiImpl) CreateUser(ctx context.Context, id, displayName string) (*domain.User, error) {
	id = strings.TrimSpace(id)
	if !a.validator.IsValidUserID(id) {
		return nil, errors.NewFieldValidationError("user_id", fmt.Sprintf("%q must be 1-191 letters, digits or ._@-", id))
	}
	if strings.TrimSpace(displayName) == "" {
		displayName = id
	}

	user := &domain.User{ID: id, DisplayName: strings.TrimSpace(displayName), CreatedAt: a.clock()}
	if err := a.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
