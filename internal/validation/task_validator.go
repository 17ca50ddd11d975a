package validation

import (
	"task-tracker/internal/domain"
)

const (
	taskNameMinLength = 1
	taskNameMaxLength = 255
)

// TaskValidator provides validation for Task-related operations
type TaskValidator struct {
	validator *Validator
}

// NewTaskValidator creates a new task validator
func NewTaskValidator() *TaskValidator {
	return &TaskValidator{
		validator: NewValidator(),
	}
}

// ValidateTaskName validates a task name for creation
func (tv *TaskValidator) ValidateTaskName(name string) error {
	validationError := NewValidationError()

	trimmedName := tv.validator.TrimAndValidateString(name)
	if !tv.validator.IsNonEmptyString(trimmedName) {
		validationError.AddRequiredError("name")
		return validationError
	}

	if !tv.validator.IsValidStringLength(trimmedName, taskNameMinLength, taskNameMaxLength) {
		validationError.AddInvalidLengthError("name", trimmedName, taskNameMinLength, taskNameMaxLength)
	}

	if !tv.validator.IsValidTaskName(trimmedName) {
		validationError.AddInvalidCharacterError("name", trimmedName)
	}

	return validationError.OrNil()
}

// ValidateTaskID validates a task ID
func (tv *TaskValidator) ValidateTaskID(id int64) error {
	if !tv.validator.IsValidID(id) {
		validationError := NewValidationError()
		validationError.AddInvalidValueError("task_id", id, "must be a positive integer")
		return validationError
	}
	return nil
}

// ValidateStatus parses a wire status, rejecting anything outside the enum
func (tv *TaskValidator) ValidateStatus(raw string) (domain.TaskStatus, error) {
	status, err := domain.ParseTaskStatus(raw)
	if err != nil {
		validationError := NewValidationError()
		validationError.AddInvalidValueError("status", raw, "must be one of to_do, in_progress, on_hold, done")
		return 0, validationError
	}
	return status, nil
}

// GetValidTaskName returns a cleaned task name if valid
func (tv *TaskValidator) GetValidTaskName(name string) (string, error) {
	if err := tv.ValidateTaskName(name); err != nil {
		return "", err
	}
	return tv.validator.TrimAndValidateString(name), nil
}
