package validation

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-tracker/internal/errors"
)

func TestValidationError_Error(t *testing.T) {
	empty := NewValidationError()
	assert.Equal(t, "validation error", empty.Error())

	single := NewValidationError()
	single.AddRequiredError("name")
	assert.Equal(t, "validation error for field 'name': name is required", single.Error())

	multiple := NewValidationError()
	multiple.AddRequiredError("name")
	multiple.AddBoundError("duration_minutes", 0, "greater than 0")
	assert.Contains(t, multiple.Error(), "multiple validation errors")
	assert.Contains(t, multiple.Error(), "duration_minutes must be greater than 0")
}

func TestValidationError_OrNil(t *testing.T) {
	ve := NewValidationError()
	assert.NoError(t, ve.OrNil())

	ve.AddRequiredError("task_id")
	assert.Error(t, ve.OrNil())
	assert.True(t, ve.HasErrors())
}

func TestValidationError_GetFieldErrors(t *testing.T) {
	ve := NewValidationError()
	ve.AddRequiredError("start_time")
	ve.AddInvalidValueError("end_time", nil, "must not be before start_time")
	ve.AddRequiredError("start_time")

	assert.Len(t, ve.GetFieldErrors("start_time"), 2)
	assert.Len(t, ve.GetFieldErrors("end_time"), 1)
	assert.Empty(t, ve.GetFieldErrors("description"))
}

func TestValidationError_GetUserFriendlyMessage(t *testing.T) {
	ve := NewValidationError()
	assert.Equal(t, "Input validation failed", ve.GetUserFriendlyMessage())

	ve.AddBoundError("duration_minutes", 1441, "at most 1440")
	assert.Equal(t, "duration_minutes must be at most 1440", ve.GetUserFriendlyMessage())

	ve.AddRequiredError("task_id")
	assert.Equal(t, "duration_minutes must be at most 1440; task_id is required", ve.GetUserFriendlyMessage())
}

func TestValidationError_AppError(t *testing.T) {
	ve := NewValidationError()
	ve.AddBoundError("duration_minutes", 0, "greater than 0")

	appErr := ve.AppError()
	assert.True(t, appErr.IsType(errors.ErrorTypeValidation))
	assert.Equal(t, "duration_minutes must be greater than 0", appErr.Message)

	field, ok := appErr.GetContext("field")
	require.True(t, ok)
	assert.Equal(t, "duration_minutes", field)
}

func TestAsAppError(t *testing.T) {
	ve := NewValidationError()
	ve.AddRequiredError("name")
	assert.True(t, errors.IsValidation(AsAppError(ve)))

	other := fmt.Errorf("plain")
	assert.Equal(t, other, AsAppError(other))
	assert.Nil(t, AsAppError(nil))
}

func TestIsValidationError(t *testing.T) {
	assert.True(t, IsValidationError(NewValidationError()))
	assert.False(t, IsValidationError(fmt.Errorf("plain")))
}
