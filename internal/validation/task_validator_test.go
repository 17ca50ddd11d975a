package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-tracker/internal/domain"
)

func TestTaskValidator_ValidateTaskName(t *testing.T) {
	validator := NewTaskValidator()

	tests := []struct {
		name        string
		input       string
		expectError bool
	}{
		{"Valid name", "Write documentation", false},
		{"Name with punctuation", "Fix bug #42: crash", false},
		{"Empty name", "", true},
		{"Whitespace only", "   ", true},
		{"Too long", strings.Repeat("a", 256), true},
		{"Control characters", "line\nbreak", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateTaskName(tt.input)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTaskValidator_ValidateTaskID(t *testing.T) {
	validator := NewTaskValidator()

	assert.NoError(t, validator.ValidateTaskID(1))
	assert.Error(t, validator.ValidateTaskID(0))
	assert.Error(t, validator.ValidateTaskID(-5))
}

func TestTaskValidator_ValidateStatus(t *testing.T) {
	validator := NewTaskValidator()

	status, err := validator.ValidateStatus("IN_PROGRESS")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, status)

	_, err = validator.ValidateStatus("blocked")
	require.Error(t, err)
	ve, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Equal(t, "status", ve.Errors[0].Field)
}

func TestTaskValidator_GetValidTaskName(t *testing.T) {
	validator := NewTaskValidator()

	name, err := validator.GetValidTaskName("  Plan sprint  ")
	require.NoError(t, err)
	assert.Equal(t, "Plan sprint", name)

	_, err = validator.GetValidTaskName("")
	assert.Error(t, err)
}
