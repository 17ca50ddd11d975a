package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-tracker/internal/errors"
)

func TestDurationMinutes(t *testing.T) {
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		elapsed  time.Duration
		expected int
	}{
		{name: "zero length", elapsed: 0, expected: 0},
		{name: "29.999 seconds rounds down", elapsed: 29999 * time.Millisecond, expected: 0},
		{name: "30 seconds rounds up", elapsed: 30 * time.Second, expected: 1},
		{name: "89.999 seconds rounds down", elapsed: 89999 * time.Millisecond, expected: 1},
		{name: "90 seconds is exactly half and rounds up", elapsed: 90 * time.Second, expected: 2},
		{name: "125 seconds", elapsed: 125 * time.Second, expected: 2},
		{name: "sub-millisecond noise is ignored", elapsed: 90*time.Second - time.Microsecond, expected: 1},
		{name: "full day", elapsed: 24 * time.Hour, expected: 1440},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := DurationMinutes(start, start.Add(tt.elapsed))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestDurationMinutes_EndBeforeStart(t *testing.T) {
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	_, err := DurationMinutes(start, start.Add(-time.Millisecond))

	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeValidation))
	assert.Contains(t, err.Error(), "end_time")
}
