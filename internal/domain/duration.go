package domain

import (
	"time"

	"task-tracker/internal/errors"
)

const millisPerMinute = int64(time.Minute / time.Millisecond)

// DurationMinutes converts a start/end pair into whole minutes, rounding
// half up on the millisecond difference. Both the stop path and the manual
// entry path go through here.
func DurationMinutes(start, end time.Time) (int, error) {
	if end.Before(start) {
		return 0, errors.NewFieldValidationError("end_time", "must not be before start_time")
	}
	millis := end.Sub(start).Milliseconds()
	return int((millis + millisPerMinute/2) / millisPerMinute), nil
}
