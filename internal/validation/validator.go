package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	timeShorthandRegex = regexp.MustCompile(`^(\d+)(m|h|d|w|mo|y)$`)
	taskNameRegex      = regexp.MustCompile(`^[a-zA-Z0-9 \-_.,!?()#:/']+$`)
	userIDRegex        = regexp.MustCompile(`^[a-zA-Z0-9._@-]{1,191}$`)
)

// Validator provides common validation utilities
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// IsNonEmptyString checks if a string is not empty after trimming whitespace
func (v *Validator) IsNonEmptyString(s string) bool {
	return strings.TrimSpace(s) != ""
}

// IsValidStringLength checks if a string length is within the specified range
func (v *Validator) IsValidStringLength(s string, min, max int) bool {
	length := len(strings.TrimSpace(s))
	return length >= min && length <= max
}

// IsValidTaskName checks if a task name contains only allowed characters.
// Newlines, tabs and other control characters are rejected.
func (v *Validator) IsValidTaskName(name string) bool {
	return taskNameRegex.MatchString(name)
}

// IsValidID checks if a numeric identifier is valid (positive)
func (v *Validator) IsValidID(id int64) bool {
	return id > 0
}

// IsValidUserID checks a user identifier. Empty is not valid here; the
// single-user deployment never calls this.
func (v *Validator) IsValidUserID(id string) bool {
	return userIDRegex.MatchString(id)
}

// IsValidTimeShorthand checks if a time shorthand format is valid
func (v *Validator) IsValidTimeShorthand(shorthand string) bool {
	_, _, err := v.splitShorthand(shorthand)
	return err == nil
}

// ParseTimeShorthand turns "30m", "2h", "1d", "2w", "3mo" or "1y" into the
// instant that long before now.
func (v *Validator) ParseTimeShorthand(shorthand string, now time.Time) (time.Time, error) {
	value, unit, err := v.splitShorthand(shorthand)
	if err != nil {
		return time.Time{}, err
	}

	switch unit {
	case "m":
		return now.Add(-time.Duration(value) * time.Minute), nil
	case "h":
		return now.Add(-time.Duration(value) * time.Hour), nil
	case "d":
		return now.AddDate(0, 0, -value), nil
	case "w":
		return now.AddDate(0, 0, -7*value), nil
	case "mo":
		return now.AddDate(0, -value, 0), nil
	default:
		return now.AddDate(-value, 0, 0), nil
	}
}

func (v *Validator) splitShorthand(shorthand string) (int, string, error) {
	matches := timeShorthandRegex.FindStringSubmatch(strings.TrimSpace(shorthand))
	if matches == nil {
		return 0, "", fmt.Errorf("invalid time shorthand %q", shorthand)
	}

	value, err := strconv.Atoi(matches[1])
	if err != nil || value <= 0 {
		return 0, "", fmt.Errorf("invalid time shorthand %q", shorthand)
	}
	return value, matches[2], nil
}

// IsValidDateRange checks if a date range is logical
func (v *Validator) IsValidDateRange(startTime, endTime *time.Time) bool {
	if startTime == nil || endTime == nil {
		return true // Open-ended ranges are valid
	}
	return !endTime.Before(*startTime)
}

// IsWithin reports whether min <= n <= max.
func (v *Validator) IsWithin(n, min, max int) bool {
	return n >= min && n <= max
}

// TrimAndValidateString trims whitespace and returns the cleaned string
func (v *Validator) TrimAndValidateString(s string) string {
	return strings.TrimSpace(s)
}
