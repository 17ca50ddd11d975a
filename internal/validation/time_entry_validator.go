package validation

import (
	"fmt"
	"time"

	"task-tracker/internal/domain"
)

const (
	// MaxEntryMinutes is one day; no single entry may be longer.
	MaxEntryMinutes = 24 * 60

	maxDescriptionLength = 1000
)

// TimeEntryValidator provides validation for TimeEntry-related operations
type TimeEntryValidator struct {
	validator *Validator
}

// NewTimeEntryValidator creates a new time entry validator
func NewTimeEntryValidator() *TimeEntryValidator {
	return &TimeEntryValidator{
		validator: NewValidator(),
	}
}

// ValidateScope checks the identifiers a timer operation is addressed to
func (tev *TimeEntryValidator) ValidateScope(scope domain.Scope) error {
	validationError := NewValidationError()
	tev.checkScope(validationError, scope)
	return validationError.OrNil()
}

func (tev *TimeEntryValidator) checkScope(validationError *ValidationError, scope domain.Scope) {
	if !tev.validator.IsValidID(scope.TaskID) {
		validationError.AddInvalidValueError("task_id", scope.TaskID, "must be a positive integer")
	}
	if scope.UserID != "" && !tev.validator.IsValidUserID(scope.UserID) {
		validationError.AddInvalidCharacterError("user_id", scope.UserID)
	}
}

// ValidateDescription limits free text length
func (tev *TimeEntryValidator) ValidateDescription(description string) error {
	if len(description) > maxDescriptionLength {
		validationError := NewValidationError()
		validationError.AddInvalidLengthError("description", len(description), 0, maxDescriptionLength)
		return validationError
	}
	return nil
}

// ValidateManual checks a backdated entry request: 0 < minutes <= 1440
func (tev *TimeEntryValidator) ValidateManual(scope domain.Scope, minutes int, description string) error {
	validationError := NewValidationError()
	tev.checkScope(validationError, scope)

	if minutes <= 0 {
		validationError.AddBoundError("duration_minutes", minutes, "greater than 0")
	} else if minutes > MaxEntryMinutes {
		validationError.AddBoundError("duration_minutes", minutes, fmt.Sprintf("at most %d", MaxEntryMinutes))
	}

	if len(description) > maxDescriptionLength {
		validationError.AddInvalidLengthError("description", len(description), 0, maxDescriptionLength)
	}

	return validationError.OrNil()
}

// ValidateUpdate checks patch against the entry it would change. Start and
// end move only together, only on a closed entry, and never alongside an
// explicit duration. An update never opens or closes an entry.
func (tev *TimeEntryValidator) ValidateUpdate(current domain.TimeEntry, patch domain.TimeEntryPatch) error {
	validationError := NewValidationError()

	if patch.IsEmpty() {
		validationError.AddError("update", ErrorTypeRequired, "at least one of description, duration_minutes or start_time/end_time is required", nil)
		return validationError
	}

	if patch.Description != nil && len(*patch.Description) > maxDescriptionLength {
		validationError.AddInvalidLengthError("description", len(*patch.Description), 0, maxDescriptionLength)
	}

	movesSpan := patch.StartTime != nil || patch.EndTime != nil
	if movesSpan {
		switch {
		case patch.StartTime == nil:
			validationError.AddRequiredError("start_time")
		case patch.EndTime == nil:
			validationError.AddRequiredError("end_time")
		case current.IsActive():
			validationError.AddInvalidValueError("end_time", *patch.EndTime, "cannot be set on an active entry; stop the timer instead")
		case patch.EndTime.Before(*patch.StartTime):
			validationError.AddInvalidValueError("end_time", *patch.EndTime, "must not be before start_time")
		case patch.EndTime.Sub(*patch.StartTime) > MaxEntryMinutes*time.Minute:
			validationError.AddBoundError("end_time", *patch.EndTime, fmt.Sprintf("at most %d minutes after start_time", MaxEntryMinutes))
		}
		if patch.DurationMinutes != nil {
			validationError.AddInvalidValueError("duration_minutes", *patch.DurationMinutes, "cannot be combined with start_time and end_time")
		}
	}

	if patch.DurationMinutes != nil && !movesSpan {
		minutes := *patch.DurationMinutes
		switch {
		case current.IsActive():
			validationError.AddInvalidValueError("duration_minutes", minutes, "cannot be set on an active entry")
		case minutes < 0:
			validationError.AddBoundError("duration_minutes", minutes, "at least 0")
		case minutes > MaxEntryMinutes:
			validationError.AddBoundError("duration_minutes", minutes, fmt.Sprintf("at most %d", MaxEntryMinutes))
		}
	}

	return validationError.OrNil()
}

// ValidateListFilter validates a time entry query
func (tev *TimeEntryValidator) ValidateListFilter(filter domain.ListFilter) error {
	validationError := NewValidationError()

	if filter.TaskID != nil && !tev.validator.IsValidID(*filter.TaskID) {
		validationError.AddInvalidValueError("task_id", *filter.TaskID, "must be a positive integer")
	}
	if !tev.validator.IsValidDateRange(filter.From, filter.To) {
		validationError.AddInvalidValueError("to", filter.To, "must not be before from")
	}
	if filter.Limit < 0 {
		validationError.AddBoundError("limit", filter.Limit, "at least 0")
	}

	return validationError.OrNil()
}

// ValidateTimeShorthand validates time shorthand format (e.g., "30m", "2h", "1d")
func (tev *TimeEntryValidator) ValidateTimeShorthand(shorthand string) error {
	if !tev.validator.IsValidTimeShorthand(shorthand) {
		validationError := NewValidationError()
		validationError.AddInvalidFormatError("since", shorthand, "30m, 2h, 1d, 2w, 3mo, 1y")
		return validationError
	}
	return nil
}

// ValidateTimeEntryID validates a time entry ID
func (tev *TimeEntryValidator) ValidateTimeEntryID(id int64) error {
	if !tev.validator.IsValidID(id) {
		validationError := NewValidationError()
		validationError.AddInvalidValueError("id", id, "must be a positive integer")
		return validationError
	}
	return nil
}
