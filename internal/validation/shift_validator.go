package validation

import (
	"strings"
	"time"
)

// ShiftValidator provides validation for shift fields and duration components
type ShiftValidator struct {
	validator *Validator
}

// NewShiftValidator creates a new shift validator
func NewShiftValidator() *ShiftValidator {
	return &ShiftValidator{
		validator: NewValidator(),
	}
}

// ValidateID checks a shift identifier. Surrounding whitespace is ignored.
func (sv *ShiftValidator) ValidateID(id string) error {
	validationError := NewValidationError()
	sv.checkID(validationError, id)
	return validationError.OrNil()
}

// ValidatePayRate checks that a pay rate is a non-negative number
func (sv *ShiftValidator) ValidatePayRate(rate float64) error {
	validationError := NewValidationError()
	sv.checkPayRate(validationError, rate)
	return validationError.OrNil()
}

// ValidateTimes checks both instants are set and that end is not before start
func (sv *ShiftValidator) ValidateTimes(start, end time.Time) error {
	validationError := NewValidationError()
	sv.checkTimes(validationError, start, end)
	return validationError.OrNil()
}

// ValidateShift checks every constrained shift field and reports all failures at once
func (sv *ShiftValidator) ValidateShift(id string, payRate float64, start, end time.Time) error {
	validationError := NewValidationError()
	sv.checkID(validationError, id)
	sv.checkPayRate(validationError, payRate)
	sv.checkTimes(validationError, start, end)
	return validationError.OrNil()
}

// ValidateDurationParts rejects negative hour or minute components
func (sv *ShiftValidator) ValidateDurationParts(hours, minutes int) error {
	validationError := NewValidationError()
	if hours < 0 {
		validationError.AddInvalidValueError("hours", hours, "cannot be negative")
	}
	if minutes < 0 {
		validationError.AddInvalidValueError("minutes", minutes, "cannot be negative")
	}
	return validationError.OrNil()
}

// ValidateSearchRange validates an optional reporting window
func (sv *ShiftValidator) ValidateSearchRange(start, end *time.Time) error {
	if !sv.validator.IsValidDateRange(start, end) {
		validationError := NewValidationError()
		validationError.AddInvalidRangeError("date_range", map[string]interface{}{
			"start": start,
			"end":   end,
		}, "end must not be before start")
		return validationError
	}
	return nil
}

// ValidateTimeShorthand validates time shorthand format (e.g., "30m", "2h", "1d")
func (sv *ShiftValidator) ValidateTimeShorthand(shorthand string) error {
	if !sv.validator.IsValidTimeShorthand(shorthand) {
		validationError := NewValidationError()
		validationError.AddInvalidFormatError("time_shorthand", shorthand, "30m, 2h, 1d, 2w, 3mo, 1y")
		return validationError
	}
	return nil
}

func (sv *ShiftValidator) checkID(ve *ValidationError, id string) {
	trimmed := strings.TrimSpace(id)
	if !sv.validator.IsNonEmptyString(trimmed) {
		ve.AddRequiredError("id")
		return
	}
	if !sv.validator.IsValidID(trimmed) {
		ve.AddInvalidCharacterError("id", id, "letters, digits, '_' and '-'")
	}
}

func (sv *ShiftValidator) checkPayRate(ve *ValidationError, rate float64) {
	if !sv.validator.IsValidPayRate(rate) {
		ve.AddInvalidValueError("payRate", rate, "must be a non-negative number")
	}
}

func (sv *ShiftValidator) checkTimes(ve *ValidationError, start, end time.Time) {
	if start.IsZero() {
		ve.AddRequiredError("startTime")
	}
	if end.IsZero() {
		ve.AddRequiredError("endTime")
	}
	if !start.IsZero() && !end.IsZero() && !sv.validator.IsValidTimeRange(start, end) {
		ve.AddInvalidRangeError("endTime", map[string]time.Time{
			"start": start,
			"end":   end,
		}, "end time cannot be before the start time")
	}
}
