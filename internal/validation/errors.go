package validation

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationErrorType represents the type of validation error
type ValidationErrorType string

const (
	ErrorTypeRequired         ValidationErrorType = "required"
	ErrorTypeInvalidFormat    ValidationErrorType = "invalid_format"
	ErrorTypeInvalidLength    ValidationErrorType = "invalid_length"
	ErrorTypeInvalidValue     ValidationErrorType = "invalid_value"
	ErrorTypeInvalidRange     ValidationErrorType = "invalid_range"
	ErrorTypeInvalidCharacter ValidationErrorType = "invalid_character"
)

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string
	Type    ValidationErrorType
	Message string
	Value   interface{}
}

func (fe *FieldError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", fe.Field, fe.Message)
}

// ValidationError collects every field failure found while checking one value.
type ValidationError struct {
	Errors []FieldError
}

func NewValidationError() *ValidationError {
	return &ValidationError{Errors: []FieldError{}}
}

// Error implements the error interface for ValidationError
func (ve *ValidationError) Error() string {
	switch len(ve.Errors) {
	case 0:
		return "validation error"
	case 1:
		return ve.Errors[0].Error()
	}

	messages := make([]string, 0, len(ve.Errors))
	for _, err := range ve.Errors {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("multiple validation errors: %s", strings.Join(messages, "; "))
}

// IsValidationError checks if an error is, or wraps, a ValidationError
func IsValidationError(err error) bool {
	_, ok := AsValidationError(err)
	return ok
}

// AsValidationError unwraps err to a ValidationError if possible
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

func (ve *ValidationError) HasErrors() bool {
	return len(ve.Errors) > 0
}

// OrNil returns ve when it holds errors and nil otherwise, so callers can
// end a validation pass with `return ve.OrNil()`.
func (ve *ValidationError) OrNil() error {
	if ve.HasErrors() {
		return ve
	}
	return nil
}

// Merge appends the field errors of err when it is a ValidationError.
// Any other non-nil error is recorded against field.
func (ve *ValidationError) Merge(field string, err error) {
	if err == nil {
		return
	}
	if other, ok := AsValidationError(err); ok {
		ve.Errors = append(ve.Errors, other.Errors...)
		return
	}
	ve.AddError(field, ErrorTypeInvalidValue, err.Error(), nil)
}

// AddError records a failure for field
func (ve *ValidationError) AddError(field string, errorType ValidationErrorType, message string, value interface{}) {
	ve.Errors = append(ve.Errors, FieldError{Field: field, Type: errorType, Message: message, Value: value})
}

// messageFormats holds the message layout per error type; each takes the field name then one detail
var messageFormats = map[ValidationErrorType]string{
	ErrorTypeInvalidFormat:    "%s has invalid format, expected: %v",
	ErrorTypeInvalidLength:    "%s must be at most %v characters long",
	ErrorTypeInvalidValue:     "%s has invalid value: %v",
	ErrorTypeInvalidRange:     "%s has invalid range: %v",
	ErrorTypeInvalidCharacter: "%s contains invalid characters, allowed: %v",
}

func (ve *ValidationError) add(field string, errorType ValidationErrorType, value interface{}, detail interface{}) {
	ve.AddError(field, errorType, fmt.Sprintf(messageFormats[errorType], field, detail), value)
}

func (ve *ValidationError) AddRequiredError(field string) {
	ve.AddError(field, ErrorTypeRequired, field+" is required", nil)
}

func (ve *ValidationError) AddInvalidFormatError(field string, value interface{}, expectedFormat string) {
	ve.add(field, ErrorTypeInvalidFormat, value, expectedFormat)
}

// AddInvalidLengthError reports a value longer than max characters
func (ve *ValidationError) AddInvalidLengthError(field string, value interface{}, max int) {
	ve.add(field, ErrorTypeInvalidLength, value, max)
}

func (ve *ValidationError) AddInvalidValueError(field string, value interface{}, reason string) {
	ve.add(field, ErrorTypeInvalidValue, value, reason)
}

// AddInvalidRangeError reports a value outside its bounds, such as an end before a start
func (ve *ValidationError) AddInvalidRangeError(field string, value interface{}, reason string) {
	ve.add(field, ErrorTypeInvalidRange, value, reason)
}

func (ve *ValidationError) AddInvalidCharacterError(field string, value interface{}, allowed string) {
	ve.add(field, ErrorTypeInvalidCharacter, value, allowed)
}

// GetFieldErrors filters the collected failures down to one field
func (ve *ValidationError) GetFieldErrors(field string) []FieldError {
	var matched []FieldError
	for _, fe := range ve.Errors {
		if fe.Field == field {
			matched = append(matched, fe)
		}
	}
	return matched
}

// GetUserFriendlyMessage returns a user-friendly error message
func (ve *ValidationError) GetUserFriendlyMessage() string {
	switch len(ve.Errors) {
	case 0:
		return "Input validation failed"
	case 1:
		return ve.Errors[0].Message
	}

	lines := make([]string, 0, len(ve.Errors))
	for _, err := range ve.Errors {
		lines = append(lines, "- "+err.Message)
	}
	return fmt.Sprintf("Multiple validation errors occurred:\n%s", strings.Join(lines, "\n"))
}
