package errors

import "strings"

// ErrorType is the category of an AppError
type ErrorType int

const (
	ErrorTypeValidation ErrorType = iota
	ErrorTypeNotFound
	ErrorTypeDatabase
	ErrorTypeInvalidInput
	ErrorTypeTimeout
	ErrorTypePermission
	ErrorTypeMissingField
	ErrorTypeAPI
)

var typeNames = [...]string{
	ErrorTypeValidation:   "validation",
	ErrorTypeNotFound:     "not_found",
	ErrorTypeDatabase:     "database",
	ErrorTypeInvalidInput: "invalid_input",
	ErrorTypeTimeout:      "timeout",
	ErrorTypePermission:   "permission",
	ErrorTypeMissingField: "missing_field",
	ErrorTypeAPI:          "api",
}

func (et ErrorType) String() string {
	if et < 0 || int(et) >= len(typeNames) {
		return "unknown"
	}
	return typeNames[et]
}

// Fields carries structured details about a failure (ids, status codes, offending records)
type Fields map[string]any

// AppError is the error type returned across package boundaries.
// Code is stable and meant for machines; Message is shown to users.
type AppError struct {
	Type    ErrorType
	Message string
	Code    string
	Cause   error
	Context Fields
}

func (e *AppError) Error() string {
	var b strings.Builder
	b.WriteString(e.Type.String())
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}
	return b.String()
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches another AppError with the same type and code
func (e *AppError) Is(target error) bool {
	other, ok := target.(*AppError)
	return ok && other.Type == e.Type && other.Code == e.Code
}

func (e *AppError) IsType(errorType ErrorType) bool {
	return e.Type == errorType
}

// WithContext records a detail on the error and returns it for chaining
func (e *AppError) WithContext(key string, value any) *AppError {
	if e.Context == nil {
		e.Context = Fields{}
	}
	e.Context[key] = value
	return e
}

func (e *AppError) GetContext(key string) (any, bool) {
	value, ok := e.Context[key]
	return value, ok
}
