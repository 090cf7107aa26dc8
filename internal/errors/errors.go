package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	CodeValidation   = "VALIDATION_FAILED"
	CodeMissingField = "MISSING_FIELD"
	CodeNotFound     = "NOT_FOUND"
	CodeDatabase     = "DATABASE_ERROR"
	CodeInvalidInput = "INVALID_INPUT"
	CodeTimeout      = "TIMEOUT"
	CodePermission   = "PERMISSION_DENIED"
	CodeAPI          = "API_ERROR"
	CodeUnknown      = "UNKNOWN_ERROR"
)

func newError(errorType ErrorType, code, message string, cause error, fields Fields) *AppError {
	if fields == nil {
		fields = Fields{}
	}
	return &AppError{Type: errorType, Code: code, Message: message, Cause: cause, Context: fields}
}

func NewValidationError(message string, cause error) *AppError {
	return newError(ErrorTypeValidation, CodeValidation, message, cause, nil)
}

// NewMissingFieldError reports required fields that could not be resolved from a loosely typed record
func NewMissingFieldError(fields []string, record any) *AppError {
	return newError(ErrorTypeMissingField, CodeMissingField,
		"missing required field(s): "+strings.Join(fields, ", "), nil,
		Fields{"fields": fields, "record": record})
}

func NewNotFoundError(resource string, identifier string) *AppError {
	return newError(ErrorTypeNotFound, CodeNotFound,
		fmt.Sprintf("%s not found: %s", resource, identifier), nil,
		Fields{"resource": resource, "identifier": identifier})
}

// NewDatabaseError wraps a storage failure; the cause stays reachable through errors.Is
func NewDatabaseError(operation string, cause error) *AppError {
	return newError(ErrorTypeDatabase, CodeDatabase,
		"database operation failed: "+operation, cause,
		Fields{"operation": operation})
}

func NewInvalidInputError(field string, value any, reason string) *AppError {
	return newError(ErrorTypeInvalidInput, CodeInvalidInput,
		fmt.Sprintf("invalid input for %s: %s", field, reason), nil,
		Fields{"field": field, "value": value, "reason": reason})
}

func NewTimeoutError(operation string, timeout any) *AppError {
	return newError(ErrorTypeTimeout, CodeTimeout,
		"operation timed out: "+operation, nil,
		Fields{"operation": operation, "timeout": timeout})
}

func NewPermissionError(operation string, resource string) *AppError {
	return newError(ErrorTypePermission, CodePermission,
		fmt.Sprintf("permission denied for %s on %s", operation, resource), nil,
		Fields{"operation": operation, "resource": resource})
}

// NewAPIError describes a non-success response from the remote API.
// Method, resource, status and body are part of the message as well as the context.
func NewAPIError(method, resource string, status int, body string) *AppError {
	return newError(ErrorTypeAPI, CodeAPI,
		fmt.Sprintf("%s %s failed with status %d: %s", method, resource, status, body), nil,
		Fields{"method": method, "resource": resource, "status": status, "body": body})
}

// WrapError attaches a type and message to an arbitrary error
func WrapError(err error, errorType ErrorType, message string) *AppError {
	return newError(errorType, errorType.String(), message, err, nil)
}

// FromContext maps a context failure to a timeout error, returning nil for other errors.
func FromContext(operation string, err error) *AppError {
	if !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		return nil
	}
	appErr := NewTimeoutError(operation, err.Error())
	appErr.Cause = err
	return appErr
}

func IsAppError(err error) bool {
	_, ok := AsAppError(err)
	return ok
}

func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}

func IsErrorType(err error, errorType ErrorType) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.IsType(errorType)
}

// APIStatus returns the HTTP status carried by an API error, or 0.
func APIStatus(err error) int {
	if !IsErrorType(err, ErrorTypeAPI) {
		return 0
	}
	appErr, _ := AsAppError(err)
	status, _ := appErr.GetContext("status")
	code, _ := status.(int)
	return code
}

// callerFault lists the types caused by bad input rather than a system failure.
// Their messages are shown as is and they are not logged.
var callerFault = map[ErrorType]bool{
	ErrorTypeValidation:   true,
	ErrorTypeNotFound:     true,
	ErrorTypeInvalidInput: true,
	ErrorTypeMissingField: true,
}

// GetUserMessage returns the text to show on the terminal for err
func GetUserMessage(err error) string {
	appErr, ok := AsAppError(err)
	if !ok {
		return err.Error()
	}
	if callerFault[appErr.Type] || appErr.Type == ErrorTypePermission {
		return appErr.Message
	}
	switch appErr.Type {
	case ErrorTypeAPI:
		return fmt.Sprintf("The remote service rejected the request (%s).", appErr.Message)
	case ErrorTypeDatabase:
		return "A storage error occurred. Please try again."
	case ErrorTypeTimeout:
		return "The operation timed out. Please try again."
	default:
		return "An unexpected error occurred. Please try again."
	}
}

func GetErrorCode(err error) string {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return CodeUnknown
}

// ShouldLogError reports whether err points at a system fault worth logging
func ShouldLogError(err error) bool {
	appErr, ok := AsAppError(err)
	return !ok || !callerFault[appErr.Type]
}
