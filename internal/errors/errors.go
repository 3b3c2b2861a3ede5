package errors

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	// ErrCodeValidation indicates field-level input errors (client-side or HTTP 400).
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeAuthentication indicates the backend rejected the session (HTTP 401).
	ErrCodeAuthentication ErrorCode = "authentication"
	// ErrCodeUnexpected covers every other backend or transport failure.
	ErrCodeUnexpected ErrorCode = "unexpected"
	// ErrCodeCorruptSession indicates persisted session data failed schema validation.
	ErrCodeCorruptSession ErrorCode = "corrupt_session"
	// ErrCodeNotFound indicates a resource was not found.
	ErrCodeNotFound ErrorCode = "not_found"
	// ErrCodeInternal indicates a local failure (storage, encoding).
	ErrCodeInternal ErrorCode = "internal"
	// ErrCodeTimeout indicates a timeout occurred.
	ErrCodeTimeout ErrorCode = "timeout"
	// ErrCodeCanceled indicates the operation was canceled.
	ErrCodeCanceled ErrorCode = "canceled"
)

// AppError represents a structured application error with a code, message, and optional cause.
// It supports error wrapping and unwrapping for use with errors.Is and errors.As.
type AppError struct {
	// Code categorizes the error type
	Code ErrorCode
	// Message is a human-readable error message
	Message string
	// Cause is the underlying error that caused this error (optional)
	Cause error
	// Status is the HTTP status that produced the error, 0 when no response was received.
	Status int
	// Messages holds individual field messages of a validation failure.
	Messages []string
	// Fields maps form fields to their validation message (client-side validation).
	Fields map[string]string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Validation creates a new Validation error.
func Validation(message string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: message,
	}
}

// ValidationMessages creates a Validation error from a list of field messages joined by a line break.
func ValidationMessages(status int, messages []string) *AppError {
	return &AppError{
		Code:     ErrCodeValidation,
		Message:  strings.Join(messages, "\n"),
		Status:   status,
		Messages: messages,
	}
}

// ValidationFields creates a Validation error for a set of form fields.
// Messages are ordered by field name.
func ValidationFields(fields map[string]string) *AppError {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	slices.Sort(names)
	msgs := make([]string, 0, len(names))
	for _, name := range names {
		msgs = append(msgs, fields[name])
	}
	return &AppError{
		Code:     ErrCodeValidation,
		Message:  "invalid form",
		Fields:   fields,
		Messages: msgs,
	}
}

// Authentication creates a new Authentication error.
func Authentication(status int, message string) *AppError {
	return &AppError{
		Code:    ErrCodeAuthentication,
		Message: message,
		Status:  status,
	}
}

// Unexpected creates a new Unexpected error.
func Unexpected(status int, message string) *AppError {
	return &AppError{
		Code:    ErrCodeUnexpected,
		Message: message,
		Status:  status,
	}
}

// CorruptSession wraps a schema failure of persisted session data.
func CorruptSession(cause error) *AppError {
	return &AppError{
		Code:    ErrCodeCorruptSession,
		Message: "stored session is corrupt",
		Cause:   cause,
	}
}

// Internal creates a new Internal error.
func Internal(message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError, preserving the cause.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an existing error with an AppError and formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// isCode checks if an error has a specific error code.
func isCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsValidation checks if an error is a Validation error.
func IsValidation(err error) bool {
	return isCode(err, ErrCodeValidation)
}

// IsAuthentication checks if an error is an Authentication error.
func IsAuthentication(err error) bool {
	return isCode(err, ErrCodeAuthentication)
}

// IsUnexpected checks if an error is an Unexpected error.
func IsUnexpected(err error) bool {
	return isCode(err, ErrCodeUnexpected)
}

// IsCorruptSession checks if an error is a CorruptSession error.
func IsCorruptSession(err error) bool {
	return isCode(err, ErrCodeCorruptSession)
}

// GetCode returns the ErrorCode from an error, or empty string if not an AppError.
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// As returns the AppError in err's chain, if any.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
