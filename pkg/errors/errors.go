package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Format errors
	ErrUnknownFormat ErrorCode = "UNKNOWN_FORMAT"
	ErrSerialize     ErrorCode = "SERIALIZE"

	// FileSystem errors
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrFileAccess   ErrorCode = "FILE_ACCESS"
	ErrFileWrite    ErrorCode = "FILE_WRITE"
	ErrFileRemove   ErrorCode = "FILE_REMOVE"
	ErrDirCreate    ErrorCode = "DIR_CREATE"

	// Entity errors
	ErrEntityInvalid ErrorCode = "ENTITY_INVALID"
	ErrAuthConflict  ErrorCode = "AUTH_CONFLICT"

	// Docker boundary errors
	ErrDockerAPI         ErrorCode = "DOCKER_API"
	ErrDockerUnreachable ErrorCode = "DOCKER_UNREACHABLE"

	// Ownership errors
	ErrOwnership ErrorCode = "OWNERSHIP"
)

// ConfragError represents a structured error with code and details
type ConfragError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *ConfragError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *ConfragError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *ConfragError) Is(target error) bool {
	var targetErr *ConfragError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new ConfragError with the given code and message
func New(code ErrorCode, message string) *ConfragError {
	return &ConfragError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new ConfragError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *ConfragError {
	return &ConfragError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a ConfragError
func Wrap(err error, code ErrorCode, message string) *ConfragError {
	if err == nil {
		return nil
	}
	return &ConfragError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *ConfragError {
	if err == nil {
		return nil
	}
	return &ConfragError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *ConfragError) WithDetail(key string, value interface{}) *ConfragError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var cerr *ConfragError
	if errors.As(err, &cerr) {
		return cerr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a ConfragError
func GetErrorCode(err error) ErrorCode {
	var cerr *ConfragError
	if errors.As(err, &cerr) {
		return cerr.Code
	}
	return ErrUnknown
}
