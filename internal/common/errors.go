package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	// ErrImageNotFound means the input image does not exist; fatal for that
	// document only, converted to a per-document error entry in batch mode.
	ErrImageNotFound = errors.New("image not found")
	// ErrServiceUnavailable means a remote strategy has no client configured.
	// Routing falls back; this is never surfaced as a document error.
	ErrServiceUnavailable = errors.New("service unavailable")
	// ErrNoStructuredData means a remote response contained no parseable JSON.
	ErrNoStructuredData = errors.New("no structured data found in response")
	// ErrRemoteCall means the remote service itself failed; retried like a
	// parse failure.
	ErrRemoteCall = errors.New("remote call failed")
	ErrValidation   = errors.New("validation failed")
	ErrInvalidInput = errors.New("invalid input")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
