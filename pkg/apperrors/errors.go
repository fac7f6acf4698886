package apperrors

import (
	"errors"
	"fmt"
)

// ErrorCode classifies engine errors
type ErrorCode string

const (
	// CodeInvalidArgument means the caller passed bad input (self-relationship, missing IDs)
	CodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// CodeConflict means a duplicate relationship attempt between the same pair
	CodeConflict ErrorCode = "CONFLICT"
	// CodeNotAuthorized means the wrong party attempted a mutation
	CodeNotAuthorized ErrorCode = "NOT_AUTHORIZED"
	// CodeInvalidState means a mutation targeted a record not in the expected state
	CodeInvalidState ErrorCode = "INVALID_STATE"
	// CodeTransport means a collaborator query/write failed; transient and safe to retry
	CodeTransport ErrorCode = "TRANSPORT"
)

// AppError is the engine's error type. Validation errors
// (invalid argument, not authorized, invalid state) indicate caller misuse
// and must never be retried; transport errors may be retried on the next poll.
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the error is transient
func (e *AppError) Retryable() bool {
	return e.Code == CodeTransport
}

// InvalidArgument creates an invalid-argument error
func InvalidArgument(message string) *AppError {
	return &AppError{Code: CodeInvalidArgument, Message: message}
}

// Conflict creates a conflict error
func Conflict(message string) *AppError {
	return &AppError{Code: CodeConflict, Message: message}
}

// NotAuthorized creates a not-authorized error
func NotAuthorized(message string) *AppError {
	return &AppError{Code: CodeNotAuthorized, Message: message}
}

// InvalidState creates an invalid-state error
func InvalidState(message string) *AppError {
	return &AppError{Code: CodeInvalidState, Message: message}
}

// Transport wraps a collaborator failure
func Transport(message string, err error) *AppError {
	return &AppError{Code: CodeTransport, Message: message, Err: err}
}

// CodeOf returns the ErrorCode of err, or an empty code for non-AppErrors
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// IsConflict reports whether err is a conflict error
func IsConflict(err error) bool {
	return CodeOf(err) == CodeConflict
}

// IsTransport reports whether err is a transport error
func IsTransport(err error) bool {
	return CodeOf(err) == CodeTransport
}

// IsNotAuthorized reports whether err is a not-authorized error
func IsNotAuthorized(err error) bool {
	return CodeOf(err) == CodeNotAuthorized
}

// IsInvalidArgument reports whether err is an invalid-argument error
func IsInvalidArgument(err error) bool {
	return CodeOf(err) == CodeInvalidArgument
}

// IsInvalidState reports whether err is an invalid-state error
func IsInvalidState(err error) bool {
	return CodeOf(err) == CodeInvalidState
}
