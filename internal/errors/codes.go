// Package errors defines the structured error taxonomy shared by the tool
// handlers, the publish pipeline, and the background sweeps.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a failure for callers of the tool surface.
type ErrorCode string

const (
	// ErrCodeNotFound indicates a missing local artifact, font face, or
	// remote object.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeInvalidArgument indicates malformed input, such as a publish
	// target with an empty bucket.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeTransientTransport indicates a retryable network or storage
	// failure.
	ErrCodeTransientTransport ErrorCode = "TRANSIENT_TRANSPORT"
	// ErrCodePublishFailed indicates upload retries were exhausted.
	ErrCodePublishFailed ErrorCode = "PUBLISH_FAILED"
	// ErrCodeUnavailable indicates a collaborator service is not configured
	// or not usable on this platform.
	ErrCodeUnavailable ErrorCode = "UNAVAILABLE"
)

// Error is a coded error with an optional underlying cause.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NotFound creates a not found error.
func NotFound(format string, args ...any) *Error {
	return &Error{Code: ErrCodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// InvalidArgument creates an invalid argument error.
func InvalidArgument(format string, args ...any) *Error {
	return &Error{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// TransientTransport creates a retryable transport error.
func TransientTransport(msg string, cause error) *Error {
	return &Error{Code: ErrCodeTransientTransport, Message: msg, Cause: cause}
}

// PublishFailed creates a fatal publish error.
func PublishFailed(msg string, cause error) *Error {
	return &Error{Code: ErrCodePublishFailed, Message: msg, Cause: cause}
}

// Unavailable creates an unavailable error.
func Unavailable(msg string) *Error {
	return &Error{Code: ErrCodeUnavailable, Message: msg}
}

// CodeOf returns the error code of err, or an empty code when err carries
// no classification.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsNotFound reports whether err is classified as not found.
func IsNotFound(err error) bool {
	return CodeOf(err) == ErrCodeNotFound
}

// IsTransient reports whether err is classified as a retryable transport
// failure.
func IsTransient(err error) bool {
	return CodeOf(err) == ErrCodeTransientTransport
}
