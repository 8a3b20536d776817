package errors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrMalformedInput marks a user-supplied link or token that could not be parsed.
	ErrMalformedInput = errors.New("malformed input")
	// ErrBoundaryNotFound marks an id-range boundary post absent from the profile listing.
	ErrBoundaryNotFound = errors.New("boundary post not found in listing")
	// ErrPostNotFound is the 404-equivalent for a single post. Terminal, no retry.
	ErrPostNotFound = errors.New("post not found")
	// ErrRateLimited signals the caller should pause and retry.
	ErrRateLimited = errors.New("rate limited")
	// ErrTransientNetwork signals a retryable network failure.
	ErrTransientNetwork = errors.New("transient network error")
	// ErrIO is a local filesystem failure (disk full, permissions).
	ErrIO = errors.New("io error")
)

// Error represents a custom error type
type Error struct {
	Code    string
	Message string
	Err     error
}

// Error returns the error message
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new error with a message
func New(message string) error {
	return &Error{
		Message: message,
	}
}

// Wrap wraps an error with additional message
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		Message: message,
		Err:     err,
	}
}

// WrapWithCode wraps an error with a code and message
func WrapWithCode(err error, code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// GetCode returns the error code if it exists
func GetCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// MalformedInput builds an input error that names the offending token.
func MalformedInput(token, reason string) error {
	return fmt.Errorf("%w: %q (%s)", ErrMalformedInput, token, reason)
}

// IsRetryable returns true for errors the orchestrator may retry with backoff.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrTransientNetwork)
}

// IsPostNotFound returns true if the error is a post not found error
func IsPostNotFound(err error) bool {
	return errors.Is(err, ErrPostNotFound)
}
