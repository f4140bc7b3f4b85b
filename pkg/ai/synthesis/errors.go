package synthesis

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoContentAvailable is returned by the synthesizer when no channel qualifies for inclusion
var ErrNoContentAvailable = errors.New("no content available for synthesis")

// ErrorKind classifies why a backend call did not produce usable content
type ErrorKind string

const (
	KindTimeout         ErrorKind = "timeout"
	KindCancelled       ErrorKind = "cancelled"
	KindUnavailable     ErrorKind = "unavailable"
	KindInvalidResponse ErrorKind = "invalid_response"
	KindEmptyContent    ErrorKind = "empty_content"
	KindPanic           ErrorKind = "panic"
	KindNotConfigured   ErrorKind = "not_configured"
)

// BackendError is the typed failure a Backend returns
type BackendError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *BackendError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// NewBackendError builds a BackendError of the given kind
func NewBackendError(kind ErrorKind, message string, err error) *BackendError {
	return &BackendError{Kind: kind, Message: message, Err: err}
}

// AsBackendError converts any error into a BackendError.
// Context errors are mapped to timeout/cancelled, everything else untyped becomes unavailable.
func AsBackendError(err error) *BackendError {
	if err == nil {
		return nil
	}
	var be *BackendError
	if errors.As(err, &be) {
		return be
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return NewBackendError(KindTimeout, "backend deadline exceeded", err)
	case errors.Is(err, context.Canceled):
		return NewBackendError(KindCancelled, "backend call cancelled", err)
	default:
		return NewBackendError(KindUnavailable, "backend call failed", err)
	}
}

// ConfigurationError reports malformed tuning. It is fatal at startup.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid synthesis configuration (%s): %s", e.Field, e.Reason)
}
