package apperr

import (
	"errors"
	"fmt"
)

var (
	// Configuration errors
	ErrConfiguration = errors.New("configuration error")

	// Input validation errors
	ErrInvalidArgument = errors.New("invalid argument")

	// Remote errors
	ErrRemoteRequest   = errors.New("remote request failed")
	ErrRemoteTransport = errors.New("remote transport failed")
	ErrRemoteOperation = errors.New("remote operation failed")

	// Authentication errors
	ErrNotAuthenticated = errors.New("not authenticated")
)

// ConfigurationError reports a missing or unusable connection parameter.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s is required", e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// InvalidArgument builds an ErrInvalidArgument carrying the offending value.
func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// RequestError is returned when a remote API answers with a non-2xx status.
type RequestError struct {
	Endpoint   string
	StatusCode int
	Status     string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request to %s failed: %d %s", e.Endpoint, e.StatusCode, e.Status)
}

func (e *RequestError) Unwrap() error { return ErrRemoteRequest }

// TransportError wraps a network-level failure (dial, TLS, read, decode).
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error on %s: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() []error { return []error{ErrRemoteTransport, e.Err} }

// RemoteOperationError wraps a backend read/write/delete failure.
type RemoteOperationError struct {
	Op  string
	Err error
}

func (e *RemoteOperationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteOperationError) Unwrap() []error { return []error{ErrRemoteOperation, e.Err} }
