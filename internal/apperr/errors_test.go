package apperr

import (
	"errors"
	"io"
	"testing"
)

func TestErrorsWrapSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"configuration", &ConfigurationError{Field: "SUPABASE_URL"}, ErrConfiguration},
		{"invalid argument", InvalidArgument("media type %q", "anime"), ErrInvalidArgument},
		{"request", &RequestError{Endpoint: "trending/movie/week", StatusCode: 401, Status: "Unauthorized"}, ErrRemoteRequest},
		{"transport", &TransportError{Endpoint: "x", Err: io.ErrUnexpectedEOF}, ErrRemoteTransport},
		{"remote operation", &RemoteOperationError{Op: "insert bookmark", Err: io.EOF}, ErrRemoteOperation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false, want true", tt.err, tt.sentinel)
			}
		})
	}
}

func TestTransportErrorKeepsCause(t *testing.T) {
	err := &TransportError{Endpoint: "x", Err: io.ErrUnexpectedEOF}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("TransportError should unwrap to its cause")
	}
}

func TestConfigurationErrorMessage(t *testing.T) {
	err := &ConfigurationError{Field: "SUPABASE_KEY"}
	if got := err.Error(); got != "SUPABASE_KEY is required" {
		t.Errorf("Error() = %q, want %q", got, "SUPABASE_KEY is required")
	}
}
