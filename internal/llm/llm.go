package llm

import (
	"context"
	"errors"
	"net"
	"strings"
)

// Client abstracts a chat-completion provider. Complete sends a single prompt
// and returns the raw model output as text.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ErrNotConfigured is returned when no provider credentials are available.
var ErrNotConfigured = errors.New("llm provider not configured")

// ErrInvalidInput is returned when the input text is too short to analyze.
var ErrInvalidInput = errors.New("input text too short to analyze")

// ErrInvalidResponse is returned when the model output cannot be parsed
// into an analysis result.
var ErrInvalidResponse = errors.New("invalid analysis response")

// RetryableError marks an upstream failure as transient. Handlers map these
// to 503 instead of 500.
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string { return e.Err.Error() }

func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err represents a transient upstream failure.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// isTransient classifies provider errors worth retrying. Provider SDKs and raw
// HTTP clients don't share error types, so this falls back to message sniffing.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "http status 5") || strings.Contains(msg, "server_error") {
		return true
	}
	if strings.Contains(msg, "status 429") || strings.Contains(msg, "rate limit") || strings.Contains(msg, "resource exhausted") {
		return true
	}
	if strings.Contains(msg, "timeout") && (strings.Contains(msg, "openai") || strings.Contains(msg, "gemini") || strings.Contains(msg, "llm") || strings.Contains(msg, "client.timeout")) {
		return true
	}
	if strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection closed") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "tls handshake timeout") ||
		strings.Contains(msg, "unavailable") ||
		strings.Contains(msg, "eof") {
		return true
	}

	return false
}
