package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"jobsearch-backend/internal/shared/telemetry"
)

const (
	defaultAttempts    = 3
	defaultBaseDelay   = time.Second
	defaultCallTimeout = 60 * time.Second

	// Anything shorter carries too little signal for an honest analysis.
	minInputChars = 50
)

// Analyzer runs resume analysis against a provider with bounded retries.
// Zero fields take defaults, so tests can shrink BaseDelay.
type Analyzer struct {
	Client      Client
	Attempts    int
	BaseDelay   time.Duration
	CallTimeout time.Duration
}

// IsConfigured reports whether a provider client is wired in.
func (a *Analyzer) IsConfigured() bool {
	return a != nil && a.Client != nil
}

// Analyze validates the input, calls the provider with retry on transient
// failures, and parses the output. Validation failures never reach the
// provider.
func (a *Analyzer) Analyze(ctx context.Context, resumeText string) (Result, error) {
	if strings.TrimSpace(resumeText) == "" || len(strings.TrimSpace(resumeText)) < minInputChars {
		return Result{}, ErrInvalidInput
	}
	if !a.IsConfigured() {
		return Result{}, ErrNotConfigured
	}

	attempts := a.Attempts
	if attempts <= 0 {
		attempts = defaultAttempts
	}
	baseDelay := a.BaseDelay
	if baseDelay <= 0 {
		baseDelay = defaultBaseDelay
	}
	callTimeout := a.CallTimeout
	if callTimeout <= 0 {
		callTimeout = defaultCallTimeout
	}

	prompt := BuildAnalysisPrompt(resumeText)

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		raw, err := a.completeOnce(ctx, prompt, callTimeout)
		if err == nil {
			result, parseErr := ParseResult(raw)
			if parseErr == nil {
				return result, nil
			}
			// A garbage generation may parse on the next attempt, so
			// unparseable output retries alongside transport failures.
			err = parseErr
		}
		lastErr = err

		if !isTransient(err) && !errors.Is(err, ErrInvalidResponse) {
			return Result{}, err
		}
		if attempt == attempts {
			break
		}

		delay := baseDelay << (attempt - 1)
		telemetry.Warn("llm retry", map[string]any{
			"attempt": attempt,
			"delay":   delay.String(),
			"error":   err.Error(),
		})
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return Result{}, ctx.Err()
		}
	}

	return Result{}, &RetryableError{Err: fmt.Errorf("analysis failed after %d attempts: %w", attempts, lastErr)}
}

func (a *Analyzer) completeOnce(ctx context.Context, prompt string, timeout time.Duration) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return a.Client.Complete(callCtx, prompt)
}
