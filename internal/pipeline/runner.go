package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"jobsearch-backend/internal/shared/telemetry"
)

// ErrAlreadyRunning is returned when a trigger arrives while a run is active.
var ErrAlreadyRunning = errors.New("pipeline run already in progress")

// Invoker starts one ETL run. ExecInvoker shells out locally; SQSInvoker
// hands the run to a worker through a queue.
type Invoker interface {
	Invoke(ctx context.Context) error
}

// Status is a snapshot of the runner state.
type Status struct {
	IsRunning  bool       `json:"isRunning"`
	LastRun    *time.Time `json:"lastRun,omitempty"`
	LastResult string     `json:"lastResult,omitempty"`
}

// Runner serializes pipeline runs: at most one at a time.
type Runner struct {
	Invoker Invoker

	mu         sync.Mutex
	isRunning  bool
	lastRun    *time.Time
	lastResult string
}

// NewRunner constructs a Runner.
func NewRunner(invoker Invoker) *Runner {
	return &Runner{Invoker: invoker}
}

// Trigger starts a run in the background. Returns ErrAlreadyRunning if one
// is active.
func (r *Runner) Trigger(ctx context.Context) error {
	r.mu.Lock()
	if r.isRunning {
		r.mu.Unlock()
		return ErrAlreadyRunning
	}
	r.isRunning = true
	r.mu.Unlock()

	// Detach from the request context; the run outlives the HTTP call.
	go r.run(context.WithoutCancel(ctx))
	return nil
}

func (r *Runner) run(ctx context.Context) {
	started := time.Now().UTC()
	err := r.Invoker.Invoke(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.isRunning = false
	r.lastRun = &started
	if err != nil {
		r.lastResult = "failed: " + err.Error()
		telemetry.Error("pipeline run failed", map[string]any{"error": err.Error()})
		return
	}
	r.lastResult = "ok"
	telemetry.Info("pipeline run finished", map[string]any{
		"durationMs": time.Since(started).Milliseconds(),
	})
}

// Status returns the current runner snapshot.
func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Status{
		IsRunning:  r.isRunning,
		LastRun:    r.lastRun,
		LastResult: r.lastResult,
	}
}
