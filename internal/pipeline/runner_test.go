package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

type blockingInvoker struct {
	started chan struct{}
	release chan struct{}
	err     error

	mu    sync.Mutex
	calls int
}

func newBlockingInvoker() *blockingInvoker {
	return &blockingInvoker{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
}

func (b *blockingInvoker) Invoke(ctx context.Context) error {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	b.started <- struct{}{}
	<-b.release
	return b.err
}

func (b *blockingInvoker) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestTrigger_SecondCallConflicts(t *testing.T) {
	invoker := newBlockingInvoker()
	runner := NewRunner(invoker)

	if err := runner.Trigger(context.Background()); err != nil {
		t.Fatalf("first trigger: %v", err)
	}
	<-invoker.started

	if err := runner.Trigger(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got: %v", err)
	}
	if !runner.Status().IsRunning {
		t.Fatal("status must report running")
	}

	close(invoker.release)
	waitFor(t, func() bool { return !runner.Status().IsRunning })

	if err := runner.Trigger(context.Background()); err != nil {
		t.Fatalf("trigger after completion: %v", err)
	}
	<-invoker.started
	if invoker.callCount() != 2 {
		t.Fatalf("expected 2 runs, got %d", invoker.callCount())
	}
}

func TestRun_RecordsFailure(t *testing.T) {
	invoker := newBlockingInvoker()
	invoker.err = errors.New("etl exploded")
	runner := NewRunner(invoker)

	if err := runner.Trigger(context.Background()); err != nil {
		t.Fatalf("trigger: %v", err)
	}
	<-invoker.started
	close(invoker.release)
	waitFor(t, func() bool { return !runner.Status().IsRunning })

	status := runner.Status()
	if status.LastRun == nil {
		t.Fatal("lastRun must be set")
	}
	if status.LastResult == "ok" || status.LastResult == "" {
		t.Fatalf("failure must be recorded, got %q", status.LastResult)
	}
}

func TestPipelineEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	invoker := newBlockingInvoker()
	runner := NewRunner(invoker)
	r := gin.New()
	NewHandler(runner).RegisterRoutes(r.Group("/api/v1"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pipeline/run", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("first trigger status = %d, want 202", rec.Code)
	}
	<-invoker.started

	req = httptest.NewRequest(http.MethodPost, "/api/v1/pipeline/run", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("second trigger status = %d, want 409", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/pipeline/status", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status endpoint = %d", rec.Code)
	}

	close(invoker.release)
	waitFor(t, func() bool { return !runner.Status().IsRunning })
}
