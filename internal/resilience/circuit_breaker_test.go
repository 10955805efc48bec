package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCircuitBreaker_StateClosed(t *testing.T) {
	cb := NewCircuitBreaker("test", 3, 1*time.Second)

	if cb.State() != StateClosed {
		t.Errorf("Expected initial state to be Closed, got %s", cb.State())
	}

	if !cb.allowRequest() {
		t.Error("Expected to allow request in Closed state")
	}
}

func TestCircuitBreaker_OpenAfterFailures(t *testing.T) {
	cb := NewCircuitBreaker("test", 3, 1*time.Second)

	cb.RecordResult(false)
	cb.RecordResult(false)
	if cb.State() != StateClosed {
		t.Error("Expected state to still be Closed after 2 failures")
	}

	cb.RecordResult(false)
	if cb.State() != StateOpen {
		t.Error("Expected state to be Open after 3 failures")
	}

	if cb.allowRequest() {
		t.Error("Expected to not allow request in Open state")
	}
}

func TestCircuitBreaker_SuccessResetsFailures(t *testing.T) {
	cb := NewCircuitBreaker("test", 3, 1*time.Second)

	cb.RecordResult(false)
	cb.RecordResult(false)
	cb.RecordResult(true)
	cb.RecordResult(false)
	cb.RecordResult(false)

	if cb.State() != StateClosed {
		t.Error("Expected consecutive failure count to reset on success")
	}
}

func TestCircuitBreaker_HalfOpen(t *testing.T) {
	cb := NewCircuitBreaker("test", 3, 100*time.Millisecond)

	cb.RecordResult(false)
	cb.RecordResult(false)
	cb.RecordResult(false)

	time.Sleep(150 * time.Millisecond)

	if !cb.allowRequest() {
		t.Error("Expected to allow request after timeout (HalfOpen)")
	}
	if cb.Stats().State != StateHalfOpen {
		t.Errorf("Expected state to be HalfOpen, got %s", cb.Stats().State)
	}

	// three probes in total, the fourth waits
	cb.allowRequest()
	cb.allowRequest()
	if cb.allowRequest() {
		t.Error("Expected probe limit in HalfOpen state")
	}
}

func TestCircuitBreaker_CloseAfterSuccess(t *testing.T) {
	cb := NewCircuitBreaker("test", 3, 100*time.Millisecond)

	cb.RecordResult(false)
	cb.RecordResult(false)
	cb.RecordResult(false)

	time.Sleep(150 * time.Millisecond)
	cb.allowRequest()

	for i := 0; i < 3; i++ {
		cb.RecordResult(true)
	}

	if cb.State() != StateClosed {
		t.Error("Expected state to be Closed after successes in HalfOpen")
	}
}

func TestCircuitBreaker_OpenAfterFailureInHalfOpen(t *testing.T) {
	cb := NewCircuitBreaker("test", 3, 100*time.Millisecond)

	cb.RecordResult(false)
	cb.RecordResult(false)
	cb.RecordResult(false)

	time.Sleep(150 * time.Millisecond)
	cb.allowRequest()

	cb.RecordResult(false)

	if cb.State() != StateOpen {
		t.Error("Expected state to be Open after failure in HalfOpen")
	}
}

func TestCircuitBreaker_Execute(t *testing.T) {
	cb := NewCircuitBreaker("test", 2, 1*time.Second)
	ctx := context.Background()

	if err := cb.Execute(ctx, func(context.Context) error { return nil }); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	testErr := errors.New("provider down")
	for i := 0; i < 2; i++ {
		if err := cb.Execute(ctx, func(context.Context) error { return testErr }); !errors.Is(err, testErr) {
			t.Errorf("Expected provider error, got %v", err)
		}
	}

	called := false
	err := cb.Execute(ctx, func(context.Context) error {
		called = true
		return nil
	})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Expected ErrCircuitOpen, got %v", err)
	}
	if called {
		t.Error("Expected function not to be called while open")
	}

	if healthy, _ := cb.Healthy(ctx); healthy {
		t.Error("Expected breaker to report unhealthy while open")
	}
}

func TestCircuitBreaker_CancellationIsNotFailure(t *testing.T) {
	cb := NewCircuitBreaker("test", 1, 1*time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := cb.Execute(ctx, func(ctx context.Context) error { return ctx.Err() })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if cb.State() != StateClosed {
		t.Errorf("Expected cancellation to leave the circuit Closed, got %s", cb.State())
	}
}

func TestCircuitBreaker_Stats(t *testing.T) {
	cb := NewCircuitBreaker("test", 10, 1*time.Second)

	cb.RecordResult(true)
	cb.RecordResult(false)
	cb.RecordResult(true)
	cb.RecordResult(false)

	stats := cb.Stats()
	if stats.Requests != 4 {
		t.Errorf("Expected 4 requests, got %d", stats.Requests)
	}
	if stats.Failures != 2 {
		t.Errorf("Expected 2 failures, got %d", stats.Failures)
	}
	if stats.FailureRate != 50.0 {
		t.Errorf("Expected failure rate 50%%, got %.2f%%", stats.FailureRate)
	}
}

func TestCircuitBreaker_Reset(t *testing.T) {
	cb := NewCircuitBreaker("test", 3, 1*time.Second)

	cb.RecordResult(false)
	cb.RecordResult(false)
	cb.RecordResult(false)

	cb.Reset()

	if cb.State() != StateClosed {
		t.Error("Expected state to be Closed after reset")
	}
}
