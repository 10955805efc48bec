package resilience

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lexiqai/echolisten/internal/observability"
)

// ErrCircuitOpen is returned while a breaker rejects calls.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitState represents the state of a circuit breaker
type CircuitState int

const (
	StateClosed   CircuitState = iota // Normal operation
	StateOpen                         // Calls fail immediately
	StateHalfOpen                     // Probing whether the provider recovered
)

func (s CircuitState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	}
	return "unknown"
}

// CircuitBreaker guards calls to an external provider
type CircuitBreaker struct {
	name         string
	maxFailures  int
	resetTimeout time.Duration
	halfOpenMax  int

	mu            sync.Mutex
	state         CircuitState
	failures      int
	halfOpenCalls int
	successes     int
	lastFailure   time.Time
	requests      int64
	totalFailures int64
}

// Stats is a snapshot of breaker counters
type Stats struct {
	State       CircuitState
	Requests    int64
	Failures    int64
	FailureRate float64 // percent
}

// NewCircuitBreaker creates a breaker that opens after maxFailures
// consecutive failures and probes again after resetTimeout.
func NewCircuitBreaker(name string, maxFailures int, resetTimeout time.Duration) *CircuitBreaker {
	if maxFailures < 1 {
		maxFailures = 1
	}
	return &CircuitBreaker{
		name:         name,
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		halfOpenMax:  3,
		state:        StateClosed,
	}
}

// Name returns the guarded service name
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// Execute runs fn unless the circuit is open. Cancellation of ctx is not
// counted as a provider failure.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	if !cb.allowRequest() {
		return fmt.Errorf("%s: %w", cb.name, ErrCircuitOpen)
	}

	err := fn(ctx)
	if err != nil && ctx.Err() != nil {
		cb.release()
		return err
	}
	cb.RecordResult(err == nil)
	return err
}

func (cb *CircuitBreaker) allowRequest() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return true

	case StateOpen:
		if time.Since(cb.lastFailure) < cb.resetTimeout {
			return false
		}
		cb.setState(StateHalfOpen)
		cb.halfOpenCalls = 1
		cb.successes = 0
		return true

	case StateHalfOpen:
		if cb.halfOpenCalls < cb.halfOpenMax {
			cb.halfOpenCalls++
			return true
		}
	}
	return false
}

// release returns a half-open probe slot for a call that never reached the
// provider.
func (cb *CircuitBreaker) release() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == StateHalfOpen && cb.halfOpenCalls > 0 {
		cb.halfOpenCalls--
	}
}

// RecordResult records the outcome of a call made outside Execute
func (cb *CircuitBreaker) RecordResult(success bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.requests++
	if success {
		cb.onSuccess()
	} else {
		cb.onFailure()
	}
}

func (cb *CircuitBreaker) onSuccess() {
	switch cb.state {
	case StateClosed:
		cb.failures = 0
	case StateHalfOpen:
		cb.successes++
		if cb.successes >= cb.halfOpenMax {
			cb.setState(StateClosed)
			cb.failures = 0
			cb.halfOpenCalls = 0
			cb.successes = 0
		}
	}
}

func (cb *CircuitBreaker) onFailure() {
	cb.totalFailures++
	cb.lastFailure = time.Now()
	observability.IncrementCircuitBreakerFailures(cb.name)

	switch cb.state {
	case StateClosed:
		cb.failures++
		if cb.failures >= cb.maxFailures {
			cb.setState(StateOpen)
		}
	case StateHalfOpen:
		cb.setState(StateOpen)
		cb.halfOpenCalls = 0
		cb.successes = 0
	}
}

// setState must be called with mu held
func (cb *CircuitBreaker) setState(state CircuitState) {
	if cb.state == state {
		return
	}
	cb.state = state
	observability.UpdateCircuitBreakerState(cb.name, int(state))
	logger := observability.Component("resilience")
	logger.Info().
		Str("service", cb.name).
		Str("state", state.String()).
		Msg("Circuit breaker state changed")
}

// State returns the current state
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Stats returns a snapshot of the breaker counters
func (cb *CircuitBreaker) Stats() Stats {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	s := Stats{
		State:    cb.state,
		Requests: cb.requests,
		Failures: cb.totalFailures,
	}
	if s.Requests > 0 {
		s.FailureRate = float64(s.Failures) / float64(s.Requests) * 100.0
	}
	return s
}

// Healthy reports whether calls are currently let through
func (cb *CircuitBreaker) Healthy(ctx context.Context) (bool, error) {
	if cb.State() == StateOpen {
		return false, fmt.Errorf("%s: %w", cb.name, ErrCircuitOpen)
	}
	return true, nil
}

// Reset manually closes the circuit
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.setState(StateClosed)
	cb.failures = 0
	cb.halfOpenCalls = 0
	cb.successes = 0
}
