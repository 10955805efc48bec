package resilience

import (
	"context"
	"time"
)

// Guard combines a circuit breaker with retries for calls to one provider.
// Retries happen inside a single breaker call, so a burst of retried
// failures counts once.
type Guard struct {
	Breaker *CircuitBreaker
	Retry   *RetryConfig
}

// NewGuard builds a guard from the shared resilience settings.
func NewGuard(name string, maxFailures int, resetTimeout time.Duration, retryAttempts int, retryBackoff time.Duration) *Guard {
	return &Guard{
		Breaker: NewCircuitBreaker(name, maxFailures, resetTimeout),
		Retry:   NewRetryConfig(retryAttempts, retryBackoff),
	}
}

// Do runs fn under the breaker, retrying transient errors.
func (g *Guard) Do(ctx context.Context, fn func(context.Context) error) error {
	return g.Breaker.Execute(ctx, func(ctx context.Context) error {
		return Retry(ctx, g.Retry, ShouldRetry, fn)
	})
}
