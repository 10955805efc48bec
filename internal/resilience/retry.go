package resilience

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"net"
	"strings"
	"time"
)

// RetryConfig holds configuration for retry logic
type RetryConfig struct {
	MaxAttempts       int           // Total attempts, including the first
	InitialBackoff    time.Duration // Wait before the second attempt
	MaxBackoff        time.Duration // Upper bound for any wait
	BackoffMultiplier float64       // Growth factor between waits
	Jitter            bool          // Add up to 25% random jitter
}

// DefaultRetryConfig returns a default retry configuration
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    100 * time.Millisecond,
		MaxBackoff:        5 * time.Second,
		BackoffMultiplier: 2.0,
		Jitter:            true,
	}
}

// NewRetryConfig builds a config from attempt count and initial backoff
func NewRetryConfig(maxAttempts int, initialBackoff time.Duration) *RetryConfig {
	cfg := DefaultRetryConfig()
	if maxAttempts > 0 {
		cfg.MaxAttempts = maxAttempts
	}
	if initialBackoff > 0 {
		cfg.InitialBackoff = initialBackoff
	}
	return cfg
}

// IsRetryableError classifies errors
type IsRetryableError func(error) bool

// Retry runs fn until it succeeds, returns a non-retryable error, runs out of
// attempts, or ctx is done. A nil isRetryable retries every error.
func Retry(ctx context.Context, config *RetryConfig, isRetryable IsRetryableError, fn func(context.Context) error) error {
	if config == nil {
		config = DefaultRetryConfig()
	}

	var lastErr error
	for attempt := 0; attempt < config.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return lastErr
			}
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if isRetryable != nil && !isRetryable(lastErr) {
			return lastErr
		}
		if attempt == config.MaxAttempts-1 {
			break
		}

		wait := CalculateBackoff(attempt, config.InitialBackoff, config.MaxBackoff, config.BackoffMultiplier)
		if config.Jitter {
			wait += time.Duration(rand.Float64() * 0.25 * float64(wait))
			if wait > config.MaxBackoff {
				wait = config.MaxBackoff
			}
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return lastErr
		case <-timer.C:
		}
	}
	return lastErr
}

// CalculateBackoff calculates the backoff duration for a given attempt
func CalculateBackoff(attempt int, initialBackoff time.Duration, maxBackoff time.Duration, multiplier float64) time.Duration {
	backoff := time.Duration(float64(initialBackoff) * math.Pow(multiplier, float64(attempt)))
	if backoff > maxBackoff {
		return maxBackoff
	}
	return backoff
}

var retryableMessages = []string{
	// connection
	"connection refused",
	"connection reset",
	"connection closed",
	"broken pipe",
	"unexpected eof",
	"network is unreachable",
	"no route to host",
	// timeouts
	"deadline exceeded",
	"timeout",
	// provider back-pressure
	"rate limit",
	"too many requests",
	"429",
	"502",
	"503",
	"504",
	"unavailable",
}

// IsRetryableNetworkError checks if an error is a transient network or
// provider error
func IsRetryableNetworkError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, ErrCircuitOpen) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, m := range retryableMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// ShouldRetry accepts explicitly marked errors and transient network errors
func ShouldRetry(err error) bool {
	return IsRetryable(err) || IsRetryableNetworkError(err)
}

// RetryableError wraps an error to indicate it's retryable
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string {
	return e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// NewRetryableError creates a new retryable error
func NewRetryableError(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable checks if an error is a RetryableError
func IsRetryable(err error) bool {
	var retryableErr *RetryableError
	return errors.As(err, &retryableErr)
}
