package resilience

import (
	"context"
	"fmt"
	"time"

	"github.com/lexiqai/echolisten/internal/observability"
)

// ReconnectConfig holds configuration for reconnection logic
type ReconnectConfig struct {
	MaxAttempts int           // Maximum number of connection attempts
	Backoff     time.Duration // Wait after the first failed attempt
	Multiplier  float64       // Growth factor between waits
	MaxBackoff  time.Duration // Upper bound for any wait
}

// DefaultReconnectConfig returns a default reconnection configuration
func DefaultReconnectConfig() *ReconnectConfig {
	return &ReconnectConfig{
		MaxAttempts: 5,
		Backoff:     1 * time.Second,
		Multiplier:  2.0,
		MaxBackoff:  30 * time.Second,
	}
}

// Reconnect dials a backing service with exponential backoff. It is used at
// startup for stores that may come up after this process.
func Reconnect(ctx context.Context, name string, fn func(context.Context) error, config *ReconnectConfig) error {
	if config == nil {
		config = DefaultReconnectConfig()
	}
	logger := observability.Component("resilience").With().Str("service", name).Logger()

	backoff := config.Backoff
	var lastErr error
	for attempt := 0; attempt < config.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			if attempt > 0 {
				logger.Info().Int("attempts", attempt+1).Msg("Connected after retries")
			}
			return nil
		}
		if attempt == config.MaxAttempts-1 {
			break
		}

		logger.Warn().
			Err(lastErr).
			Int("attempt", attempt+1).
			Int("max_attempts", config.MaxAttempts).
			Dur("backoff", backoff).
			Msg("Connection attempt failed")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff = time.Duration(float64(backoff) * config.Multiplier)
		if backoff > config.MaxBackoff {
			backoff = config.MaxBackoff
		}
	}

	return fmt.Errorf("failed to connect to %s after %d attempts: %w", name, config.MaxAttempts, lastErr)
}
