package observability

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	globalLogger zerolog.Logger
	initOnce     sync.Once
)

// CorrelationHeader carries the request correlation ID.
const CorrelationHeader = "X-Correlation-ID"

// InitLogger initializes the global structured logger. Later calls are no-ops.
func InitLogger(level string, pretty bool) {
	InitLoggerTo(os.Stdout, level, pretty)
}

// InitLoggerTo initializes the global logger writing to out. The terminal
// client logs to stderr so stdout stays clean for command output.
func InitLoggerTo(out io.Writer, level string, pretty bool) {
	initOnce.Do(func() {
		logLevel, err := zerolog.ParseLevel(level)
		if err != nil || level == "" {
			logLevel = zerolog.InfoLevel
		}
		zerolog.SetGlobalLevel(logLevel)

		if pretty {
			out = zerolog.ConsoleWriter{
				Out:        out,
				TimeFormat: time.RFC3339,
			}
		}
		globalLogger = zerolog.New(out).With().Timestamp().Logger()
		log.Logger = globalLogger
	})
}

// GetLogger returns the global logger
func GetLogger() zerolog.Logger {
	InitLogger("info", false)
	return globalLogger
}

// Component returns a logger tagged with a component name
func Component(name string) zerolog.Logger {
	return GetLogger().With().Str("component", name).Logger()
}

// WithContext creates a logger with context fields
func WithContext(fields map[string]interface{}) zerolog.Logger {
	return GetLogger().With().Fields(fields).Logger()
}

// WithCorrelationID creates a logger with a correlation ID
func WithCorrelationID(correlationID string) zerolog.Logger {
	if correlationID == "" {
		correlationID = NewCorrelationID()
	}
	return GetLogger().With().Str("correlation_id", correlationID).Logger()
}

// NewCorrelationID generates a new correlation ID
func NewCorrelationID() string {
	return uuid.New().String()
}
