package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/lexiqai/echolisten/internal/transcript"
)

// Config holds all configuration for the echolisten server and CLI
type Config struct {
	// Server configuration
	Port           string `envconfig:"PORT" default:"8080"`
	GRPCHealthPort string `envconfig:"GRPC_HEALTH_PORT" default:""` // gRPC health service; disabled when empty

	// Storage
	DBPath   string `envconfig:"DB_PATH" default:"echolisten.sqlite"`
	AudioDir string `envconfig:"AUDIO_DIR" default:"data/audio"` // Uploaded audio, one file per session

	// Speech recognition
	ASRProvider      string `envconfig:"ASR_PROVIDER" default:"deepgram"` // deepgram, whisper
	DeepgramAPIKey   string `envconfig:"DEEPGRAM_API_KEY"`
	DeepgramModel    string `envconfig:"DEEPGRAM_MODEL" default:"nova-3"`
	DeepgramLanguage string `envconfig:"DEEPGRAM_LANGUAGE" default:"en"`
	OpenAIAPIKey     string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL    string `envconfig:"OPENAI_BASE_URL" default:""`
	WhisperModel     string `envconfig:"WHISPER_MODEL" default:"whisper-1"`

	// Word lookup
	LookupProvider  string `envconfig:"LOOKUP_PROVIDER" default:"openai"` // openai, anthropic, none
	LookupModel     string `envconfig:"LOOKUP_MODEL" default:""`          // Provider default when empty
	AnthropicAPIKey string `envconfig:"ANTHROPIC_API_KEY"`
	RedisURL        string `envconfig:"REDIS_URL" default:""`        // Definition cache; disabled when empty
	LookupCacheTTL  int    `envconfig:"LOOKUP_CACHE_TTL" default:"720"` // hours

	// Pronunciation
	CartesiaAPIKey  string `envconfig:"CARTESIA_API_KEY" default:""` // Disabled when empty
	CartesiaVoiceID string `envconfig:"CARTESIA_VOICE_ID" default:"a0e99841-438c-4a64-b679-ae501e7d6091"`
	CartesiaModelID string `envconfig:"CARTESIA_MODEL_ID" default:"sonic-2"`

	// Segmentation and review
	SliceMethod     string  `envconfig:"SLICE_METHOD" default:"TURNS"`
	SliceRuleValue  float64 `envconfig:"SLICE_RULE_VALUE" default:"10"`
	ReviewIntervals []int   `envconfig:"REVIEW_INTERVALS" default:"0,1,2,4,7,15,30,90"` // days per stage

	// Resilience configuration
	CircuitBreakerMaxFailures  int `envconfig:"CIRCUIT_BREAKER_MAX_FAILURES" default:"5"`   // Failures before opening circuit
	CircuitBreakerResetTimeout int `envconfig:"CIRCUIT_BREAKER_RESET_TIMEOUT" default:"30"` // Seconds before attempting recovery
	RetryMaxAttempts           int `envconfig:"RETRY_MAX_ATTEMPTS" default:"3"`             // Maximum retry attempts
	RetryInitialBackoff        int `envconfig:"RETRY_INITIAL_BACKOFF" default:"100"`        // Initial backoff in milliseconds
	ReconnectMaxAttempts       int `envconfig:"RECONNECT_MAX_ATTEMPTS" default:"5"`         // Maximum reconnection attempts
	ReconnectBackoff           int `envconfig:"RECONNECT_BACKOFF" default:"1000"`           // Reconnection backoff in milliseconds

	// Observability configuration
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`       // Log level: debug, info, warn, error
	LogPretty      bool   `envconfig:"LOG_PRETTY" default:"false"`     // Pretty print logs (for development)
	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"true"` // Enable Prometheus metrics
}

// Load reads configuration from environment variables
// It first attempts to load from .env file if it exists, then from environment
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()
	return LoadFromEnv()
}

// LoadFromEnv loads configuration directly from environment variables
// without attempting to load .env file (useful for containerized deployments)
func LoadFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot. Provider API keys are checked by
// the adapters that need them so offline commands work without credentials.
func (c *Config) Validate() error {
	switch c.ASRProvider {
	case "deepgram", "whisper":
	default:
		return fmt.Errorf("ASR_PROVIDER must be deepgram or whisper, got %q", c.ASRProvider)
	}
	switch c.LookupProvider {
	case "openai", "anthropic", "none":
	default:
		return fmt.Errorf("LOOKUP_PROVIDER must be openai, anthropic or none, got %q", c.LookupProvider)
	}
	if _, err := transcript.ParseMethod(c.SliceMethod); err != nil {
		return fmt.Errorf("SLICE_METHOD: %w", err)
	}
	if c.SliceRuleValue < 1 {
		return fmt.Errorf("SLICE_RULE_VALUE must be >= 1, got %v", c.SliceRuleValue)
	}
	if len(c.ReviewIntervals) == 0 {
		return fmt.Errorf("REVIEW_INTERVALS must not be empty")
	}
	for _, d := range c.ReviewIntervals {
		if d < 0 {
			return fmt.Errorf("REVIEW_INTERVALS must not be negative, got %d", d)
		}
	}
	return nil
}

// Method returns the default slicing method.
func (c *Config) Method() transcript.Method {
	m, _ := transcript.ParseMethod(c.SliceMethod)
	return m
}

// CircuitBreakerTimeout is the reset timeout as a duration.
func (c *Config) CircuitBreakerTimeout() time.Duration {
	return time.Duration(c.CircuitBreakerResetTimeout) * time.Second
}

// CacheTTL is the definition cache lifetime.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.LookupCacheTTL) * time.Hour
}

// GetEnv returns the value of an environment variable or a default value
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
