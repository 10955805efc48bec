package config

import (
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/lexiqai/echolisten/internal/transcript"
)

func TestLoad(t *testing.T) {
	os.Setenv("DEEPGRAM_API_KEY", "test-deepgram-key")
	os.Setenv("ASR_PROVIDER", "deepgram")
	defer os.Unsetenv("DEEPGRAM_API_KEY")
	defer os.Unsetenv("ASR_PROVIDER")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.DeepgramAPIKey != "test-deepgram-key" {
		t.Errorf("Expected DeepgramAPIKey 'test-deepgram-key', got '%s'", cfg.DeepgramAPIKey)
	}
}

func TestLoad_WithoutCredentials(t *testing.T) {
	os.Unsetenv("DEEPGRAM_API_KEY")
	os.Unsetenv("OPENAI_API_KEY")

	if _, err := LoadFromEnv(); err != nil {
		t.Errorf("Expected offline configuration to load, got %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected default Port '8080', got '%s'", cfg.Port)
	}

	if cfg.DBPath != "echolisten.sqlite" {
		t.Errorf("Expected default DBPath 'echolisten.sqlite', got '%s'", cfg.DBPath)
	}

	if cfg.DeepgramModel != "nova-3" {
		t.Errorf("Expected default DeepgramModel 'nova-3', got '%s'", cfg.DeepgramModel)
	}

	if cfg.DeepgramLanguage != "en" {
		t.Errorf("Expected default DeepgramLanguage 'en', got '%s'", cfg.DeepgramLanguage)
	}

	if cfg.WhisperModel != "whisper-1" {
		t.Errorf("Expected default WhisperModel 'whisper-1', got '%s'", cfg.WhisperModel)
	}

	if cfg.Method() != transcript.MethodTurns {
		t.Errorf("Expected default method TURNS, got %s", cfg.Method())
	}

	if cfg.SliceRuleValue != 10 {
		t.Errorf("Expected default SliceRuleValue 10, got %v", cfg.SliceRuleValue)
	}

	want := []int{0, 1, 2, 4, 7, 15, 30, 90}
	if !reflect.DeepEqual(cfg.ReviewIntervals, want) {
		t.Errorf("Expected default ReviewIntervals %v, got %v", want, cfg.ReviewIntervals)
	}

	if cfg.CacheTTL() != 720*time.Hour {
		t.Errorf("Expected default cache TTL 720h, got %v", cfg.CacheTTL())
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"ASR_PROVIDER", "vosk"},
		{"LOOKUP_PROVIDER", "gemini"},
		{"SLICE_METHOD", "SENTENCES"},
		{"SLICE_RULE_VALUE", "0"},
		{"REVIEW_INTERVALS", "1,-2"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			os.Setenv(tt.key, tt.value)
			defer os.Unsetenv(tt.key)

			if _, err := LoadFromEnv(); err == nil {
				t.Errorf("Expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestLoad_CustomIntervals(t *testing.T) {
	os.Setenv("REVIEW_INTERVALS", "0,3,9")
	os.Setenv("SLICE_METHOD", "paragraph")
	defer os.Unsetenv("REVIEW_INTERVALS")
	defer os.Unsetenv("SLICE_METHOD")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() failed: %v", err)
	}

	if !reflect.DeepEqual(cfg.ReviewIntervals, []int{0, 3, 9}) {
		t.Errorf("Expected ReviewIntervals [0 3 9], got %v", cfg.ReviewIntervals)
	}
	if cfg.Method() != transcript.MethodParagraph {
		t.Errorf("Expected method PARAGRAPH, got %s", cfg.Method())
	}
}

func TestGetEnv(t *testing.T) {
	os.Setenv("TEST_KEY", "test-value")
	defer os.Unsetenv("TEST_KEY")

	value := GetEnv("TEST_KEY", "default")
	if value != "test-value" {
		t.Errorf("Expected 'test-value', got '%s'", value)
	}

	value = GetEnv("NON_EXISTENT_KEY", "default")
	if value != "default" {
		t.Errorf("Expected 'default', got '%s'", value)
	}
}

func TestConfig_ResilienceDefaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() failed: %v", err)
	}

	if cfg.CircuitBreakerMaxFailures != 5 {
		t.Errorf("Expected default CircuitBreakerMaxFailures 5, got %d", cfg.CircuitBreakerMaxFailures)
	}

	if cfg.CircuitBreakerTimeout() != 30*time.Second {
		t.Errorf("Expected default circuit breaker timeout 30s, got %v", cfg.CircuitBreakerTimeout())
	}

	if cfg.RetryMaxAttempts != 3 {
		t.Errorf("Expected default RetryMaxAttempts 3, got %d", cfg.RetryMaxAttempts)
	}

	if cfg.ReconnectBackoff != 1000 {
		t.Errorf("Expected default ReconnectBackoff 1000, got %d", cfg.ReconnectBackoff)
	}
}

func TestConfig_ObservabilityDefaults(t *testing.T) {
	os.Unsetenv("LOG_LEVEL")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() failed: %v", err)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("Expected default LogLevel 'info', got '%s'", cfg.LogLevel)
	}

	if cfg.LogPretty {
		t.Error("Expected default LogPretty false, got true")
	}

	if !cfg.MetricsEnabled {
		t.Error("Expected default MetricsEnabled true, got false")
	}
}
