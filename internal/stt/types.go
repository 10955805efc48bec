package stt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lexiqai/echolisten/internal/config"
	"github.com/lexiqai/echolisten/internal/resilience"
	"github.com/lexiqai/echolisten/internal/transcript"
)

// ErrNoWords is returned when the provider recognized nothing.
var ErrNoWords = errors.New("no transcription data returned")

// Transcriber turns an audio file into timed, optionally diarized words.
type Transcriber interface {
	// Transcribe blocks until the provider answers or ctx is done.
	Transcribe(ctx context.Context, audioPath string) ([]transcript.WordTiming, error)

	// Name is the provider's display name, shown in session subtitles.
	Name() string

	// Healthy reports whether the provider's circuit is closed.
	Healthy(ctx context.Context) (bool, error)
}

// New creates the transcriber selected by ASR_PROVIDER.
func New(cfg *config.Config) (Transcriber, error) {
	switch cfg.ASRProvider {
	case "deepgram":
		return NewDeepgramClient(cfg)
	case "whisper":
		return NewWhisperClient(cfg)
	default:
		return nil, fmt.Errorf("unknown ASR provider: %s", cfg.ASRProvider)
	}
}

func newGuard(name string, cfg *config.Config) *resilience.Guard {
	return resilience.NewGuard(
		name,
		cfg.CircuitBreakerMaxFailures,
		cfg.CircuitBreakerTimeout(),
		cfg.RetryMaxAttempts,
		time.Duration(cfg.RetryInitialBackoff)*time.Millisecond,
	)
}
