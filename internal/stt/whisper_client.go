package stt

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/lexiqai/echolisten/internal/config"
	"github.com/lexiqai/echolisten/internal/observability"
	"github.com/lexiqai/echolisten/internal/resilience"
	"github.com/lexiqai/echolisten/internal/transcript"
)

// WhisperClient transcribes files with OpenAI Whisper using word-level
// timestamps. Whisper does not diarize, so every word has no speaker.
type WhisperClient struct {
	client *openai.Client
	model  string
	guard  *resilience.Guard
	logger zerolog.Logger
}

// NewWhisperClient creates a Whisper client
func NewWhisperClient(cfg *config.Config) (*WhisperClient, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required for the whisper provider")
	}

	clientConfig := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		clientConfig.BaseURL = cfg.OpenAIBaseURL
	}

	model := cfg.WhisperModel
	if model == "" {
		model = openai.Whisper1
	}

	return &WhisperClient{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
		guard:  newGuard("whisper", cfg),
		logger: observability.Component("stt").With().Str("provider", "whisper").Logger(),
	}, nil
}

// Name returns the provider display name
func (w *WhisperClient) Name() string {
	return "Whisper"
}

// Healthy reports whether the Whisper circuit is closed
func (w *WhisperClient) Healthy(ctx context.Context) (bool, error) {
	return w.guard.Breaker.Healthy(ctx)
}

// Transcribe uploads the file and returns its word timings
func (w *WhisperClient) Transcribe(ctx context.Context, audioPath string) ([]transcript.WordTiming, error) {
	if _, err := os.Stat(audioPath); err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	req := openai.AudioRequest{
		Model:    w.model,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []openai.TranscriptionTimestampGranularity{
			openai.TranscriptionTimestampGranularityWord,
		},
	}

	var resp openai.AudioResponse
	err := w.guard.Do(ctx, func(ctx context.Context) error {
		var err error
		resp, err = w.client.CreateTranscription(ctx, req)
		if err != nil {
			w.logger.Warn().Err(err).Str("path", audioPath).Msg("Whisper request failed")
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("whisper transcription failed: %w", err)
	}

	words := wordsFromWhisper(resp)
	if len(words) == 0 {
		return nil, ErrNoWords
	}
	return words, nil
}

func wordsFromWhisper(resp openai.AudioResponse) []transcript.WordTiming {
	words := make([]transcript.WordTiming, 0, len(resp.Words))
	for _, w := range resp.Words {
		token := strings.TrimSpace(w.Word)
		if token == "" {
			continue
		}
		end := w.End
		if end < w.Start {
			end = w.Start
		}
		words = append(words, transcript.WordTiming{Word: token, Start: w.Start, End: end})
	}
	return words
}
