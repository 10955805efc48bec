package stt

import (
	"context"
	"fmt"
	"os"
	"strings"

	api "github.com/deepgram/deepgram-go-sdk/v3/pkg/api/listen/v1/rest"
	restinterfaces "github.com/deepgram/deepgram-go-sdk/v3/pkg/api/listen/v1/rest/interfaces"
	interfaces "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/interfaces"
	listenClient "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/listen"
	"github.com/rs/zerolog"

	"github.com/lexiqai/echolisten/internal/config"
	"github.com/lexiqai/echolisten/internal/observability"
	"github.com/lexiqai/echolisten/internal/resilience"
	"github.com/lexiqai/echolisten/internal/transcript"
)

// DeepgramClient transcribes recorded files with Deepgram's prerecorded API,
// asking for smart formatting and speaker diarization.
type DeepgramClient struct {
	client  *api.Client
	options *interfaces.PreRecordedTranscriptionOptions
	guard   *resilience.Guard
	logger  zerolog.Logger
}

// NewDeepgramClient creates a prerecorded Deepgram client
func NewDeepgramClient(cfg *config.Config) (*DeepgramClient, error) {
	if cfg.DeepgramAPIKey == "" {
		return nil, fmt.Errorf("DEEPGRAM_API_KEY is required for the deepgram provider")
	}

	listenClient.InitWithDefault()
	rest := listenClient.NewREST(cfg.DeepgramAPIKey, &interfaces.ClientOptions{})

	return &DeepgramClient{
		client: api.New(rest),
		options: &interfaces.PreRecordedTranscriptionOptions{
			Model:       cfg.DeepgramModel,
			Language:    cfg.DeepgramLanguage,
			Punctuate:   true,
			SmartFormat: true,
			Diarize:     true,
		},
		guard:  newGuard("deepgram", cfg),
		logger: observability.Component("stt").With().Str("provider", "deepgram").Logger(),
	}, nil
}

// Name returns the provider display name
func (d *DeepgramClient) Name() string {
	return "Deepgram"
}

// Healthy reports whether the Deepgram circuit is closed
func (d *DeepgramClient) Healthy(ctx context.Context) (bool, error) {
	return d.guard.Breaker.Healthy(ctx)
}

// Transcribe uploads the file and returns its diarized word timings
func (d *DeepgramClient) Transcribe(ctx context.Context, audioPath string) ([]transcript.WordTiming, error) {
	if _, err := os.Stat(audioPath); err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	var res *restinterfaces.PreRecordedResponse
	err := d.guard.Do(ctx, func(ctx context.Context) error {
		var err error
		res, err = d.client.FromFile(ctx, audioPath, d.options)
		if err != nil {
			d.logger.Warn().Err(err).Str("path", audioPath).Msg("Deepgram request failed")
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("deepgram transcription failed: %w", err)
	}

	words := wordsFromDeepgram(res)
	if len(words) == 0 {
		return nil, ErrNoWords
	}
	d.logger.Debug().Int("words", len(words)).Msg("Deepgram transcription complete")
	return words, nil
}

// wordsFromDeepgram reads the first alternative of the first channel,
// preferring the smart-formatted token.
func wordsFromDeepgram(res *restinterfaces.PreRecordedResponse) []transcript.WordTiming {
	if res == nil || res.Results == nil || len(res.Results.Channels) == 0 {
		return nil
	}
	channel := res.Results.Channels[0]
	if len(channel.Alternatives) == 0 {
		return nil
	}

	src := channel.Alternatives[0].Words
	words := make([]transcript.WordTiming, 0, len(src))
	for _, w := range src {
		token := strings.TrimSpace(w.PunctuatedWord)
		if token == "" {
			token = strings.TrimSpace(w.Word)
		}
		if token == "" {
			continue
		}
		timing := transcript.WordTiming{Word: token, Start: w.Start, End: w.End}
		if w.Speaker != nil {
			timing.Speaker = transcript.Speaker(*w.Speaker)
		}
		words = append(words, timing)
	}
	return words
}
