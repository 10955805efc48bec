package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lexiqai/echolisten/internal/config"
	"github.com/lexiqai/echolisten/internal/media"
	"github.com/lexiqai/echolisten/internal/observability"
	"github.com/lexiqai/echolisten/internal/resilience"
	"github.com/lexiqai/echolisten/internal/vocab"
)

const (
	defaultBaseURL   = "https://api.cartesia.ai"
	cartesiaVersion  = "2024-06-10"
	sampleRate       = 24000
	maxCachedClips   = 256
	maxResponseBytes = 8 << 20
)

// CartesiaClient pronounces words using Cartesia's TTS API. Clips are kept in
// memory so repeated taps on the same word do not hit the API.
type CartesiaClient struct {
	apiKey     string
	baseURL    string
	voiceID    string
	modelID    string
	httpClient *http.Client
	guard      *resilience.Guard
	cleanup    media.ClipConfig
	logger     zerolog.Logger

	mu    sync.RWMutex
	clips map[string][]byte
	order []string
}

// New creates the Cartesia pronouncer. It returns nil, nil when
// CARTESIA_API_KEY is unset.
func New(cfg *config.Config) (*CartesiaClient, error) {
	if cfg.CartesiaAPIKey == "" {
		return nil, nil
	}
	guard := resilience.NewGuard(
		"cartesia",
		cfg.CircuitBreakerMaxFailures,
		cfg.CircuitBreakerTimeout(),
		cfg.RetryMaxAttempts,
		time.Duration(cfg.RetryInitialBackoff)*time.Millisecond,
	)
	return NewCartesiaClient(cfg.CartesiaAPIKey, defaultBaseURL, cfg.CartesiaVoiceID, cfg.CartesiaModelID, guard), nil
}

// NewCartesiaClient creates a client against baseURL.
func NewCartesiaClient(apiKey, baseURL, voiceID, modelID string, guard *resilience.Guard) *CartesiaClient {
	return &CartesiaClient{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		voiceID:    voiceID,
		modelID:    modelID,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		guard:      guard,
		logger:     observability.Component("tts"),
		cleanup:    media.DefaultClipConfig(),
		clips:      make(map[string][]byte),
	}
}

// Pronounce returns a WAV clip of the word.
func (c *CartesiaClient) Pronounce(ctx context.Context, word string) ([]byte, error) {
	key := vocab.Key(word)
	if key == "" {
		return nil, vocab.ErrEmptyWord
	}
	if clip, ok := c.cached(key); ok {
		return clip, nil
	}

	var pcm []byte
	err := c.guard.Do(ctx, func(ctx context.Context) error {
		var err error
		pcm, err = c.synthesize(ctx, key)
		return err
	})
	if err != nil {
		observability.RecordPronunciation(false)
		observability.RecordError("pronunciation", "tts")
		return nil, err
	}

	clip, err := media.EncodeWAV(media.CleanClip(pcm, sampleRate, c.cleanup), sampleRate)
	if err != nil {
		observability.RecordPronunciation(false)
		return nil, err
	}
	observability.RecordPronunciation(true)
	c.logger.Debug().Str("word", key).Int("bytes", len(clip)).Msg("Synthesized pronunciation")

	c.store(key, clip)
	return clip, nil
}

// Healthy reports whether the provider's circuit is closed.
func (c *CartesiaClient) Healthy(ctx context.Context) (bool, error) {
	return c.guard.Breaker.Healthy(ctx)
}

func (c *CartesiaClient) synthesize(ctx context.Context, text string) ([]byte, error) {
	reqBody := CartesiaRequest{
		ModelID:    c.modelID,
		Transcript: text,
		Voice:      Voice{Mode: "id", ID: c.voiceID},
		OutputFormat: OutputFormat{
			Container:  "raw",
			Encoding:   "pcm_s16le",
			SampleRate: sampleRate,
		},
		Language: "en",
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tts/bytes", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Cartesia-Version", cartesiaVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("cartesia API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return nil, resilience.NewRetryableError(err)
		}
		return nil, err
	}

	pcm, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}
	if len(pcm) == 0 {
		return nil, fmt.Errorf("cartesia returned empty audio data")
	}
	return pcm, nil
}

func (c *CartesiaClient) cached(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	clip, ok := c.clips[key]
	return clip, ok
}

// store adds a clip, evicting the oldest once the cache is full.
func (c *CartesiaClient) store(key string, clip []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.clips[key]; ok {
		return
	}
	if len(c.order) >= maxCachedClips {
		delete(c.clips, c.order[0])
		c.order = c.order[1:]
	}
	c.clips[key] = clip
	c.order = append(c.order, key)
}
