package stt

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	restinterfaces "github.com/deepgram/deepgram-go-sdk/v3/pkg/api/listen/v1/rest/interfaces"
	openai "github.com/sashabaranov/go-openai"

	"github.com/lexiqai/echolisten/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		ASRProvider:                "deepgram",
		DeepgramModel:              "nova-3",
		DeepgramLanguage:           "en",
		WhisperModel:               "whisper-1",
		CircuitBreakerMaxFailures:  5,
		CircuitBreakerResetTimeout: 30,
		RetryMaxAttempts:           1,
		RetryInitialBackoff:        10,
	}
}

func TestNew_RequiresKey(t *testing.T) {
	for _, provider := range []string{"deepgram", "whisper"} {
		t.Run(provider, func(t *testing.T) {
			cfg := testConfig()
			cfg.ASRProvider = provider
			if _, err := New(cfg); err == nil {
				t.Errorf("Expected error without API key for %s", provider)
			}
		})
	}

	cfg := testConfig()
	cfg.ASRProvider = "vosk"
	if _, err := New(cfg); err == nil {
		t.Error("Expected error for unknown provider")
	}
}

func TestNew_Whisper(t *testing.T) {
	cfg := testConfig()
	cfg.ASRProvider = "whisper"
	cfg.OpenAIAPIKey = "sk-test"

	tr, err := New(cfg)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if tr.Name() != "Whisper" {
		t.Errorf("Expected name 'Whisper', got '%s'", tr.Name())
	}
	if healthy, _ := tr.Healthy(context.Background()); !healthy {
		t.Error("Expected fresh client to be healthy")
	}

	_, err = tr.Transcribe(context.Background(), filepath.Join(t.TempDir(), "missing.mp3"))
	if err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestWordsFromDeepgram(t *testing.T) {
	speaker := 1
	res := &restinterfaces.PreRecordedResponse{
		Results: &restinterfaces.Result{
			Channels: []restinterfaces.Channel{{
				Alternatives: []restinterfaces.Alternative{{
					Words: []restinterfaces.Word{
						{Word: "hello", PunctuatedWord: "Hello,", Start: 0.1, End: 0.5, Speaker: &speaker},
						{Word: "world", Start: 0.5, End: 0.9},
						{Word: " ", Start: 0.9, End: 1.0},
					},
				}},
			}},
		},
	}

	words := wordsFromDeepgram(res)
	if len(words) != 2 {
		t.Fatalf("Expected 2 words, got %d", len(words))
	}
	if words[0].Word != "Hello," {
		t.Errorf("Expected punctuated token 'Hello,', got '%s'", words[0].Word)
	}
	if words[0].SpeakerIndex() != 1 {
		t.Errorf("Expected speaker 1, got %d", words[0].SpeakerIndex())
	}
	if words[1].Word != "world" || words[1].Speaker != nil {
		t.Errorf("Expected plain token without speaker, got %+v", words[1])
	}

	if got := wordsFromDeepgram(&restinterfaces.PreRecordedResponse{}); len(got) != 0 {
		t.Errorf("Expected no words for empty response, got %d", len(got))
	}
}

func TestWordsFromWhisper(t *testing.T) {
	var resp openai.AudioResponse
	body := `{"text":"hi there","words":[{"word":" hi","start":0,"end":0.4},{"word":"there","start":0.4,"end":0.3}]}`
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	words := wordsFromWhisper(resp)
	if len(words) != 2 {
		t.Fatalf("Expected 2 words, got %d", len(words))
	}
	if words[0].Word != "hi" {
		t.Errorf("Expected trimmed token 'hi', got '%s'", words[0].Word)
	}
	if words[1].End < words[1].Start {
		t.Errorf("Expected end clamped to start, got %+v", words[1])
	}
}
