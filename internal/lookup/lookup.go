package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lexiqai/echolisten/internal/config"
	"github.com/lexiqai/echolisten/internal/resilience"
	"github.com/lexiqai/echolisten/internal/vocab"
)

// Definer looks up a word, optionally in the sentence it was heard in.
type Definer interface {
	Define(ctx context.Context, word, sentence string) (vocab.WordDefinition, error)
	Name() string
}

// New creates the definer selected by LOOKUP_PROVIDER. It returns nil, nil
// when lookups are disabled.
func New(cfg *config.Config) (Definer, error) {
	guard := resilience.NewGuard(
		"lookup-"+cfg.LookupProvider,
		cfg.CircuitBreakerMaxFailures,
		cfg.CircuitBreakerTimeout(),
		cfg.RetryMaxAttempts,
		time.Duration(cfg.RetryInitialBackoff)*time.Millisecond,
	)

	switch cfg.LookupProvider {
	case "openai":
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.LookupModel, guard)
	case "anthropic":
		return NewAnthropic(cfg.AnthropicAPIKey, cfg.LookupModel, guard)
	case "none", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown lookup provider: %s", cfg.LookupProvider)
	}
}

const definitionPrompt = `You are a dictionary for language learners.
Define the English word %q as it is used in this sentence: %q.
Reply with only a JSON object with these string fields:
"word", "phonetic" (IPA), "definition" (one short English sentence),
"translation" (Simplified Chinese), "example" (a new example sentence).`

func buildPrompt(word, sentence string) string {
	if strings.TrimSpace(sentence) == "" {
		sentence = word
	}
	return fmt.Sprintf(definitionPrompt, word, sentence)
}

// parseDefinition extracts the JSON object from a model reply, tolerating
// code fences and surrounding prose.
func parseDefinition(word, reply string) (vocab.WordDefinition, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return vocab.WordDefinition{}, fmt.Errorf("no JSON object in reply")
	}

	var def vocab.WordDefinition
	if err := json.Unmarshal([]byte(reply[start:end+1]), &def); err != nil {
		return vocab.WordDefinition{}, fmt.Errorf("decode definition: %w", err)
	}
	if def.Definition == "" && def.Translation == "" {
		return vocab.WordDefinition{}, fmt.Errorf("empty definition for %q", word)
	}
	if def.Word == "" {
		def.Word = word
	}
	return def, nil
}
