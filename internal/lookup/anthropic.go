package lookup

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/lexiqai/echolisten/internal/resilience"
	"github.com/lexiqai/echolisten/internal/vocab"
)

// Anthropic defines words with a Claude model.
type Anthropic struct {
	client *anthropic.Client
	model  string
	guard  *resilience.Guard
}

// NewAnthropic creates an Anthropic definer.
func NewAnthropic(apiKey, model string, guard *resilience.Guard) (*Anthropic, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY is required for the anthropic lookup provider")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	if model == "" {
		model = "claude-3-5-haiku-latest"
	}

	return &Anthropic{
		client: &client,
		model:  model,
		guard:  guard,
	}, nil
}

// Name returns the provider name.
func (a *Anthropic) Name() string {
	return "anthropic"
}

// Define asks the model for a definition in JSON.
func (a *Anthropic) Define(ctx context.Context, word, sentence string) (vocab.WordDefinition, error) {
	var content string
	err := a.guard.Do(ctx, func(ctx context.Context) error {
		message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     anthropic.Model(a.model),
			MaxTokens: 400,
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(buildPrompt(word, sentence))),
			},
		})
		if err != nil {
			return fmt.Errorf("lookup API error: %w", err)
		}

		content = ""
		for _, block := range message.Content {
			if block.Type == "text" {
				content += block.Text
			}
		}
		if content == "" {
			return fmt.Errorf("no response from API")
		}
		return nil
	})
	if err != nil {
		return vocab.WordDefinition{}, err
	}
	return parseDefinition(word, content)
}
