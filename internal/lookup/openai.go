package lookup

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/lexiqai/echolisten/internal/resilience"
	"github.com/lexiqai/echolisten/internal/vocab"
)

// OpenAI defines words with an OpenAI chat model.
type OpenAI struct {
	client openai.Client
	model  openai.ChatModel
	guard  *resilience.Guard
}

// NewOpenAI creates an OpenAI definer.
func NewOpenAI(apiKey, baseURL, model string, guard *resilience.Guard) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required for the openai lookup provider")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	m := openai.ChatModel(model)
	if model == "" {
		m = openai.ChatModelGPT4oMini
	}

	return &OpenAI{
		client: openai.NewClient(opts...),
		model:  m,
		guard:  guard,
	}, nil
}

// Name returns the provider name.
func (o *OpenAI) Name() string {
	return "openai"
}

// Define asks the model for a definition in JSON.
func (o *OpenAI) Define(ctx context.Context, word, sentence string) (vocab.WordDefinition, error) {
	var content string
	err := o.guard.Do(ctx, func(ctx context.Context) error {
		resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model: o.model,
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(buildPrompt(word, sentence)),
			},
			MaxTokens:   openai.Int(400),
			Temperature: openai.Float(0.2),
		})
		if err != nil {
			return fmt.Errorf("lookup API error: %w", err)
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("no response from API")
		}
		content = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return vocab.WordDefinition{}, err
	}
	return parseDefinition(word, content)
}
