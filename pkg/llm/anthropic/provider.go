package anthropic

import (
	"context"
	"fmt"
	"strings"

	"ai-synthesis-be/pkg/llm"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultMaxTokens = 1024

// AnthropicProvider talks to the Messages API through the official SDK
type AnthropicProvider struct {
	client    sdk.Client
	model     sdk.Model
	maxTokens int
}

var _ llm.LLMProvider = &AnthropicProvider{}

// NewAnthropicProvider builds the client. baseURL is optional; extra options are applied last.
func NewAnthropicProvider(apiKey, baseURL, model string, maxTokens int, extra ...option.RequestOption) (*AnthropicProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic provider requires ANTHROPIC_API_KEY")
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	m := sdk.Model(model)
	if model == "" {
		m = sdk.ModelClaudeSonnet4_20250514
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	opts = append(opts, extra...)

	return &AnthropicProvider{
		client:    sdk.NewClient(opts...),
		model:     m,
		maxTokens: maxTokens,
	}, nil
}

func (p *AnthropicProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	opts := llm.Apply(llm.Options{
		Temperature: 0.7,
		MaxTokens:   p.maxTokens,
		Model:       string(p.model),
	}, options...)

	system, turns := llm.SplitSystem(history)

	messages := make([]sdk.MessageParam, 0, len(turns))
	for _, msg := range turns {
		block := sdk.NewTextBlock(msg.Content)
		if msg.Role == "assistant" || msg.Role == "model" {
			messages = append(messages, sdk.NewAssistantMessage(block))
		} else {
			messages = append(messages, sdk.NewUserMessage(block))
		}
	}

	params := sdk.MessageNewParams{
		Model:       sdk.Model(opts.Model),
		MaxTokens:   int64(opts.MaxTokens),
		Messages:    messages,
		Temperature: sdk.Float(opts.Temperature),
	}
	if system != "" {
		params.System = []sdk.TextBlockParam{{Text: system}}
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if variant, ok := block.AsAny().(sdk.TextBlock); ok {
			sb.WriteString(variant.Text)
		}
	}

	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return "", llm.ErrEmptyResponse
	}
	return text, nil
}

func (p *AnthropicProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}
