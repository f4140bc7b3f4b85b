package openai

import (
	"context"
	"fmt"
	"strings"

	"ai-synthesis-be/pkg/llm"

	sdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIProvider covers OpenAI and any OpenAI-compatible endpoint (vLLM, LM Studio, ...)
type OpenAIProvider struct {
	client    sdk.Client
	model     string
	maxTokens int
}

var _ llm.LLMProvider = &OpenAIProvider{}

// NewOpenAIProvider builds the client; extra options are applied after the key and base URL
func NewOpenAIProvider(apiKey, baseURL, model string, maxTokens int, extra ...option.RequestOption) (*OpenAIProvider, error) {
	if apiKey == "" && baseURL == "" {
		return nil, fmt.Errorf("openai provider requires OPENAI_API_KEY or a custom base URL")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}

	var opts []option.RequestOption
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	opts = append(opts, extra...)

	return &OpenAIProvider{
		client:    sdk.NewClient(opts...),
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

func (p *OpenAIProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	opts := llm.Apply(llm.Options{
		Temperature: 0.7,
		MaxTokens:   p.maxTokens,
		Model:       p.model,
	}, options...)

	messages := make([]sdk.ChatCompletionMessageParamUnion, 0, len(history))
	for _, msg := range history {
		switch msg.Role {
		case "system":
			messages = append(messages, sdk.SystemMessage(msg.Content))
		case "assistant", "model":
			messages = append(messages, sdk.AssistantMessage(msg.Content))
		default:
			messages = append(messages, sdk.UserMessage(msg.Content))
		}
	}

	params := sdk.ChatCompletionNewParams{
		Model:       sdk.ChatModel(opts.Model),
		Messages:    messages,
		Temperature: sdk.Float(opts.Temperature),
	}
	if opts.MaxTokens > 0 {
		params.MaxCompletionTokens = sdk.Int(int64(opts.MaxTokens))
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", llm.ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *OpenAIProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}
