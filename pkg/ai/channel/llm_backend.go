package channel

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"ai-synthesis-be/pkg/ai/synthesis"
	"ai-synthesis-be/pkg/llm"
)

// LLMBackend answers one synthesis channel by prompting an LLM with the channel persona
type LLMBackend struct {
	channel      synthesis.Channel
	provider     llm.LLMProvider
	systemPrompt string
	options      []llm.Option
}

var _ synthesis.Backend = &LLMBackend{}

func NewLLMBackend(ch synthesis.Channel, provider llm.LLMProvider, systemPrompt string, options ...llm.Option) *LLMBackend {
	return &LLMBackend{
		channel:      ch,
		provider:     provider,
		systemPrompt: systemPrompt,
		options:      options,
	}
}

// Generate never retries; failures are returned as *synthesis.BackendError
func (b *LLMBackend) Generate(ctx context.Context, req synthesis.Request) (synthesis.Generation, error) {
	var messages []llm.Message
	if b.systemPrompt != "" {
		messages = append(messages, llm.Message{Role: "system", Content: b.systemPrompt})
	}
	messages = append(messages, llm.Message{Role: "user", Content: req.Text})

	reply, err := b.provider.Chat(ctx, messages, b.options...)
	if err != nil {
		return synthesis.Generation{}, b.classify(err)
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		return synthesis.Generation{}, synthesis.NewBackendError(synthesis.KindEmptyContent,
			fmt.Sprintf("%s channel produced no text", b.channel), nil)
	}

	return synthesis.Generation{
		Content: reply,
		Quality: synthesis.QualityScore(EstimateQuality(reply)),
	}, nil
}

func (b *LLMBackend) classify(err error) *synthesis.BackendError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return synthesis.AsBackendError(err)
	}

	if errors.Is(err, llm.ErrEmptyResponse) {
		return synthesis.NewBackendError(synthesis.KindEmptyContent,
			fmt.Sprintf("%s channel produced no text", b.channel), err)
	}

	var statusErr *llm.StatusError
	if errors.As(err, &statusErr) {
		// 429 and 5xx are transient from the provider side; other 4xx mean our request was rejected
		if statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= 500 {
			return synthesis.NewBackendError(synthesis.KindUnavailable,
				fmt.Sprintf("%s provider unavailable", statusErr.Provider), err)
		}
		return synthesis.NewBackendError(synthesis.KindInvalidResponse,
			fmt.Sprintf("%s provider rejected request", statusErr.Provider), err)
	}

	return synthesis.NewBackendError(synthesis.KindUnavailable,
		fmt.Sprintf("%s channel call failed", b.channel), err)
}
