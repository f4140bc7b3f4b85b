package channel

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"ai-synthesis-be/pkg/ai/synthesis"
	"ai-synthesis-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	reply   string
	err     error
	history []llm.Message
}

func (f *fakeProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	f.history = history
	return f.reply, f.err
}

func (f *fakeProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}

func TestLLMBackendGenerate(t *testing.T) {
	provider := &fakeProvider{reply: "  Take a slow breath. You are not alone in this.  "}
	backend := NewLLMBackend(synthesis.ChannelEmotional, provider, "Answer warmly.")

	gen, err := backend.Generate(context.Background(), synthesis.Request{Text: "I feel lost"})

	require.NoError(t, err)
	assert.Equal(t, "Take a slow breath. You are not alone in this.", gen.Content)
	require.NotNil(t, gen.Quality)
	assert.GreaterOrEqual(t, *gen.Quality, 0.0)
	assert.LessOrEqual(t, *gen.Quality, 1.0)

	require.Len(t, provider.history, 2)
	assert.Equal(t, llm.Message{Role: "system", Content: "Answer warmly."}, provider.history[0])
	assert.Equal(t, llm.Message{Role: "user", Content: "I feel lost"}, provider.history[1])
}

func TestLLMBackendWithoutSystemPrompt(t *testing.T) {
	provider := &fakeProvider{reply: "ok"}
	backend := NewLLMBackend(synthesis.ChannelAnalytical, provider, "")

	_, err := backend.Generate(context.Background(), synthesis.Request{Text: "compare these"})

	require.NoError(t, err)
	require.Len(t, provider.history, 1)
	assert.Equal(t, "user", provider.history[0].Role)
}

func TestLLMBackendErrorKinds(t *testing.T) {
	tests := []struct {
		name     string
		reply    string
		err      error
		wantKind synthesis.ErrorKind
	}{
		{
			name:     "rate limited",
			err:      &llm.StatusError{Provider: "huggingface", StatusCode: 429},
			wantKind: synthesis.KindUnavailable,
		},
		{
			name:     "server error",
			err:      fmt.Errorf("wrapped: %w", &llm.StatusError{Provider: "ollama", StatusCode: 503}),
			wantKind: synthesis.KindUnavailable,
		},
		{
			name:     "bad request",
			err:      &llm.StatusError{Provider: "ollama", StatusCode: 400},
			wantKind: synthesis.KindInvalidResponse,
		},
		{
			name:     "empty provider response",
			err:      llm.ErrEmptyResponse,
			wantKind: synthesis.KindEmptyContent,
		},
		{
			name:     "blank reply",
			reply:    "   \n ",
			wantKind: synthesis.KindEmptyContent,
		},
		{
			name:     "deadline",
			err:      fmt.Errorf("request failed: %w", context.DeadlineExceeded),
			wantKind: synthesis.KindTimeout,
		},
		{
			name:     "cancelled",
			err:      context.Canceled,
			wantKind: synthesis.KindCancelled,
		},
		{
			name:     "connection refused",
			err:      errors.New("dial tcp: connection refused"),
			wantKind: synthesis.KindUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := NewLLMBackend(synthesis.ChannelTranscendent, &fakeProvider{reply: tt.reply, err: tt.err}, "")

			_, err := backend.Generate(context.Background(), synthesis.Request{Text: "why"})

			var be *synthesis.BackendError
			require.True(t, errors.As(err, &be), "got %v", err)
			assert.Equal(t, tt.wantKind, be.Kind)
		})
	}
}
