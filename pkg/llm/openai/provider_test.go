package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"ai-synthesis-be/pkg/llm"

	"github.com/openai/openai-go/v3/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Model               string  `json:"model"`
	Temperature         float64 `json:"temperature"`
	MaxCompletionTokens *int    `json:"max_completion_tokens"`
	Messages            []struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	} `json:"messages"`
}

func newTestProvider(t *testing.T, maxTokens int, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p, err := NewOpenAIProvider("test-key", srv.URL, "gpt-test", maxTokens, option.WithMaxRetries(0))
	require.NoError(t, err)
	return p
}

func writeCompletion(w http.ResponseWriter, choices string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-test","choices":` + choices + `}`))
}

func TestOpenAIChat(t *testing.T) {
	var got capturedRequest
	p := newTestProvider(t, 128, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeCompletion(w, `[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Measured answer."}}]`)
	})

	reply, err := p.Chat(context.Background(), []llm.Message{
		{Role: "system", Content: "Reason step by step."},
		{Role: "model", Content: "earlier"},
		{Role: "user", Content: "hi"},
	}, llm.WithTemperature(0.1))

	require.NoError(t, err)
	assert.Equal(t, "Measured answer.", reply)
	assert.Equal(t, "gpt-test", got.Model)
	assert.Equal(t, 0.1, got.Temperature)
	require.NotNil(t, got.MaxCompletionTokens)
	assert.Equal(t, 128, *got.MaxCompletionTokens)

	require.Len(t, got.Messages, 3)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Contains(t, string(got.Messages[0].Content), "Reason step by step.")
	assert.Equal(t, "assistant", got.Messages[1].Role)
	assert.Equal(t, "user", got.Messages[2].Role)
}

func TestOpenAIChatOmitsZeroMaxTokens(t *testing.T) {
	var raw map[string]json.RawMessage
	p := newTestProvider(t, 0, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		writeCompletion(w, `[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"ok"}}]`)
	})

	_, err := p.Generate(context.Background(), "hi")

	require.NoError(t, err)
	assert.NotContains(t, raw, "max_completion_tokens")
}

func TestOpenAIChatErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		check   func(t *testing.T, err error)
	}{
		{
			name: "no choices",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeCompletion(w, `[]`)
			},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, llm.ErrEmptyResponse)
			},
		},
		{
			name: "blank content",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeCompletion(w, `[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"  "}}]`)
			},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, llm.ErrEmptyResponse)
			},
		},
		{
			name: "rate limited",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit"}}`))
			},
			check: func(t *testing.T, err error) {
				require.Error(t, err)
				assert.NotErrorIs(t, err, llm.ErrEmptyResponse)
				assert.ErrorContains(t, err, "openai request failed")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			p := newTestProvider(t, 64, func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				tt.handler(w, r)
			})

			_, err := p.Generate(context.Background(), "hi")

			tt.check(t, err)
			assert.Equal(t, int32(1), calls.Load())
		})
	}
}

func TestNewOpenAIProviderNeedsKeyOrBaseURL(t *testing.T) {
	_, err := NewOpenAIProvider("", "", "", 0)
	assert.Error(t, err)

	p, err := NewOpenAIProvider("", "http://localhost:8000/v1", "", 0)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", p.model)
}
