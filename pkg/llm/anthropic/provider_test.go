package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"ai-synthesis-be/pkg/llm"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	System      []struct {
		Text string `json:"text"`
	} `json:"system"`
	Messages []struct {
		Role    string `json:"role"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"messages"`
}

func newTestProvider(t *testing.T, handler http.HandlerFunc) *AnthropicProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p, err := NewAnthropicProvider("test-key", srv.URL, "claude-test", 256, option.WithMaxRetries(0))
	require.NoError(t, err)
	return p
}

func writeMessage(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","model":"claude-test",` +
		`"content":` + content + `,"stop_reason":"end_turn","usage":{"input_tokens":3,"output_tokens":5}}`))
}

func TestAnthropicChat(t *testing.T) {
	var got capturedRequest
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeMessage(w, `[{"type":"text","text":"Hello "},{"type":"tool_use","id":"t1","name":"noop","input":{}},{"type":"text","text":"there."}]`)
	})

	reply, err := p.Chat(context.Background(), []llm.Message{
		{Role: "system", Content: "Speak with warmth."},
		{Role: "model", Content: "earlier"},
		{Role: "user", Content: "hi"},
	}, llm.WithTemperature(0.3))

	require.NoError(t, err)
	assert.Equal(t, "Hello there.", reply)
	assert.Equal(t, "claude-test", got.Model)
	assert.Equal(t, 256, got.MaxTokens)
	assert.Equal(t, 0.3, got.Temperature)

	require.Len(t, got.System, 1)
	assert.Equal(t, "Speak with warmth.", got.System[0].Text)

	// the system prompt travels out of band, never as a turn
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "assistant", got.Messages[0].Role)
	assert.Equal(t, "user", got.Messages[1].Role)
	require.Len(t, got.Messages[1].Content, 1)
	assert.Equal(t, "hi", got.Messages[1].Content[0].Text)
}

func TestAnthropicChatWithoutSystemPrompt(t *testing.T) {
	var raw map[string]json.RawMessage
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		writeMessage(w, `[{"type":"text","text":"ok"}]`)
	})

	_, err := p.Generate(context.Background(), "hi")

	require.NoError(t, err)
	assert.NotContains(t, raw, "system")
}

func TestAnthropicChatErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		check   func(t *testing.T, err error)
	}{
		{
			name: "no text blocks",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeMessage(w, `[{"type":"tool_use","id":"t1","name":"noop","input":{}}]`)
			},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, llm.ErrEmptyResponse)
			},
		},
		{
			name: "blank text",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeMessage(w, `[{"type":"text","text":"   "}]`)
			},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, llm.ErrEmptyResponse)
			},
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"type":"error","error":{"type":"api_error","message":"boom"}}`))
			},
			check: func(t *testing.T, err error) {
				require.Error(t, err)
				assert.NotErrorIs(t, err, llm.ErrEmptyResponse)
				assert.ErrorContains(t, err, "anthropic request failed")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				tt.handler(w, r)
			})

			_, err := p.Generate(context.Background(), "hi")

			tt.check(t, err)
			assert.Equal(t, int32(1), calls.Load())
		})
	}
}

func TestNewAnthropicProviderRequiresKey(t *testing.T) {
	_, err := NewAnthropicProvider("", "", "", 0)
	assert.Error(t, err)
}
