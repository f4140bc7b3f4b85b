package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"ai-synthesis-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaChat(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(chatResponse{
			Model:   got.Model,
			Message: chatMessage{Role: "assistant", Content: "Hello there."},
			Done:    true,
		})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL+"/", "llama3", 300)
	reply, err := p.Chat(context.Background(), []llm.Message{
		{Role: "system", Content: "be brief"},
		{Role: "model", Content: "earlier"},
		{Role: "user", Content: "hi"},
	}, llm.WithTemperature(0.2))

	require.NoError(t, err)
	assert.Equal(t, "Hello there.", reply)
	assert.Equal(t, "llama3", got.Model)
	assert.False(t, got.Stream)
	assert.Equal(t, defaultKeepAlive, got.KeepAlive)
	require.Len(t, got.Messages, 3)
	assert.Equal(t, "assistant", got.Messages[1].Role)
	require.NotNil(t, got.Options)
	assert.Equal(t, 0.2, got.Options.Temperature)
	assert.Equal(t, 300, got.Options.NumPredict)
}

func TestOllamaChatErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "non 200 status",
			status: http.StatusServiceUnavailable,
			body:   `{"error":"loading model"}`,
			check: func(t *testing.T, err error) {
				var statusErr *llm.StatusError
				require.True(t, errors.As(err, &statusErr))
				assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
				assert.Equal(t, "ollama", statusErr.Provider)
			},
		},
		{
			name:   "empty message",
			status: http.StatusOK,
			body:   `{"message":{"role":"assistant","content":"  "},"done":true}`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, llm.ErrEmptyResponse)
			},
		},
		{
			name:   "error field",
			status: http.StatusOK,
			body:   `{"error":"model not found"}`,
			check: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "model not found")
			},
		},
		{
			name:   "malformed json",
			status: http.StatusOK,
			body:   `{not json`,
			check: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "decode ollama response")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewOllamaProvider(srv.URL, "llama3", 0).Generate(context.Background(), "hi")

			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestOllamaChatHonoursContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewOllamaProvider(srv.URL, "llama3", 0).Generate(ctx, "hi")

	assert.ErrorIs(t, err, context.Canceled)
}
