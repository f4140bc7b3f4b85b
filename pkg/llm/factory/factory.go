package factory

import (
	"ai-synthesis-be/pkg/llm"
	"ai-synthesis-be/pkg/llm/anthropic"
	"ai-synthesis-be/pkg/llm/huggingface"
	"ai-synthesis-be/pkg/llm/ollama"
	"ai-synthesis-be/pkg/llm/openai"
	"fmt"
)

// ProviderConfig is everything needed to build one provider instance
type ProviderConfig struct {
	Provider  string
	Model     string
	BaseURL   string
	APIKey    string
	MaxTokens int
}

func NewLLMProvider(cfg ProviderConfig) (llm.LLMProvider, error) {
	switch cfg.Provider {
	case "ollama":
		return ollama.NewOllamaProvider(cfg.BaseURL, cfg.Model, cfg.MaxTokens), nil
	case "huggingface":
		return huggingface.NewHuggingFaceProvider(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.MaxTokens), nil
	case "anthropic":
		return anthropic.NewAnthropicProvider(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.MaxTokens)
	case "openai":
		return openai.NewOpenAIProvider(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.MaxTokens)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
