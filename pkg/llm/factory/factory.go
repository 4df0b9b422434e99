package factory

import (
	"fmt"
	"legal-chatbot-be/pkg/llm"
	"legal-chatbot-be/pkg/llm/ollama"
	"legal-chatbot-be/pkg/llm/openai"
	"time"
)

type Config struct {
	Provider   string // "openai" | "huggingface" | "ollama"
	Model      string
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
}

func NewLLMProvider(cfg Config) (llm.LLMProvider, error) {
	var p llm.LLMProvider
	switch cfg.Provider {
	case "openai", "":
		p = openai.NewProvider(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Timeout)
	case "huggingface":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = openai.HuggingFaceRouterURL
		}
		p = openai.NewProvider(cfg.APIKey, baseURL, cfg.Model, cfg.Timeout)
	case "ollama":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		p = ollama.NewOllamaProvider(baseURL, cfg.Model, cfg.Timeout)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
	return llm.NewRetryingProvider(p, cfg.MaxRetries, 0), nil
}
