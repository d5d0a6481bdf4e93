package llm

import (
	"context"
	"strings"

	"github.com/ppiankov/sportcheck/internal/config"
	"github.com/rotisserie/eris"
)

// NewProvider creates a new LLM provider based on configuration
func NewProvider(ctx context.Context, cfg Config) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "gemini", "google", "":
		return NewGeminiProvider(ctx, cfg)

	case "openai":
		return NewOpenAIProvider(cfg)

	case "anthropic", "claude":
		return NewAnthropicProvider(cfg)

	case "ollama":
		return NewOllamaProvider(cfg)

	default:
		return nil, eris.Errorf("unknown LLM provider: %s (supported: gemini, openai, anthropic, ollama)", cfg.Provider)
	}
}

// ConfigFrom converts application settings to a provider Config.
// Proxy settings are shared with the page fetcher.
func ConfigFrom(llmCfg config.LLMConfig, fetchCfg config.FetchConfig) Config {
	return Config{
		Provider:    llmCfg.Provider,
		Model:       llmCfg.Model,
		APIKey:      llmCfg.APIKey,
		BaseURL:     llmCfg.BaseURL,
		Timeout:     llmCfg.TimeoutSecs,
		MaxTokens:   llmCfg.MaxTokens,
		Temperature: llmCfg.Temperature,
		HTTPProxy:   fetchCfg.HTTPProxy,
		HTTPSProxy:  fetchCfg.HTTPSProxy,
		NoProxy:     fetchCfg.NoProxy,
	}
}
