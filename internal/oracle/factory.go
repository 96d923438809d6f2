package oracle

import (
	"context"
	"fmt"
	"strings"

	"github.com/lorehaven/loregraph/internal/config"
)

// NewClient builds a provider from config and wraps it with the timeout and
// retry policy.
func NewClient(ctx context.Context, cfg config.OracleConfig) (Client, error) {
	provider := strings.ToLower(cfg.Provider)

	var inner Client
	switch provider {
	case "openai":
		inner = NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.BaseURL)

	case "claude":
		inner = NewClaudeClient(cfg.APIKey, cfg.Model, cfg.BaseURL)

	case "gemini":
		c, err := NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, err
		}
		inner = c

	case "ollama":
		// Ollama speaks the OpenAI-compatible API and ignores the key, but
		// the client requires one.
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		if !strings.HasSuffix(baseURL, "/v1") {
			baseURL = strings.TrimRight(baseURL, "/") + "/v1"
		}
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = "ollama"
		}
		inner = NewOpenAIClient(apiKey, cfg.Model, baseURL)

	default:
		return nil, fmt.Errorf("unsupported oracle provider: %s", cfg.Provider)
	}

	return WithRetry(inner, cfg.MaxAttempts, cfg.BaseDelay(), cfg.Timeout()), nil
}
