package backend

import (
	"fmt"
	"net/http"

	"github.com/sangneko/Chat-AI/config"
)

// NewCompleter builds the single provider selected by cfg.
func NewCompleter(cfg *config.Config) (Completer, error) {
	entry := cfg.Active()
	httpClient := &http.Client{Timeout: cfg.UpstreamTimeout}

	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAICompleter("OpenAI", entry.APIKey, entry.BaseURL, modelOrDefault(cfg.Model, DefaultOpenAIModel), httpClient), nil
	case config.ProviderOpenRouter:
		return NewOpenAICompleter("OpenRouter", entry.APIKey, entry.BaseURL, modelOrDefault(cfg.Model, DefaultOpenRouterModel), httpClient), nil
	case config.ProviderGemini:
		gemini, err := NewGeminiCompleter(entry.APIKey, entry.BaseURL, modelOrDefault(cfg.Model, DefaultGeminiModel), httpClient)
		if err != nil {
			return nil, err
		}
		return gemini, nil
	case config.ProviderProxy:
		return NewProxyCompleter(entry.BaseURL, modelOrDefault(cfg.Model, DefaultProxyModel), cfg.UpstreamTimeout), nil
	}
	return nil, fmt.Errorf("%w: %q", config.ErrUnknownProvider, cfg.Provider)
}

func modelOrDefault(model, fallback string) string {
	if model == "" {
		return fallback
	}
	return model
}
