package generation

import (
	"fmt"
	"strings"

	"github.com/kayz/promptblocks/internal/config"
)

// NewProvider builds the provider selected by cfg. The API key is resolved
// from cfg or the environment; a missing key still yields a provider whose
// requests fail with MissingCredential.
func NewProvider(cfg config.GenerationConfig) (Provider, error) {
	key := cfg.ResolveAPIKey()
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "gemini", "google":
		return NewGeminiProvider(GeminiConfig{
			Endpoint: cfg.Endpoint,
			Model:    cfg.Model,
			APIKey:   key,
		}), nil
	case "openai", "open-ai", "open_ai":
		return NewOpenAIProvider(OpenAIConfig{
			APIKey:  key,
			BaseURL: cfg.Endpoint,
			Model:   cfg.Model,
		}), nil
	case "anthropic", "claude":
		return NewAnthropicProvider(AnthropicConfig{
			APIKey:  key,
			BaseURL: cfg.Endpoint,
			Model:   cfg.Model,
		}), nil
	default:
		return nil, fmt.Errorf("unknown generation provider: %q", cfg.Provider)
	}
}
