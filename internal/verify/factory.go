package verify

import (
	"fmt"
	"strings"

	"github.com/medwatch/claimscan/internal/model"
)

// NewProvider creates a verifier provider based on configuration
func NewProvider(config Config) (Provider, error) {
	provider := strings.ToLower(config.Provider)

	switch provider {
	case "openai":
		return NewOpenAIProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "":
		// No provider configured - escalation disabled
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown verifier provider: %s (supported: openai, ollama)", config.Provider)
	}
}

// ConfigFromModel converts model.AIConfig to verify.Config
func ConfigFromModel(ai model.AIConfig) Config {
	return Config{
		Provider:  ai.Provider,
		Model:     ai.Model,
		APIKey:    ai.APIKey,
		BaseURL:   ai.BaseURL,
		Timeout:   int(ai.Timeout.Seconds()),
		MaxTokens: ai.MaxTokens,
	}
}
