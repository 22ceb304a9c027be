package suggest

import (
	"context"
	"fmt"
	"strings"
)

// Provider names accepted by NewGenerator.
const (
	ProviderStatic = "static"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// ProviderConfig selects and configures the upstream model.
type ProviderConfig struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
}

// NewGenerator builds the configured generator. An empty provider, "static" or "none"
// returns a nil generator so the service answers from the fallback.
func NewGenerator(ctx context.Context, cfg ProviderConfig) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderStatic, "none":
		return nil, nil
	case ProviderOpenAI:
		generator, err := NewOpenAI(cfg.APIKey, WithOpenAIModel(cfg.Model), WithOpenAIBaseURL(cfg.BaseURL))
		if err != nil {
			return nil, err
		}
		return generator, nil
	case ProviderGemini:
		generator, err := NewGemini(ctx, cfg.APIKey, WithGeminiModel(cfg.Model), WithGeminiBaseURL(cfg.BaseURL))
		if err != nil {
			return nil, err
		}
		return generator, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider)
	}
}
