package ai

import (
	"fmt"
)

// Config holds AI provider configuration
type Config struct {
	Provider ProviderType // "gemini" or "static"

	// Gemini config
	GeminiAPIKey string
}

// NewOutreachAssistant creates an OutreachAssistant based on the config.
// This is the factory function - switch AI provider by changing
// config.Provider.
func NewOutreachAssistant(cfg Config) (OutreachAssistant, error) {
	switch cfg.Provider {
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for Gemini provider")
		}
		return NewGeminiService(cfg.GeminiAPIKey), nil

	case ProviderStatic:
		return NewStaticAssistant(), nil

	default:
		// Default to Gemini if API key is available, otherwise static templates
		if cfg.GeminiAPIKey != "" {
			return NewGeminiService(cfg.GeminiAPIKey), nil
		}
		return NewStaticAssistant(), nil
	}
}
