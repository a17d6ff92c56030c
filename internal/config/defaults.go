package config

import (
	"github.com/jackzampolin/docvet/internal/providers"
	"github.com/jackzampolin/docvet/internal/validation"
)

// DefaultConfig returns the built-in configuration. Every field can be
// overridden by the config file or DOCVET_* environment variables.
func DefaultConfig() *Config {
	return &Config{
		Providers: map[string]providers.ProviderConfig{
			"mistral": {
				Type:       providers.MistralName,
				Model:      providers.MistralModel,
				APIKey:     "${MISTRAL_API_KEY}",
				RateLimit:  60,
				MaxRetries: 3,
				TimeoutSec: 120,
				Enabled:    true,
			},
			"openai": {
				Type:       providers.OpenAIName,
				APIKey:     "${OPENAI_API_KEY}",
				RateLimit:  50,
				MaxRetries: 3,
				TimeoutSec: 300,
				Enabled:    true,
			},
			"gemini": {
				Type:       providers.GeminiName,
				APIKey:     "${GEMINI_API_KEY}",
				RateLimit:  60,
				MaxRetries: 3,
				Enabled:    true,
			},
			"pdftext": {
				Type:    providers.PDFTextName,
				Enabled: true,
			},
		},
		Validation: ValidationConfig{
			Enabled:           true,
			Method:            string(validation.MethodNumberFrequency),
			Threshold:         validation.DefaultThreshold,
			SecondaryProvider: "pdftext",
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8000,
		},
		Limits: LimitsConfig{
			MaxFileSizeMB: 50,
		},
		Defaults: DefaultsConfig{
			Provider: "mistral",
		},
	}
}
