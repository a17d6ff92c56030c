package providers

import (
	"context"
	"time"

	"github.com/jackzampolin/docvet/internal/extract"
)

// Extractor is the shared capability all extraction providers implement.
// Separate AI backends and the local text extractor all satisfy it, so any
// provider can serve as either the primary or the secondary (validation)
// extraction path.
type Extractor interface {
	// Name returns the provider identifier (e.g. "mistral", "pdftext").
	Name() string

	// ProcessDocument extracts every page of the PDF at pdfPath, guided by
	// the optional user query. Sections come back in page order.
	ProcessDocument(ctx context.Context, pdfPath string, query string) ([]extract.Section, error)

	// ExtractPageContent extracts a single page (1-indexed).
	ExtractPageContent(ctx context.Context, pdfPath string, pageNum int, query string) (string, error)

	// HealthCheck verifies the provider is reachable and credentialed.
	HealthCheck(ctx context.Context) error

	// Rate limiting and retry properties consumed by the retrying wrapper.
	RequestsPerMinute() int
	MaxRetries() int
	RetryDelayBase() time.Duration
}

// ProviderConfig holds the settings for a single extraction provider.
type ProviderConfig struct {
	Type       string `mapstructure:"type" yaml:"type"`
	Model      string `mapstructure:"model" yaml:"model,omitempty"`
	APIKey     string `mapstructure:"api_key" yaml:"api_key,omitempty"`
	BaseURL    string `mapstructure:"base_url" yaml:"base_url,omitempty"`
	RateLimit  int    `mapstructure:"rate_limit" yaml:"rate_limit,omitempty"` // requests per minute
	MaxRetries int    `mapstructure:"max_retries" yaml:"max_retries,omitempty"`
	TimeoutSec int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds,omitempty"`
	Enabled    bool   `mapstructure:"enabled" yaml:"enabled"`
}

// RegistryConfig is the provider section of the application config with
// API-key references already resolved.
type RegistryConfig struct {
	Providers map[string]ProviderConfig
}
