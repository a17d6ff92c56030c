package providers

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Registry holds the configured extraction providers. It supports
// config-driven instantiation, hot reload, and thread-safe access.
type Registry struct {
	mu         sync.RWMutex
	extractors map[string]Extractor
	logger     *slog.Logger
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		extractors: make(map[string]Extractor),
		logger:     slog.Default(),
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger
}

// Register registers an extractor by name.
func (r *Registry) Register(name string, e Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extractors[name] = e
	r.logger.Info("registered extraction provider", "name", name)
}

// Unregister removes an extractor by name.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.extractors, name)
	r.logger.Info("unregistered extraction provider", "name", name)
}

// Get returns an extractor by name.
func (r *Registry) Get(name string) (Extractor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.extractors[name]
	if !ok {
		return nil, fmt.Errorf("extraction provider not found: %s", name)
	}
	return e, nil
}

// List returns all registered provider names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.extractors))
	for name := range r.extractors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reload replaces the registered providers with those built from cfg.
// Disabled providers and providers that fail to construct are skipped
// (logged, not fatal), so one bad entry cannot take the gateway down.
func (r *Registry) Reload(cfg RegistryConfig) {
	fresh := make(map[string]Extractor, len(cfg.Providers))

	for name, pc := range cfg.Providers {
		if !pc.Enabled {
			continue
		}
		e, err := buildExtractor(pc)
		if err != nil {
			r.logger.Error("failed to build provider", "name", name, "error", err)
			continue
		}
		fresh[name] = WithRetry(e, r.loggerSnapshot())
	}

	r.mu.Lock()
	r.extractors = fresh
	r.mu.Unlock()

	r.logger.Info("provider registry reloaded", "providers", len(fresh))
}

func (r *Registry) loggerSnapshot() *slog.Logger {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.logger
}

// buildExtractor constructs a concrete provider from its config entry.
func buildExtractor(pc ProviderConfig) (Extractor, error) {
	switch pc.Type {
	case MistralName:
		return NewMistralClient(MistralConfig{
			APIKey:     pc.APIKey,
			BaseURL:    pc.BaseURL,
			Model:      pc.Model,
			RateLimit:  pc.RateLimit,
			MaxRetries: pc.MaxRetries,
			Timeout:    timeoutFromSeconds(pc.TimeoutSec),
		}), nil
	case OpenAIName:
		return NewOpenAIClient(OpenAIConfig{
			APIKey:     pc.APIKey,
			BaseURL:    pc.BaseURL,
			Model:      pc.Model,
			RateLimit:  pc.RateLimit,
			MaxRetries: pc.MaxRetries,
			Timeout:    timeoutFromSeconds(pc.TimeoutSec),
		}), nil
	case GeminiName:
		return NewGeminiClient(GeminiConfig{
			APIKey:     pc.APIKey,
			Model:      pc.Model,
			RateLimit:  pc.RateLimit,
			MaxRetries: pc.MaxRetries,
		})
	case PDFTextName:
		return NewPDFTextExtractor(), nil
	default:
		return nil, fmt.Errorf("unknown provider type: %s", pc.Type)
	}
}
