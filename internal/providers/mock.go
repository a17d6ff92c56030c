package providers

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jackzampolin/docvet/internal/extract"
)

const MockName = "mock"

// MockExtractor is an Extractor for testing.
type MockExtractor struct {
	// Configurable behavior
	Latency    time.Duration
	ShouldFail bool
	FailAfter  int // Fail after N requests (0 = never)
	FailFirst  int // Fail the first N requests, then succeed
	Sections   []extract.Section
	PageText   string

	// Rate limiting
	RPM        int
	Retries    int
	RetryDelay time.Duration

	// State
	requestCount atomic.Int64
}

// NewMockExtractor creates a new mock extractor with sensible defaults.
func NewMockExtractor() *MockExtractor {
	return &MockExtractor{
		PageText:   "mock page content",
		RPM:        600,
		Retries:    3,
		RetryDelay: time.Millisecond,
	}
}

// Name returns the provider identifier.
func (m *MockExtractor) Name() string {
	return MockName
}

// RequestsPerMinute returns the RPM limit for rate limiting.
func (m *MockExtractor) RequestsPerMinute() int {
	return m.RPM
}

// MaxRetries returns the maximum retry attempts.
func (m *MockExtractor) MaxRetries() int {
	return m.Retries
}

// RetryDelayBase returns the base delay between retries.
func (m *MockExtractor) RetryDelayBase() time.Duration {
	return m.RetryDelay
}

// RequestCount returns how many extraction calls have been made.
func (m *MockExtractor) RequestCount() int64 {
	return m.requestCount.Load()
}

// ProcessDocument returns the configured sections, or a single synthetic page.
func (m *MockExtractor) ProcessDocument(ctx context.Context, pdfPath string, query string) ([]extract.Section, error) {
	if err := m.step(ctx); err != nil {
		return nil, err
	}
	if m.Sections != nil {
		return m.Sections, nil
	}
	return []extract.Section{
		{
			PageNumber: 1,
			Content:    m.PageText,
			Metadata:   map[string]any{"provider": MockName},
		},
	}, nil
}

// ExtractPageContent returns the configured page text.
func (m *MockExtractor) ExtractPageContent(ctx context.Context, pdfPath string, pageNum int, query string) (string, error) {
	if err := m.step(ctx); err != nil {
		return "", err
	}
	return m.PageText, nil
}

// HealthCheck fails when the mock is configured to fail.
func (m *MockExtractor) HealthCheck(ctx context.Context) error {
	if m.ShouldFail {
		return fmt.Errorf("mock provider unhealthy")
	}
	return nil
}

func (m *MockExtractor) step(ctx context.Context) error {
	count := m.requestCount.Add(1)

	if m.Latency > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.Latency):
		}
	}

	if m.ShouldFail {
		return fmt.Errorf("mock extraction failure")
	}
	if m.FailFirst > 0 && count <= int64(m.FailFirst) {
		return fmt.Errorf("mock transient failure %d", count)
	}
	if m.FailAfter > 0 && count > int64(m.FailAfter) {
		return fmt.Errorf("mock extraction failure after %d requests", m.FailAfter)
	}
	return nil
}

// Verify interface
var _ Extractor = (*MockExtractor)(nil)
