package providers

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/jackzampolin/docvet/internal/extract"
)

const (
	GeminiName         = "gemini"
	geminiDefaultModel = "gemini-2.0-flash"
)

// GeminiConfig holds configuration for the Gemini extraction client.
type GeminiConfig struct {
	APIKey     string
	Model      string
	RateLimit  int // requests per minute
	MaxRetries int
}

// GeminiClient implements Extractor using the Google GenAI SDK. Like the
// Mistral client it works one page per request on locally-read page text.
type GeminiClient struct {
	model      string
	rateLimit  int
	maxRetries int
	client     *genai.Client
}

// NewGeminiClient creates a new Gemini extraction client.
func NewGeminiClient(cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.Model == "" {
		cfg.Model = geminiDefaultModel
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 60
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiClient{
		model:      cfg.Model,
		rateLimit:  cfg.RateLimit,
		maxRetries: cfg.MaxRetries,
		client:     client,
	}, nil
}

// Name returns the provider identifier.
func (c *GeminiClient) Name() string {
	return GeminiName
}

// RequestsPerMinute returns the configured rate limit.
func (c *GeminiClient) RequestsPerMinute() int {
	return c.rateLimit
}

// MaxRetries returns the maximum retry attempts.
func (c *GeminiClient) MaxRetries() int {
	return c.maxRetries
}

// RetryDelayBase returns the base delay for exponential backoff.
func (c *GeminiClient) RetryDelayBase() time.Duration {
	return 2 * time.Second
}

// HealthCheck sends a minimal generation request to verify credentials.
func (c *GeminiClient) HealthCheck(ctx context.Context) error {
	_, err := c.client.Models.GenerateContent(ctx, c.model, []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{genai.NewPartFromText("ping")},
		},
	}, nil)
	if err != nil {
		return fmt.Errorf("gemini health check failed: %w", err)
	}
	return nil
}

// ProcessDocument extracts every page of the document, one request per page.
func (c *GeminiClient) ProcessDocument(ctx context.Context, pdfPath string, query string) ([]extract.Section, error) {
	pages, err := ReadPageTexts(pdfPath)
	if err != nil {
		return nil, err
	}

	sections := make([]extract.Section, 0, len(pages))
	for i, pageText := range pages {
		pageNum := i + 1
		content, err := c.extractPage(ctx, pageText, pageNum, query)
		if err != nil {
			return nil, fmt.Errorf("gemini extraction failed on page %d: %w", pageNum, err)
		}
		sections = append(sections, extract.Section{
			PageNumber: pageNum,
			Content:    content,
			Metadata: map[string]any{
				"provider": GeminiName,
				"model":    c.model,
			},
		})
	}
	return sections, nil
}

// ExtractPageContent extracts a single page (1-indexed).
func (c *GeminiClient) ExtractPageContent(ctx context.Context, pdfPath string, pageNum int, query string) (string, error) {
	pages, err := ReadPageTexts(pdfPath)
	if err != nil {
		return "", err
	}
	if pageNum < 1 || pageNum > len(pages) {
		return "", fmt.Errorf("page %d out of range (document has %d pages)", pageNum, len(pages))
	}
	return c.extractPage(ctx, pages[pageNum-1], pageNum, query)
}

func (c *GeminiClient) extractPage(ctx context.Context, pageText string, pageNum int, query string) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0.0)),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{genai.NewPartFromText(ExtractionPrompt(query, pageNum, pageText))},
		},
	}, config)
	if err != nil {
		return "", err
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty gemini response")
	}
	return text, nil
}

// Verify interface
var _ Extractor = (*GeminiClient)(nil)
