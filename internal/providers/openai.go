package providers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/jackzampolin/docvet/internal/extract"
)

const (
	OpenAIName         = "openai"
	openAIDefaultModel = openai.ChatModelGPT4oMini
)

// OpenAIConfig holds configuration for the OpenAI extraction client.
type OpenAIConfig struct {
	APIKey     string
	Model      string
	BaseURL    string // Optional (tests)
	HTTPClient *http.Client
	RateLimit  int // requests per minute
	MaxRetries int
	Timeout    time.Duration
}

// OpenAIClient implements Extractor using the official OpenAI SDK.
// Whole documents go up in a single structured-output request; the pages
// payload is schema-validated before any section is accepted.
type OpenAIClient struct {
	model      string
	rateLimit  int
	maxRetries int
	client     openai.Client
}

// NewOpenAIClient creates a new OpenAI extraction client.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	if cfg.Model == "" {
		cfg.Model = string(openAIDefaultModel)
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 300 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0), // the retrying wrapper owns retries
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIClient{
		model:      cfg.Model,
		rateLimit:  cfg.RateLimit,
		maxRetries: cfg.MaxRetries,
		client:     openai.NewClient(opts...),
	}
}

// Name returns the provider identifier.
func (c *OpenAIClient) Name() string {
	return OpenAIName
}

// RequestsPerMinute returns the configured rate limit.
func (c *OpenAIClient) RequestsPerMinute() int {
	return c.rateLimit
}

// MaxRetries returns the maximum retry attempts.
func (c *OpenAIClient) MaxRetries() int {
	return c.maxRetries
}

// RetryDelayBase returns the base delay for exponential backoff.
func (c *OpenAIClient) RetryDelayBase() time.Duration {
	return 2 * time.Second
}

// HealthCheck verifies the OpenAI API is reachable and the API key is valid.
func (c *OpenAIClient) HealthCheck(ctx context.Context) error {
	page, err := c.client.Models.List(ctx)
	if err != nil {
		return fmt.Errorf("openai models list failed: %w", err)
	}
	if page == nil {
		return fmt.Errorf("openai models list returned nil response")
	}
	return nil
}

// ProcessDocument extracts the whole document in one request. The model
// returns a JSON pages payload which is validated against the pages schema;
// pages the model omits come back as empty sections so page numbering stays
// aligned with the source document.
func (c *OpenAIClient) ProcessDocument(ctx context.Context, pdfPath string, query string) ([]extract.Section, error) {
	pages, err := ReadPageTexts(pdfPath)
	if err != nil {
		return nil, err
	}

	prompt := c.documentPrompt(pages, query)
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai extraction failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in OpenAI response")
	}

	structured, err := ParseStructuredPages(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, fmt.Errorf("openai structured output invalid: %w", err)
	}

	byNumber := make(map[int]string, len(structured))
	for _, p := range structured {
		byNumber[p.PageNumber] = p.Content
	}

	sections := make([]extract.Section, 0, len(pages))
	for i := range pages {
		pageNum := i + 1
		sections = append(sections, extract.Section{
			PageNumber: pageNum,
			Content:    byNumber[pageNum],
			Metadata: map[string]any{
				"provider": OpenAIName,
				"model":    c.model,
			},
		})
	}
	return sections, nil
}

// ExtractPageContent extracts a single page (1-indexed).
func (c *OpenAIClient) ExtractPageContent(ctx context.Context, pdfPath string, pageNum int, query string) (string, error) {
	pages, err := ReadPageTexts(pdfPath)
	if err != nil {
		return "", err
	}
	if pageNum < 1 || pageNum > len(pages) {
		return "", fmt.Errorf("page %d out of range (document has %d pages)", pageNum, len(pages))
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(ExtractionPrompt(query, pageNum, pages[pageNum-1])),
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai extraction failed on page %d: %w", pageNum, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in OpenAI response")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) documentPrompt(pages []string, query string) string {
	if query == "" {
		query = "Extract all text content, preserving structure, tables, and numbers exactly as they appear."
	}

	var b strings.Builder
	fmt.Fprintf(&b, `You are a document extraction assistant.

QUERY: %s

Return ONLY valid JSON (no markdown, no commentary) with this shape:
{"pages": [{"page_number": 1, "content": "..."}]}

Include one entry per page, in order.

DOCUMENT:
`, query)
	for i, text := range pages {
		fmt.Fprintf(&b, "\n--- PAGE %d ---\n%s\n", i+1, text)
	}
	return b.String()
}

// Verify interface
var _ Extractor = (*OpenAIClient)(nil)
