package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/jackzampolin/docvet/internal/extract"
)

const (
	MistralName    = "mistral"
	MistralBaseURL = "https://api.mistral.ai/v1"
	MistralModel   = "mistral-small-latest"
)

// MistralConfig holds configuration for the Mistral chat client.
type MistralConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	RateLimit  int // requests per minute
	MaxRetries int
	Timeout    time.Duration
}

// MistralClient extracts document content through the Mistral chat API.
// Page text is read locally and sent one page per request, so a failed
// page never poisons the rest of the document.
type MistralClient struct {
	apiKey     string
	baseURL    string
	model      string
	rateLimit  int
	maxRetries int
	client     *http.Client
}

// NewMistralClient creates a new Mistral extraction client.
func NewMistralClient(cfg MistralConfig) *MistralClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = MistralBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = MistralModel
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = 60
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}

	return &MistralClient{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		rateLimit:  cfg.RateLimit,
		maxRetries: cfg.MaxRetries,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Name returns the provider identifier.
func (c *MistralClient) Name() string {
	return MistralName
}

// RequestsPerMinute returns the rate limit for the Mistral API.
func (c *MistralClient) RequestsPerMinute() int {
	return c.rateLimit
}

// MaxRetries returns the maximum retry attempts.
func (c *MistralClient) MaxRetries() int {
	return c.maxRetries
}

// RetryDelayBase returns the base delay for exponential backoff.
func (c *MistralClient) RetryDelayBase() time.Duration {
	return 2 * time.Second
}

// ProcessDocument extracts every page of the document, one request per page.
func (c *MistralClient) ProcessDocument(ctx context.Context, pdfPath string, query string) ([]extract.Section, error) {
	pages, err := ReadPageTexts(pdfPath)
	if err != nil {
		return nil, err
	}

	sections := make([]extract.Section, 0, len(pages))
	for i, pageText := range pages {
		pageNum := i + 1
		content, err := c.extractPage(ctx, pageText, pageNum, query)
		if err != nil {
			return nil, fmt.Errorf("mistral extraction failed on page %d: %w", pageNum, err)
		}
		sections = append(sections, extract.Section{
			PageNumber: pageNum,
			Content:    content,
			Metadata: map[string]any{
				"provider": MistralName,
				"model":    c.model,
			},
		})
	}
	return sections, nil
}

// ExtractPageContent extracts a single page (1-indexed).
func (c *MistralClient) ExtractPageContent(ctx context.Context, pdfPath string, pageNum int, query string) (string, error) {
	pages, err := ReadPageTexts(pdfPath)
	if err != nil {
		return "", err
	}
	if pageNum < 1 || pageNum > len(pages) {
		return "", fmt.Errorf("page %d out of range (document has %d pages)", pageNum, len(pages))
	}
	return c.extractPage(ctx, pages[pageNum-1], pageNum, query)
}

// HealthCheck verifies the API key by listing models.
func (c *MistralClient) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/models", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("mistral unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("mistral health check failed (status %d)", resp.StatusCode)
	}
	return nil
}

func (c *MistralClient) extractPage(ctx context.Context, pageText string, pageNum int, query string) (string, error) {
	reqBody := mistralChatRequest{
		Model: c.model,
		Messages: []mistralChatMessage{
			{Role: "user", Content: ExtractionPrompt(query, pageNum, pageText)},
		},
		Temperature: 0.0,
	}

	resp, err := c.doRequest(ctx, "/chat/completions", reqBody)
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in Mistral response")
	}
	return resp.Choices[0].Message.Content, nil
}

// doRequest makes an HTTP request to the Mistral API.
func (c *MistralClient) doRequest(ctx context.Context, path string, body any) (*mistralChatResponse, error) {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		return nil, &RateLimitedError{Provider: MistralName, RetryAfter: retryAfter}
	}

	if resp.StatusCode != http.StatusOK {
		var errResp mistralErrorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Message != "" {
			return nil, fmt.Errorf("Mistral error (status %d): %s", resp.StatusCode, errResp.Message)
		}
		return nil, fmt.Errorf("Mistral error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var chatResp mistralChatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &chatResp, nil
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	secs, err := strconv.Atoi(header)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// RateLimitedError reports a 429 from an upstream provider.
type RateLimitedError struct {
	Provider   string
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s rate limited, retry after %s", e.Provider, e.RetryAfter)
	}
	return fmt.Sprintf("%s rate limited", e.Provider)
}

// Mistral chat API types

type mistralChatRequest struct {
	Model       string               `json:"model"`
	Messages    []mistralChatMessage `json:"messages"`
	Temperature float64              `json:"temperature"`
	MaxTokens   int                  `json:"max_tokens,omitempty"`
}

type mistralChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type mistralChatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message mistralChatMessage `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage,omitempty"`
}

type mistralErrorResponse struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Verify interface
var _ Extractor = (*MistralClient)(nil)
