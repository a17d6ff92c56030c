package providers

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ExtractionPrompt builds the per-page prompt shared by the chat-based
// providers. The query is optional; without one the provider returns a
// faithful transcription of the page.
func ExtractionPrompt(query string, pageNum int, pageText string) string {
	if query == "" {
		query = "Extract all text content from this page, preserving structure, tables, and numbers exactly as they appear."
	}
	return fmt.Sprintf("You are a document extraction assistant. Extract the requested information.\n\nQUERY: %s\n\nPAGE %d CONTENT:\n%s", query, pageNum, pageText)
}

// pagesSchema is the canonical shape for whole-document structured output:
// an object with a pages array, each entry carrying a 1-indexed page number
// and its extracted content.
const pagesSchemaJSON = `{
	"type": "object",
	"required": ["pages"],
	"properties": {
		"pages": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["page_number", "content"],
				"properties": {
					"page_number": {"type": "integer", "minimum": 1},
					"content": {"type": "string"}
				}
			}
		}
	}
}`

var pagesSchema = jsonschema.MustCompileString("pages.json", pagesSchemaJSON)

// structuredPage is one entry of a validated pages payload.
type structuredPage struct {
	PageNumber int    `json:"page_number"`
	Content    string `json:"content"`
}

type structuredPagesPayload struct {
	Pages []structuredPage `json:"pages"`
}

// ParseStructuredPages parses and validates a model's whole-document JSON
// output. It tolerates markdown code fences around the payload but rejects
// anything that fails schema validation, so malformed model output surfaces
// as an extraction error instead of silently corrupt sections.
func ParseStructuredPages(content string) ([]structuredPage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("empty structured output")
	}

	candidates := []string{content}
	if stripped := stripCodeFences(content); stripped != "" && stripped != content {
		candidates = append(candidates, stripped)
	}

	var lastErr error
	for _, candidate := range candidates {
		var doc any
		if err := json.Unmarshal([]byte(candidate), &doc); err != nil {
			lastErr = fmt.Errorf("failed to parse structured JSON: %w", err)
			continue
		}
		if err := pagesSchema.Validate(doc); err != nil {
			lastErr = fmt.Errorf("structured output does not match pages schema: %w", err)
			continue
		}

		var payload structuredPagesPayload
		if err := json.Unmarshal([]byte(candidate), &payload); err != nil {
			lastErr = fmt.Errorf("failed to decode pages payload: %w", err)
			continue
		}
		return payload.Pages, nil
	}
	return nil, lastErr
}

func stripCodeFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return ""
	}

	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return ""
	}

	// Drop first fence line.
	lines = lines[1:]
	// Drop trailing fence if present.
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
