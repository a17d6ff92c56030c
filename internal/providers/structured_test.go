package providers

import (
	"strings"
	"testing"
)

func TestParseStructuredPages(t *testing.T) {
	t.Run("plain JSON", func(t *testing.T) {
		pages, err := ParseStructuredPages(`{"pages": [{"page_number": 1, "content": "first"}, {"page_number": 2, "content": "second"}]}`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(pages) != 2 {
			t.Fatalf("expected 2 pages, got %d", len(pages))
		}
		if pages[0].PageNumber != 1 || pages[0].Content != "first" {
			t.Errorf("unexpected first page: %+v", pages[0])
		}
		if pages[1].PageNumber != 2 || pages[1].Content != "second" {
			t.Errorf("unexpected second page: %+v", pages[1])
		}
	})

	t.Run("fenced JSON", func(t *testing.T) {
		content := "```json\n{\"pages\": [{\"page_number\": 1, \"content\": \"fenced\"}]}\n```"
		pages, err := ParseStructuredPages(content)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(pages) != 1 || pages[0].Content != "fenced" {
			t.Errorf("unexpected pages: %+v", pages)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if _, err := ParseStructuredPages("   "); err == nil {
			t.Error("expected error for empty input")
		}
	})

	t.Run("not JSON", func(t *testing.T) {
		if _, err := ParseStructuredPages("the document says hello"); err == nil {
			t.Error("expected error for non-JSON output")
		}
	})

	t.Run("missing pages key", func(t *testing.T) {
		_, err := ParseStructuredPages(`{"content": "no pages here"}`)
		if err == nil {
			t.Fatal("expected schema validation error")
		}
		if !strings.Contains(err.Error(), "schema") {
			t.Errorf("expected schema error, got: %v", err)
		}
	})

	t.Run("page number below one", func(t *testing.T) {
		if _, err := ParseStructuredPages(`{"pages": [{"page_number": 0, "content": "x"}]}`); err == nil {
			t.Error("expected schema validation error for page_number 0")
		}
	})

	t.Run("empty pages array", func(t *testing.T) {
		pages, err := ParseStructuredPages(`{"pages": []}`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(pages) != 0 {
			t.Errorf("expected no pages, got %d", len(pages))
		}
	})
}

func TestExtractionPrompt(t *testing.T) {
	prompt := ExtractionPrompt("find the totals", 3, "page body")
	for _, want := range []string{"QUERY: find the totals", "PAGE 3 CONTENT:", "page body"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}

	// Empty query falls back to plain transcription.
	fallback := ExtractionPrompt("", 1, "body")
	if !strings.Contains(fallback, "Extract all text content") {
		t.Errorf("expected transcription fallback, got:\n%s", fallback)
	}
}
