// Package extract defines the shared data model for document extraction
// results. Providers produce per-page Sections; the workflow layer assembles
// them into a Result for serialization.
package extract

import (
	"strings"
	"time"
)

// PageSeparator joins per-page content into a single document string.
// The validation normalizer strips this marker before comparisons.
const PageSeparator = "\n---PAGE-BREAK---\n"

// SectionSeparator joins logical document sections.
const SectionSeparator = "\n\n---\n\n"

// Section is the extraction result for a single page.
// Immutable once produced by a provider.
type Section struct {
	PageNumber int            `json:"page_number"`
	Content    string         `json:"content"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Result is the complete output of one extraction workflow run.
type Result struct {
	Content          string         `json:"content"`
	Metadata         map[string]any `json:"metadata"`
	Sections         []Section      `json:"sections,omitempty"`
	ValidationReport map[string]any `json:"validation_report,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
}

// JoinSections concatenates section contents with the page separator,
// preserving section order.
func JoinSections(sections []Section) string {
	if len(sections) == 0 {
		return ""
	}
	parts := make([]string, len(sections))
	for i, s := range sections {
		parts[i] = s.Content
	}
	return strings.Join(parts, PageSeparator)
}
