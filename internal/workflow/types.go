// Package workflow routes extraction requests to the right provider and
// orchestrates the extract-then-validate pipeline.
package workflow

import (
	"fmt"
	"strings"
)

// Type identifies an extraction workflow. Each workflow maps to one
// provider strategy.
type Type string

const (
	// TypeMistral is the general-purpose default.
	TypeMistral Type = "mistral"
	// TypeTextExtraction is the fast local path with no AI involved.
	TypeTextExtraction Type = "text_extraction"
	// TypeOCRImages handles scanned documents, charts, and diagrams.
	TypeOCRImages Type = "ocr_images"
	// TypeGemini is the high-quality extraction path.
	TypeGemini Type = "gemini"
)

// Types lists all workflows in routing priority order.
var Types = []Type{TypeTextExtraction, TypeOCRImages, TypeGemini, TypeMistral}

// typeAliases maps accepted spellings to canonical workflow types.
var typeAliases = map[string]Type{
	"default": TypeMistral,
	"text":    TypeTextExtraction,
	"ocr":     TypeOCRImages,
}

// FromString converts a workflow name to its canonical Type. Common
// aliases are accepted; anything else is an error listing valid options.
func FromString(s string) (Type, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))

	if t, ok := typeAliases[normalized]; ok {
		return t, nil
	}
	for _, t := range Types {
		if string(t) == normalized {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown workflow type: %s (valid options: %s, %s, %s, %s)",
		s, TypeTextExtraction, TypeOCRImages, TypeGemini, TypeMistral)
}

// String returns the workflow name.
func (t Type) String() string { return string(t) }

// Description returns a human-readable summary of the workflow, used by
// the status endpoint and CLI help.
func (t Type) Description() string {
	switch t {
	case TypeMistral:
		return "General-purpose extraction using Mistral AI. Best for general documents with a good balance of speed, cost, and quality."
	case TypeTextExtraction:
		return "Fast local text extraction without AI. Best for simple text-based PDFs where AI enhancement is not needed."
	case TypeOCRImages:
		return "OCR extraction with image handling using OpenAI. Best for scanned documents, charts, diagrams, and images with text."
	case TypeGemini:
		return "High-quality extraction using Google Gemini. Best for when extraction quality is the top priority."
	}
	return fmt.Sprintf("Unknown workflow: %s", string(t))
}

// ListWorkflows returns every workflow name mapped to its description.
func ListWorkflows() map[string]string {
	out := make(map[string]string, len(Types))
	for _, t := range Types {
		out[string(t)] = t.Description()
	}
	return out
}
