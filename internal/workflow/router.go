package workflow

import (
	"log/slog"
	"strings"
)

// Keyword tables checked in priority order, most specific first. The
// first table with a hit wins; no hits fall through to the default.
var (
	textExtractionKeywords = []string{
		"text extraction",
		"text only",
		"no ai",
		"raw text",
		"simple extraction",
		"plain text",
	}

	ocrKeywords = []string{
		"ocr",
		"images",
		"charts",
		"diagrams",
		"scanned",
		"scan",
		"handwritten",
		"visual content",
		"image extraction",
	}

	geminiKeywords = []string{
		"gemini",
		"google",
		"high quality",
		"best quality",
		"maximum quality",
	}
)

// Route determines the workflow for a request. An explicit workflow name
// overrides keyword detection; otherwise the query is scanned against the
// keyword tables and the default workflow is the fallback.
func Route(query, explicit string, logger *slog.Logger) (Type, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if explicit != "" {
		t, err := FromString(explicit)
		if err != nil {
			logger.Error("invalid explicit workflow", "workflow", explicit)
			return "", err
		}
		logger.Info("using explicit workflow", "workflow", t)
		return t, nil
	}

	queryLower := strings.ToLower(query)

	if matchesAny(queryLower, textExtractionKeywords) {
		logger.Info("routing to text_extraction workflow (keyword match)")
		return TypeTextExtraction, nil
	}
	if matchesAny(queryLower, ocrKeywords) {
		logger.Info("routing to ocr_images workflow (keyword match)")
		return TypeOCRImages, nil
	}
	if matchesAny(queryLower, geminiKeywords) {
		logger.Info("routing to gemini workflow (keyword match)")
		return TypeGemini, nil
	}

	logger.Info("routing to mistral workflow (default)")
	return TypeMistral, nil
}

func matchesAny(query string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(query, kw) {
			return true
		}
	}
	return false
}
