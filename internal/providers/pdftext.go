package providers

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ledongthuc/pdf"
	pdfcpu "github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/jackzampolin/docvet/internal/extract"
)

const PDFTextName = "pdftext"

// PDFTextExtractor is the local, non-AI extraction path. It pulls the
// embedded text layer straight out of the PDF, so it is fast and free but
// useless for scanned documents. The AI providers also use it to obtain
// per-page source text for their prompts.
type PDFTextExtractor struct{}

// NewPDFTextExtractor creates the local text extractor.
func NewPDFTextExtractor() *PDFTextExtractor {
	return &PDFTextExtractor{}
}

// Name returns the provider identifier.
func (e *PDFTextExtractor) Name() string { return PDFTextName }

// RequestsPerMinute is effectively unlimited for local extraction.
func (e *PDFTextExtractor) RequestsPerMinute() int { return 6000 }

// MaxRetries returns 0; local reads either work or they don't.
func (e *PDFTextExtractor) MaxRetries() int { return 0 }

// RetryDelayBase returns the base backoff delay.
func (e *PDFTextExtractor) RetryDelayBase() time.Duration { return time.Second }

// ProcessDocument extracts the text layer of every page.
func (e *PDFTextExtractor) ProcessDocument(ctx context.Context, pdfPath string, query string) ([]extract.Section, error) {
	pages, err := ReadPageTexts(pdfPath)
	if err != nil {
		return nil, err
	}

	sections := make([]extract.Section, 0, len(pages))
	for i, text := range pages {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		sections = append(sections, extract.Section{
			PageNumber: i + 1,
			Content:    text,
			Metadata: map[string]any{
				"provider":   PDFTextName,
				"char_count": len(text),
			},
		})
	}
	return sections, nil
}

// ExtractPageContent extracts the text layer of a single page.
func (e *PDFTextExtractor) ExtractPageContent(ctx context.Context, pdfPath string, pageNum int, query string) (string, error) {
	pages, err := ReadPageTexts(pdfPath)
	if err != nil {
		return "", err
	}
	if pageNum < 1 || pageNum > len(pages) {
		return "", fmt.Errorf("page %d out of range (document has %d pages)", pageNum, len(pages))
	}
	return pages[pageNum-1], nil
}

// HealthCheck verifies the process can read files; always healthy.
func (e *PDFTextExtractor) HealthCheck(ctx context.Context) error { return nil }

// ReadPageTexts returns the embedded text of every page, in page order.
// Pages whose text cannot be decoded come back empty rather than failing
// the whole document; the validation layer flags them downstream.
func ReadPageTexts(pdfPath string) ([]string, error) {
	f, reader, err := pdf.Open(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF %s: %w", pdfPath, err)
	}
	defer f.Close()

	total := reader.NumPage()
	pages := make([]string, total)
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pages[i-1] = text
	}
	return pages, nil
}

// Verify interface
var _ Extractor = (*PDFTextExtractor)(nil)

// ValidatePDF checks that the file at path is a readable PDF and returns
// its page count. Used by the upload handler before any provider work.
func ValidatePDF(path string) (int, error) {
	if _, err := os.Stat(path); err != nil {
		return 0, fmt.Errorf("pdf not accessible: %w", err)
	}
	count, err := pdfcpu.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("invalid PDF: %w", err)
	}
	return count, nil
}
