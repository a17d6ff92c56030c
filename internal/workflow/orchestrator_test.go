package workflow

import (
	"context"
	"strings"
	"testing"

	"github.com/jackzampolin/docvet/internal/config"
	"github.com/jackzampolin/docvet/internal/extract"
	"github.com/jackzampolin/docvet/internal/providers"
	"github.com/jackzampolin/docvet/internal/validation"
)

type staticConfig struct {
	cfg *config.Config
}

func (s staticConfig) Get() *config.Config { return s.cfg }

// cleanPage returns content that passes every quality check.
func cleanPage() string {
	return strings.Repeat("The quarterly report shows revenue of 125 units and costs of 90 units. ", 5)
}

func cleanSections() []extract.Section {
	return []extract.Section{
		{PageNumber: 1, Content: cleanPage()},
		{PageNumber: 2, Content: cleanPage()},
	}
}

func testConfig(validationEnabled bool, secondary string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Validation.Enabled = validationEnabled
	cfg.Validation.SecondaryProvider = secondary
	return cfg
}

func newTestOrchestrator(t *testing.T, cfg *config.Config, extractors map[string]providers.Extractor) *Orchestrator {
	t.Helper()
	registry := providers.NewRegistry()
	for name, e := range extractors {
		registry.Register(name, e)
	}
	return NewOrchestrator(registry, staticConfig{cfg}, nil)
}

func TestExecuteDefaultWorkflow(t *testing.T) {
	primary := providers.NewMockExtractor()
	primary.Sections = cleanSections()

	o := newTestOrchestrator(t, testConfig(false, "pdftext"), map[string]providers.Extractor{
		"mistral": primary,
	})

	result, err := o.Execute(context.Background(), "doc.pdf", Options{Query: "extract the data"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Content != extract.JoinSections(cleanSections()) {
		t.Error("content should be the joined primary sections")
	}
	if result.Metadata["workflow"] != "mistral" {
		t.Errorf("unexpected workflow: %v", result.Metadata["workflow"])
	}
	if result.Metadata["provider"] != "mistral" {
		t.Errorf("unexpected provider: %v", result.Metadata["provider"])
	}
	if result.Metadata["pages"] != 2 {
		t.Errorf("unexpected page count: %v", result.Metadata["pages"])
	}
	if result.Metadata["request_id"] == "" {
		t.Error("expected a request id")
	}
	if result.ValidationReport != nil {
		t.Error("validation disabled, report should be nil")
	}
	if result.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}
}

func TestExecuteExplicitWorkflow(t *testing.T) {
	local := providers.NewMockExtractor()
	local.Sections = cleanSections()

	o := newTestOrchestrator(t, testConfig(false, "pdftext"), map[string]providers.Extractor{
		"pdftext": local,
	})

	result, err := o.Execute(context.Background(), "doc.pdf", Options{Workflow: "text"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Metadata["workflow"] != "text_extraction" {
		t.Errorf("unexpected workflow: %v", result.Metadata["workflow"])
	}
	if result.Metadata["provider"] != "pdftext" {
		t.Errorf("unexpected provider: %v", result.Metadata["provider"])
	}
}

func TestExecuteMissingProvider(t *testing.T) {
	o := newTestOrchestrator(t, testConfig(false, "pdftext"), nil)

	if _, err := o.Execute(context.Background(), "doc.pdf", Options{}); err == nil {
		t.Error("expected error when no provider is registered")
	}
}

func TestExecuteValidationQualityIssues(t *testing.T) {
	// Primary produces a junk page; validation must swap in the secondary.
	primary := providers.NewMockExtractor()
	primary.Sections = []extract.Section{{PageNumber: 1, Content: "x"}}

	secondary := providers.NewMockExtractor()
	secondary.Sections = cleanSections()

	o := newTestOrchestrator(t, testConfig(true, "pdftext"), map[string]providers.Extractor{
		"mistral": primary,
		"pdftext": secondary,
	})

	result, err := o.Execute(context.Background(), "doc.pdf", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Content != extract.JoinSections(cleanSections()) {
		t.Error("expected secondary content after quality failure")
	}
	if result.ValidationReport == nil {
		t.Fatal("expected validation report")
	}
	if result.ValidationReport["reason"] != validation.ReasonQualityIssues {
		t.Errorf("unexpected reason: %v", result.ValidationReport["reason"])
	}
	if result.ValidationReport["used_secondary"] != true {
		t.Error("expected used_secondary true")
	}
	if result.ValidationReport["secondary_provider"] != "pdftext" {
		t.Errorf("unexpected secondary provider: %v", result.ValidationReport["secondary_provider"])
	}
}

func TestExecuteValidationPasses(t *testing.T) {
	primary := providers.NewMockExtractor()
	primary.Sections = cleanSections()

	secondary := providers.NewMockExtractor()
	secondary.Sections = cleanSections()

	o := newTestOrchestrator(t, testConfig(true, "pdftext"), map[string]providers.Extractor{
		"mistral": primary,
		"pdftext": secondary,
	})

	result, err := o.Execute(context.Background(), "doc.pdf", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Content != extract.JoinSections(cleanSections()) {
		t.Error("expected primary content to stand")
	}
	if result.ValidationReport == nil {
		t.Fatal("expected validation report")
	}
	if _, hasReason := result.ValidationReport["reason"]; hasReason {
		t.Errorf("passing validation should carry no reason, got %v", result.ValidationReport["reason"])
	}
	if result.ValidationReport["used_secondary"] != false {
		t.Error("expected used_secondary false")
	}
}

func TestExecuteValidationSkippedWhenSecondaryIsPrimary(t *testing.T) {
	local := providers.NewMockExtractor()
	local.Sections = cleanSections()

	o := newTestOrchestrator(t, testConfig(true, "pdftext"), map[string]providers.Extractor{
		"pdftext": local,
	})

	result, err := o.Execute(context.Background(), "doc.pdf", Options{Workflow: "text_extraction"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ValidationReport != nil {
		t.Error("expected no validation report when secondary equals primary")
	}
	if result.Metadata["validation_skipped"] == nil {
		t.Error("expected validation_skipped metadata")
	}
	// The local provider should only have been called once.
	if local.RequestCount() != 1 {
		t.Errorf("expected 1 extraction call, got %d", local.RequestCount())
	}
}

func TestExecuteValidationOverride(t *testing.T) {
	primary := providers.NewMockExtractor()
	primary.Sections = []extract.Section{{PageNumber: 1, Content: "x"}}

	o := newTestOrchestrator(t, testConfig(true, "pdftext"), map[string]providers.Extractor{
		"mistral": primary,
	})

	// Config enables validation; the per-request override disables it, so
	// the junk primary content survives and no secondary is needed.
	off := false
	result, err := o.Execute(context.Background(), "doc.pdf", Options{EnableValidation: &off})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Content != "x" {
		t.Errorf("unexpected content: %q", result.Content)
	}
	if result.ValidationReport != nil {
		t.Error("expected no validation report")
	}
}

func TestExecuteSecondaryFailurePropagates(t *testing.T) {
	primary := providers.NewMockExtractor()
	primary.Sections = []extract.Section{{PageNumber: 1, Content: "x"}}

	secondary := providers.NewMockExtractor()
	secondary.ShouldFail = true

	o := newTestOrchestrator(t, testConfig(true, "pdftext"), map[string]providers.Extractor{
		"mistral": primary,
		"pdftext": secondary,
	})

	_, err := o.Execute(context.Background(), "doc.pdf", Options{})
	if err == nil {
		t.Fatal("expected error when secondary extraction fails")
	}
}
