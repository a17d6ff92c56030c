package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jackzampolin/docvet/internal/config"
	"github.com/jackzampolin/docvet/internal/extract"
	"github.com/jackzampolin/docvet/internal/providers"
	"github.com/jackzampolin/docvet/internal/validation"
)

// Options tunes a single extraction run. Zero values defer to the
// current configuration.
type Options struct {
	// Query provides extraction context and drives keyword routing.
	Query string
	// Workflow forces a specific workflow, bypassing keyword routing.
	Workflow string
	// EnableValidation overrides the configured validation toggle.
	EnableValidation *bool
	// DetailedReport requests the full four-method similarity breakdown
	// whenever validation swaps in the secondary extraction.
	DetailedReport bool
	// Method overrides the configured similarity method.
	Method string
	// Threshold overrides the configured similarity threshold.
	Threshold float64
}

// ConfigSource provides the current configuration. *config.Manager
// satisfies it; tests may substitute a fixed snapshot.
type ConfigSource interface {
	Get() *config.Config
}

// Orchestrator executes extraction workflows: route, extract, validate,
// assemble. One instance serves all requests.
type Orchestrator struct {
	registry *providers.Registry
	cfg      ConfigSource
	logger   *slog.Logger
}

// NewOrchestrator creates a workflow orchestrator.
func NewOrchestrator(registry *providers.Registry, cfg ConfigSource, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		registry: registry,
		cfg:      cfg,
		logger:   logger,
	}
}

// providerFor maps a workflow to the provider name serving it.
func (o *Orchestrator) providerFor(t Type) string {
	switch t {
	case TypeTextExtraction:
		return "pdftext"
	case TypeOCRImages:
		return "openai"
	case TypeGemini:
		return "gemini"
	case TypeMistral:
		if def := o.cfg.Get().Defaults.Provider; def != "" {
			return def
		}
		return "mistral"
	}
	return string(t)
}

// Execute runs the full pipeline for one document.
func (o *Orchestrator) Execute(ctx context.Context, pdfPath string, opts Options) (*extract.Result, error) {
	start := time.Now()
	requestID := uuid.NewString()
	logger := o.logger.With("request_id", requestID)

	workflowType, err := Route(opts.Query, opts.Workflow, logger)
	if err != nil {
		return nil, err
	}

	providerName := o.providerFor(workflowType)
	provider, err := o.registry.Get(providerName)
	if err != nil {
		return nil, fmt.Errorf("no provider for workflow %s: %w", workflowType, err)
	}

	cfg := o.cfg.Get()
	validate := cfg.Validation.Enabled
	if opts.EnableValidation != nil {
		validate = *opts.EnableValidation
	}

	logger.Info("executing workflow",
		"workflow", workflowType, "provider", providerName,
		"pdf", pdfPath, "validation", validate)

	sections, err := provider.ProcessDocument(ctx, pdfPath, opts.Query)
	if err != nil {
		return nil, fmt.Errorf("failed to execute %s workflow: %w", workflowType, err)
	}

	content := extract.JoinSections(sections)
	metadata := map[string]any{
		"request_id":         requestID,
		"workflow":           string(workflowType),
		"provider":           providerName,
		"pages":              len(sections),
		"validation_enabled": validate,
	}

	var validationReport map[string]any
	if validate {
		secondaryName := cfg.Validation.SecondaryProvider
		if secondaryName == providerName {
			// Validating an extraction against itself proves nothing.
			logger.Warn("skipping validation: secondary provider equals primary",
				"provider", providerName)
			metadata["validation_skipped"] = "secondary provider equals primary"
		} else {
			newContent, report, err := o.runValidation(ctx, logger, content, pdfPath, opts, sections, secondaryName)
			if err != nil {
				return nil, err
			}
			content = newContent
			validationReport = report
		}
	}

	metadata["processing_time_seconds"] = time.Since(start).Seconds()
	logger.Info("workflow completed",
		"workflow", workflowType, "chars", len(content), "pages", len(sections))

	return &extract.Result{
		Content:          content,
		Metadata:         metadata,
		Sections:         sections,
		ValidationReport: validationReport,
		CreatedAt:        time.Now().UTC(),
	}, nil
}

// runValidation builds a validation service against the configured
// secondary provider and applies its decision to the content.
func (o *Orchestrator) runValidation(ctx context.Context, logger *slog.Logger, content, pdfPath string, opts Options, sections []extract.Section, secondaryName string) (string, map[string]any, error) {
	secondary, err := o.registry.Get(secondaryName)
	if err != nil {
		return "", nil, fmt.Errorf("no secondary provider for validation: %w", err)
	}

	cfg := o.cfg.Get()
	method := opts.Method
	if method == "" {
		method = cfg.Validation.Method
	}
	threshold := opts.Threshold
	if threshold == 0 {
		threshold = cfg.Validation.Threshold
	}

	svc, err := validation.NewService(validation.ServiceConfig{
		Secondary: secondary,
		Method:    method,
		Threshold: threshold,
		Logger:    logger,
	})
	if err != nil {
		return "", nil, err
	}

	var result *validation.Result
	if opts.DetailedReport {
		result, err = svc.ValidateWithDetailedReport(ctx, content, pdfPath, opts.Query, sections)
	} else {
		result, err = svc.Validate(ctx, content, pdfPath, opts.Query, sections)
	}
	if err != nil {
		return "", nil, err
	}

	report := result.Report
	if report == nil {
		report = map[string]any{}
	}
	report["used_secondary"] = result.UsedSecondary
	report["secondary_provider"] = secondaryName

	return result.Content, report, nil
}
