// Package validation implements quality validation for extracted document
// content: per-page problem detection, multi-method similarity scoring
// between two independently produced extractions, and the decision policy
// that picks which extraction to trust.
package validation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackzampolin/docvet/internal/extract"
)

// Decision reasons recorded in validation reports.
const (
	ReasonQualityIssues = "quality_issues"
	ReasonLowSimilarity = "low_similarity"
)

// DefaultThreshold is the minimum similarity score below which the
// secondary extraction is preferred over the primary.
const DefaultThreshold = 0.85

// SecondaryExtractor is the single capability the validation service needs
// from a provider: produce an independent extraction of the same document.
// Any provider satisfying this method may be injected.
type SecondaryExtractor interface {
	ProcessDocument(ctx context.Context, pdfPath string, query string) ([]extract.Section, error)
}

// SecondaryExtractionError wraps a failure of the injected secondary
// extractor. It propagates uncaught: validation without a comparison
// baseline has no well-defined outcome, so silently trusting the primary
// is never the default. The orchestration layer decides the fallback policy.
type SecondaryExtractionError struct {
	Err error
}

func (e *SecondaryExtractionError) Error() string {
	return fmt.Sprintf("secondary extraction failed: %v", e.Err)
}

func (e *SecondaryExtractionError) Unwrap() error { return e.Err }

// Result is the outcome of one validation call.
type Result struct {
	// Content is the winning text, either primary or secondary.
	Content string `json:"content"`
	// UsedSecondary is true whenever the report reason is quality_issues
	// or low_similarity; false only when similarity met the threshold and
	// no page-level problems were found.
	UsedSecondary bool `json:"used_secondary"`
	// Report holds the structured decision details.
	Report map[string]any `json:"report"`
}

// ServiceConfig configures a validation Service.
type ServiceConfig struct {
	// Secondary produces the comparison extraction. Required.
	Secondary SecondaryExtractor
	// Method selects the similarity method, case-insensitively
	// (default: number_frequency).
	Method string
	// Threshold is the minimum acceptable similarity. Zero means unset and
	// falls back to DefaultThreshold; an always-accept policy is expressed
	// by disabling validation, not by a zero threshold.
	Threshold float64
	// Logger for validation progress. Defaults to slog.Default().
	Logger *slog.Logger
}

// Service runs the two-stage validation pass: problem detection over the
// primary extraction's pages, then similarity scoring against a secondary
// extraction when no page problems short-circuit the decision.
type Service struct {
	secondary SecondaryExtractor
	method    string
	threshold float64

	detector   *Detector
	calculator *Calculator
	logger     *slog.Logger
}

// NewService creates a validation service. The similarity method is
// checked up front so a misconfigured method fails at construction, not
// mid-request.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Secondary == nil {
		return nil, fmt.Errorf("validation: secondary extractor is required")
	}
	if cfg.Method == "" {
		cfg.Method = MethodNumberFrequency
	}
	if !KnownMethod(cfg.Method) {
		return nil, &UnknownMethodError{Method: cfg.Method}
	}
	// Canonical lowercase form so reports always carry the same name.
	cfg.Method = strings.ToLower(cfg.Method)
	if cfg.Threshold == 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Service{
		secondary:  cfg.Secondary,
		method:     cfg.Method,
		threshold:  cfg.Threshold,
		detector:   NewDetector(cfg.Logger),
		calculator: NewCalculator(cfg.Logger),
		logger:     cfg.Logger,
	}, nil
}

// Validate judges the primary extraction's quality.
//
//  1. If per-page sections are supplied and problem detection flags any
//     page, the secondary extraction is fetched and trusted outright.
//  2. Otherwise the secondary extraction is fetched as a comparison
//     baseline and the configured similarity method decides.
//  3. Below-threshold similarity selects the secondary content; otherwise
//     the primary stands.
func (s *Service) Validate(ctx context.Context, primaryContent, pdfPath, query string, sections []extract.Section) (*Result, error) {
	start := time.Now()
	s.logger.Info("starting validation", "pdf", pdfPath, "sections", len(sections))

	if len(sections) > 0 {
		report := s.detector.DetectBatch(sections)
		if len(report) > 0 {
			types := report.ProblemTypes()
			s.logger.Warn("quality problems detected, using secondary extraction",
				"pages", len(report), "problem_types", types)

			secondaryContent, err := s.extractWithSecondary(ctx, pdfPath, query)
			if err != nil {
				return nil, err
			}

			return &Result{
				Content:       secondaryContent,
				UsedSecondary: true,
				Report: map[string]any{
					"problems_by_page":        report,
					"problem_count":           len(report),
					"problem_types":           types,
					"reason":                  ReasonQualityIssues,
					"validation_time_seconds": time.Since(start).Seconds(),
				},
			}, nil
		}
	}

	s.logger.Info("no quality problems detected, performing similarity check")

	secondaryContent, err := s.extractWithSecondary(ctx, pdfPath, query)
	if err != nil {
		return nil, err
	}

	similarity, err := s.calculator.Similarity(primaryContent, secondaryContent, s.method)
	if err != nil {
		return nil, err
	}

	s.logger.Info("similarity computed",
		"score", similarity, "threshold", s.threshold, "method", s.method)

	if similarity < s.threshold {
		s.logger.Warn("similarity below threshold, using secondary extraction",
			"score", similarity, "threshold", s.threshold)
		return &Result{
			Content:       secondaryContent,
			UsedSecondary: true,
			Report: map[string]any{
				"similarity":              similarity,
				"threshold":               s.threshold,
				"method":                  s.method,
				"reason":                  ReasonLowSimilarity,
				"validation_time_seconds": time.Since(start).Seconds(),
			},
		}, nil
	}

	return &Result{
		Content:       primaryContent,
		UsedSecondary: false,
		Report: map[string]any{
			"similarity":              similarity,
			"threshold":               s.threshold,
			"method":                  s.method,
			"validation_time_seconds": time.Since(start).Seconds(),
		},
	}, nil
}

// ValidateWithDetailedReport is Validate plus a full four-method similarity
// report under the detailed_similarity key whenever the secondary
// extraction was chosen on similarity grounds.
func (s *Service) ValidateWithDetailedReport(ctx context.Context, primaryContent, pdfPath, query string, sections []extract.Section) (*Result, error) {
	result, err := s.Validate(ctx, primaryContent, pdfPath, query, sections)
	if err != nil {
		return nil, err
	}

	if result.UsedSecondary {
		if _, ok := result.Report["similarity"]; ok {
			s.logger.Info("generating detailed similarity report")
			result.Report["detailed_similarity"] = s.calculator.Report(primaryContent, result.Content)
		}
	}
	return result, nil
}

// extractWithSecondary runs the injected secondary extractor and joins the
// returned sections with the page separator.
func (s *Service) extractWithSecondary(ctx context.Context, pdfPath string, query string) (string, error) {
	sections, err := s.secondary.ProcessDocument(ctx, pdfPath, query)
	if err != nil {
		s.logger.Error("secondary extraction failed", "error", err)
		return "", &SecondaryExtractionError{Err: err}
	}

	content := extract.JoinSections(sections)
	s.logger.Info("secondary extraction complete",
		"chars", len(content), "pages", len(sections))
	return content, nil
}
