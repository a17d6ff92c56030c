package providers

import (
	"context"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/jackzampolin/docvet/internal/extract"
)

// Retrying wraps an Extractor with token-bucket rate limiting and
// exponential-backoff retries. The wrapped provider's own properties
// decide the limits, so every provider built through the registry gets
// uniform treatment.
type Retrying struct {
	inner   Extractor
	limiter *RateLimiter
	logger  *slog.Logger
}

// WithRetry wraps e with rate limiting and retries.
func WithRetry(e Extractor, logger *slog.Logger) *Retrying {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retrying{
		inner:   e,
		limiter: NewRateLimiter(e.RequestsPerMinute()),
		logger:  logger.With("provider", e.Name()),
	}
}

// Name returns the wrapped provider's identifier.
func (r *Retrying) Name() string { return r.inner.Name() }

// RequestsPerMinute returns the wrapped provider's rate limit.
func (r *Retrying) RequestsPerMinute() int { return r.inner.RequestsPerMinute() }

// MaxRetries returns the wrapped provider's retry budget.
func (r *Retrying) MaxRetries() int { return r.inner.MaxRetries() }

// RetryDelayBase returns the wrapped provider's base backoff delay.
func (r *Retrying) RetryDelayBase() time.Duration { return r.inner.RetryDelayBase() }

// LimiterStatus exposes the limiter state for the status endpoint.
func (r *Retrying) LimiterStatus() RateLimiterStatus { return r.limiter.Status() }

// ProcessDocument runs the wrapped extraction under the rate limiter,
// retrying transient failures with exponential backoff.
func (r *Retrying) ProcessDocument(ctx context.Context, pdfPath string, query string) ([]extract.Section, error) {
	var sections []extract.Section
	err := retry.Do(
		func() error {
			if err := r.limiter.Wait(ctx); err != nil {
				return retry.Unrecoverable(err)
			}
			var err error
			sections, err = r.inner.ProcessDocument(ctx, pdfPath, query)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(uint(r.inner.MaxRetries()+1)),
		retry.Delay(r.inner.RetryDelayBase()),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			r.logger.Warn("retrying document extraction", "attempt", n+1, "error", err)
		}),
	)
	return sections, err
}

// ExtractPageContent runs single-page extraction under the same policy.
func (r *Retrying) ExtractPageContent(ctx context.Context, pdfPath string, pageNum int, query string) (string, error) {
	var content string
	err := retry.Do(
		func() error {
			if err := r.limiter.Wait(ctx); err != nil {
				return retry.Unrecoverable(err)
			}
			var err error
			content, err = r.inner.ExtractPageContent(ctx, pdfPath, pageNum, query)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(uint(r.inner.MaxRetries()+1)),
		retry.Delay(r.inner.RetryDelayBase()),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	return content, err
}

// HealthCheck is passed through without retries; health probes should see
// real failures immediately.
func (r *Retrying) HealthCheck(ctx context.Context) error {
	return r.inner.HealthCheck(ctx)
}

func timeoutFromSeconds(sec int) time.Duration {
	if sec <= 0 {
		return 0
	}
	return time.Duration(sec) * time.Second
}
