package providers

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestRetryingSuccess(t *testing.T) {
	mock := NewMockExtractor()
	mock.PageText = "page one"

	r := WithRetry(mock, slog.Default())

	sections, err := r.ProcessDocument(context.Background(), "doc.pdf", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sections) != 1 || sections[0].Content != "page one" {
		t.Errorf("unexpected sections: %+v", sections)
	}
	if mock.RequestCount() != 1 {
		t.Errorf("expected 1 request, got %d", mock.RequestCount())
	}
}

func TestRetryingRetriesThenFails(t *testing.T) {
	mock := NewMockExtractor()
	mock.ShouldFail = true
	mock.Retries = 2
	mock.RetryDelay = time.Millisecond

	r := WithRetry(mock, slog.Default())

	_, err := r.ProcessDocument(context.Background(), "doc.pdf", "")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "mock extraction failure") {
		t.Errorf("expected underlying failure surfaced, got: %v", err)
	}
	// Initial attempt plus two retries.
	if mock.RequestCount() != 3 {
		t.Errorf("expected 3 attempts, got %d", mock.RequestCount())
	}
}

func TestRetryingRecoversAfterTransientFailure(t *testing.T) {
	// Fails the first two attempts, then succeeds.
	mock := NewMockExtractor()
	mock.Retries = 3
	mock.RetryDelay = time.Millisecond
	mock.FailFirst = 2

	r := WithRetry(mock, slog.Default())

	content, err := r.ExtractPageContent(context.Background(), "doc.pdf", 1, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content != mock.PageText {
		t.Errorf("unexpected content: %q", content)
	}
	if mock.RequestCount() != 3 {
		t.Errorf("expected 3 attempts, got %d", mock.RequestCount())
	}
}

func TestRetryingCancelledContext(t *testing.T) {
	mock := NewMockExtractor()
	mock.ShouldFail = true
	mock.Retries = 10
	mock.RetryDelay = 50 * time.Millisecond

	r := WithRetry(mock, slog.Default())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := r.ProcessDocument(ctx, "doc.pdf", "")
	if err == nil {
		t.Fatal("expected error")
	}
	// Cancellation should stop the retry loop long before 10 backoffs.
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("retry loop ignored cancellation, ran for %s", elapsed)
	}
}

func TestRetryingPassthrough(t *testing.T) {
	mock := NewMockExtractor()
	mock.RPM = 42
	mock.Retries = 7
	mock.RetryDelay = 3 * time.Second

	r := WithRetry(mock, nil)

	if r.Name() != MockName {
		t.Errorf("unexpected name: %s", r.Name())
	}
	if r.RequestsPerMinute() != 42 {
		t.Errorf("unexpected rpm: %d", r.RequestsPerMinute())
	}
	if r.MaxRetries() != 7 {
		t.Errorf("unexpected retries: %d", r.MaxRetries())
	}
	if r.RetryDelayBase() != 3*time.Second {
		t.Errorf("unexpected delay: %s", r.RetryDelayBase())
	}
	if st := r.LimiterStatus(); st.TokensLimit != 42 {
		t.Errorf("limiter sized from provider rpm, got %d", st.TokensLimit)
	}
}
