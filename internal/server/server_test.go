package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/jackzampolin/docvet/internal/config"
	"github.com/jackzampolin/docvet/internal/providers"
)

// newTestManager loads a config with every provider disabled so the
// registry starts empty and no client construction runs.
func newTestManager(t *testing.T) *config.Manager {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	cfgYAML := `providers:
  mistral:
    enabled: false
  openai:
    enabled: false
  gemini:
    enabled: false
  pdftext:
    enabled: false
server:
  host: 127.0.0.1
  port: 0
`
	if err := os.WriteFile(cfgPath, []byte(cfgYAML), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cm, err := config.NewManager(cfgPath)
	if err != nil {
		t.Fatalf("failed to create config manager: %v", err)
	}
	return cm
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	s, err := New(Config{
		ConfigManager: newTestManager(t),
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return s
}

func TestNewRequiresConfigManager(t *testing.T) {
	_, err := New(Config{})
	if err == nil {
		t.Fatal("expected error without config manager")
	}
	if !strings.Contains(err.Error(), "config manager") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestServerRoutes(t *testing.T) {
	s := newTestServer(t)
	handler := s.Handler()

	t.Run("health responds without providers", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var resp map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp["status"] != "healthy" {
			t.Errorf("expected healthy, got %v", resp["status"])
		}
	})

	t.Run("workflows listed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/workflows", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "text_extraction") {
			t.Errorf("expected workflow listing, got %s", rec.Body.String())
		}
	})

	t.Run("extract rejected without providers", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/extract-json", nil))

		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503 with empty registry, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "no extraction providers") {
			t.Errorf("unexpected body: %s", rec.Body.String())
		}
	})

	t.Run("extract passes middleware once a provider exists", func(t *testing.T) {
		s.Registry().Register(providers.MockName, providers.NewMockExtractor())
		defer s.Registry().Unregister(providers.MockName)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/extract-json", nil))

		// No multipart body, so the handler itself rejects the request.
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 from handler, got %d", rec.Code)
		}
	})

	t.Run("wrong method", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/extract-json", nil))

		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405, got %d", rec.Code)
		}
	})
}

func TestServerLifecycle(t *testing.T) {
	s := newTestServer(t)

	if s.IsRunning() {
		t.Fatal("server should not be running before Start")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Start(ctx)
	}()

	// Wait for the listener to come up.
	deadline := time.After(5 * time.Second)
	for !s.IsRunning() {
		select {
		case <-deadline:
			t.Fatal("server did not start in time")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Start returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down in time")
	}

	if s.IsRunning() {
		t.Error("server still marked running after shutdown")
	}
}

func TestServerConfigDefaults(t *testing.T) {
	s := newTestServer(t)
	if s.Addr() != "127.0.0.1:0" {
		t.Errorf("expected addr from config, got %q", s.Addr())
	}
}
