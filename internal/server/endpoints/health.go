package endpoints

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/docvet/internal/api"
	"github.com/jackzampolin/docvet/internal/svcctx"
	"github.com/jackzampolin/docvet/version"
)

// HealthResponse is the response for the health check endpoint.
type HealthResponse struct {
	Status  string                    `json:"status"`
	Version string                    `json:"version"`
	Clients map[string]map[string]any `json:"clients"`
}

// HealthEndpoint handles GET /health. It probes every registered provider
// and reports degraded when any probe fails.
type HealthEndpoint struct{}

var _ api.Endpoint = (*HealthEndpoint)(nil)

func (e *HealthEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/health", e.handler
}

func (e *HealthEndpoint) RequiresInit() bool { return false }

func (e *HealthEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "healthy",
		Version: version.GitRelease,
		Clients: make(map[string]map[string]any),
	}

	registry := svcctx.RegistryFrom(r.Context())
	if registry == nil {
		resp.Status = "unhealthy"
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	// Bounded per-probe budget so one dead provider cannot hang the check.
	for _, name := range registry.List() {
		provider, err := registry.Get(name)
		if err != nil {
			continue
		}

		status := map[string]any{"status": "ok"}
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		if err := provider.HealthCheck(ctx); err != nil {
			status["status"] = "error"
			status["message"] = err.Error()
			resp.Status = "degraded"
		}
		cancel()
		resp.Clients[name] = status
	}

	writeJSON(w, http.StatusOK, resp)
}

func (e *HealthEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server and provider health",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp HealthResponse
			if err := client.Get(cmd.Context(), "/health", &resp); err != nil {
				return err
			}
			fmt.Printf("Status:  %s\n", resp.Status)
			fmt.Printf("Version: %s\n", resp.Version)
			for name, st := range resp.Clients {
				fmt.Printf("  %s: %v\n", name, st["status"])
			}
			return nil
		},
	}
}
