package endpoints

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/docvet/internal/api"
	"github.com/jackzampolin/docvet/internal/providers"
	"github.com/jackzampolin/docvet/internal/svcctx"
	"github.com/jackzampolin/docvet/internal/workflow"
	"github.com/jackzampolin/docvet/version"
)

// StatusResponse is the detailed service status.
type StatusResponse struct {
	Service    string                   `json:"service"`
	Version    string                   `json:"version"`
	Status     string                   `json:"status"`
	Providers  []string                 `json:"providers"`
	RateLimits map[string]LimiterStatus `json:"rate_limits,omitempty"`
	Validation ValidationStatus         `json:"validation"`
	Features   map[string]any           `json:"features"`
}

// LimiterStatus reports one provider's rate limiter state.
type LimiterStatus struct {
	TokensAvailable int     `json:"tokens_available"`
	TokensLimit     int     `json:"tokens_limit"`
	Utilization     float64 `json:"utilization"`
	TotalConsumed   int64   `json:"total_consumed"`
}

// ValidationStatus reports the active validation configuration.
type ValidationStatus struct {
	Enabled           bool    `json:"enabled"`
	Method            string  `json:"method"`
	Threshold         float64 `json:"threshold"`
	SecondaryProvider string  `json:"secondary_provider"`
}

// StatusEndpoint handles GET /status.
type StatusEndpoint struct{}

var _ api.Endpoint = (*StatusEndpoint)(nil)

func (e *StatusEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/status", e.handler
}

func (e *StatusEndpoint) RequiresInit() bool { return false }

func (e *StatusEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Service: "docvet",
		Version: version.GitRelease,
		Status:  "running",
		Features: map[string]any{
			"workflows": len(workflow.Types),
		},
	}

	if registry := svcctx.RegistryFrom(r.Context()); registry != nil {
		resp.Providers = registry.List()
		resp.Features["providers"] = len(resp.Providers)
		resp.RateLimits = make(map[string]LimiterStatus)
		for _, name := range resp.Providers {
			p, err := registry.Get(name)
			if err != nil {
				continue
			}
			if rt, ok := p.(*providers.Retrying); ok {
				st := rt.LimiterStatus()
				resp.RateLimits[name] = LimiterStatus{
					TokensAvailable: st.TokensAvailable,
					TokensLimit:     st.TokensLimit,
					Utilization:     st.Utilization,
					TotalConsumed:   st.TotalConsumed,
				}
			}
		}
	}

	if cm := svcctx.ConfigManagerFrom(r.Context()); cm != nil {
		v := cm.Get().Validation
		resp.Validation = ValidationStatus{
			Enabled:           v.Enabled,
			Method:            v.Method,
			Threshold:         v.Threshold,
			SecondaryProvider: v.SecondaryProvider,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (e *StatusEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show detailed service status",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp StatusResponse
			if err := client.Get(cmd.Context(), "/status", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
