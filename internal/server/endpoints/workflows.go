package endpoints

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/docvet/internal/api"
	"github.com/jackzampolin/docvet/internal/workflow"
)

// WorkflowListResponse lists available extraction workflows.
type WorkflowListResponse struct {
	Workflows map[string]string `json:"workflows"`
}

// WorkflowsEndpoint handles GET /workflows.
type WorkflowsEndpoint struct{}

var _ api.Endpoint = (*WorkflowsEndpoint)(nil)

func (e *WorkflowsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/workflows", e.handler
}

func (e *WorkflowsEndpoint) RequiresInit() bool { return false }

func (e *WorkflowsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, WorkflowListResponse{Workflows: workflow.ListWorkflows()})
}

func (e *WorkflowsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "workflows",
		Short: "List available extraction workflows",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp WorkflowListResponse
			if err := client.Get(cmd.Context(), "/workflows", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
