// Package endpoints implements the HTTP API surface. Each endpoint couples
// its route handler with the CLI command that calls it.
package endpoints

import (
	"encoding/json"
	"net/http"

	"github.com/jackzampolin/docvet/internal/api"
	"github.com/jackzampolin/docvet/internal/extract"
)

// ExtractionResponse is the JSON payload for successful extractions.
type ExtractionResponse struct {
	Status           string            `json:"status"`
	Content          string            `json:"content"`
	Metadata         map[string]any    `json:"metadata"`
	ValidationReport map[string]any    `json:"validation_report,omitempty"`
	Sections         []extract.Section `json:"sections,omitempty"`
}

// ErrorResponse is the JSON payload for failed requests.
type ErrorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// All returns every endpoint served by the gateway.
func All() []api.Endpoint {
	return []api.Endpoint{
		&HealthEndpoint{},
		&WorkflowsEndpoint{},
		&StatusEndpoint{},
		&ExtractJSONEndpoint{},
		&ExtractZipEndpoint{},
		&ExtractBase64Endpoint{},
	}
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Status: "error", Error: msg})
}
