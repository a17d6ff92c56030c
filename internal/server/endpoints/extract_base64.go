package endpoints

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/docvet/internal/api"
	"github.com/jackzampolin/docvet/internal/providers"
	"github.com/jackzampolin/docvet/internal/svcctx"
	"github.com/jackzampolin/docvet/internal/workflow"
)

// Base64ExtractionRequest is the JSON body for base64 PDF extraction.
type Base64ExtractionRequest struct {
	PDFContent       string `json:"pdf_content"`
	Filename         string `json:"filename,omitempty"`
	Query            string `json:"query,omitempty"`
	EnableValidation *bool  `json:"enable_validation,omitempty"`
	Workflow         string `json:"workflow,omitempty"`
	DetailedReport   bool   `json:"detailed_report,omitempty"`
}

// ExtractBase64Endpoint handles POST /extract-base64-json for callers that
// cannot do multipart uploads.
type ExtractBase64Endpoint struct{}

var _ api.Endpoint = (*ExtractBase64Endpoint)(nil)

func (e *ExtractBase64Endpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/extract-base64-json", e.handler
}

func (e *ExtractBase64Endpoint) RequiresInit() bool { return true }

func (e *ExtractBase64Endpoint) handler(w http.ResponseWriter, r *http.Request) {
	maxBytes := int64(50 << 20)
	if cm := svcctx.ConfigManagerFrom(r.Context()); cm != nil {
		maxBytes = cm.Get().MaxFileSizeBytes()
	}
	// Base64 inflates the payload by a third.
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+maxBytes/3)

	var req Base64ExtractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if req.PDFContent == "" {
		writeError(w, http.StatusBadRequest, "pdf_content is required")
		return
	}

	raw, err := base64.StdEncoding.DecodeString(req.PDFContent)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid base64 content: %v", err))
		return
	}

	tempDir, err := os.MkdirTemp("", "docvet-upload-*")
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to create temp dir: %v", err))
		return
	}
	defer os.RemoveAll(tempDir)

	filename := req.Filename
	if filename == "" {
		filename = "document.pdf"
	}
	pdfPath := filepath.Join(tempDir, filepath.Base(filename))
	if err := os.WriteFile(pdfPath, raw, 0o600); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to save file: %v", err))
		return
	}

	if _, err := providers.ValidatePDF(pdfPath); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid PDF upload: %v", err))
		return
	}

	opts := workflow.Options{
		Query:            req.Query,
		Workflow:         req.Workflow,
		EnableValidation: req.EnableValidation,
		DetailedReport:   req.DetailedReport,
	}

	result, ok := runExtraction(w, r, pdfPath, opts)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, ExtractionResponse{
		Status:           "success",
		Content:          result.Content,
		Metadata:         result.Metadata,
		ValidationReport: result.ValidationReport,
		Sections:         result.Sections,
	})
}

func (e *ExtractBase64Endpoint) Command(_ func() string) *cobra.Command {
	// The multipart extract command covers the CLI use case.
	return nil
}
