package endpoints

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/docvet/internal/api"
	"github.com/jackzampolin/docvet/internal/extract"
	"github.com/jackzampolin/docvet/internal/providers"
	"github.com/jackzampolin/docvet/internal/svcctx"
	"github.com/jackzampolin/docvet/internal/validation"
	"github.com/jackzampolin/docvet/internal/workflow"
)

const multipartMaxMemory = 32 << 20

// ExtractJSONEndpoint handles POST /extract-json with a multipart PDF upload.
type ExtractJSONEndpoint struct{}

var _ api.Endpoint = (*ExtractJSONEndpoint)(nil)

func (e *ExtractJSONEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/extract-json", e.handler
}

func (e *ExtractJSONEndpoint) RequiresInit() bool { return true }

func (e *ExtractJSONEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	pdfPath, cleanup, ok := saveUploadedPDF(w, r)
	if !ok {
		return
	}
	defer cleanup()

	opts := optionsFromForm(r)
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

func (e *ExtractJSONEndpoint) Command(getServerURL func() string) *cobra.Command {
	var (
		query    string
		wf       string
		validate string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "extract <pdf-file>",
		Short: "Extract content from a PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())

			fields := map[string]string{
				"query":             query,
				"workflow":          wf,
				"enable_validation": validate,
			}
			if detailed {
				fields["detailed_report"] = "true"
			}

			var resp ExtractionResponse
			if err := client.PostFile(cmd.Context(), "/extract-json", args[0], fields, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "extraction query for context and routing")
	cmd.Flags().StringVarP(&wf, "workflow", "w", "", "explicit workflow (mistral, text_extraction, ocr_images, gemini)")
	cmd.Flags().StringVar(&validate, "validate", "", "override validation toggle (true/false)")
	cmd.Flags().BoolVar(&detailed, "detailed-report", false, "include the full similarity breakdown when validation swaps content")
	return cmd
}

// saveUploadedPDF enforces the upload size limit, validates the file is a
// readable PDF, and persists it to a temp path. The returned cleanup must
// run after extraction completes. On failure the error response is already
// written and ok is false.
func saveUploadedPDF(w http.ResponseWriter, r *http.Request) (string, func(), bool) {
	maxBytes := int64(50 << 20)
	if cm := svcctx.ConfigManagerFrom(r.Context()); cm != nil {
		maxBytes = cm.Get().MaxFileSizeBytes()
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(multipartMaxMemory); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse form: %v", err))
		return "", nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file uploaded")
		return "", nil, false
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("file %s is not a PDF", header.Filename))
		return "", nil, false
	}

	tempDir, err := os.MkdirTemp("", "docvet-upload-*")
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to create temp dir: %v", err))
		return "", nil, false
	}
	cleanup := func() {
		os.RemoveAll(tempDir)
		if r.MultipartForm != nil {
			r.MultipartForm.RemoveAll()
		}
	}

	destPath := filepath.Join(tempDir, filepath.Base(header.Filename))
	dst, err := os.Create(destPath)
	if err != nil {
		cleanup()
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to create file: %v", err))
		return "", nil, false
	}
	_, err = io.Copy(dst, file)
	dst.Close()
	if err != nil {
		cleanup()
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to save file: %v", err))
		return "", nil, false
	}

	if _, err := providers.ValidatePDF(destPath); err != nil {
		cleanup()
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid PDF upload: %v", err))
		return "", nil, false
	}

	return destPath, cleanup, true
}

// optionsFromForm reads workflow options from multipart form fields.
func optionsFromForm(r *http.Request) workflow.Options {
	opts := workflow.Options{
		Query:          r.FormValue("query"),
		Workflow:       r.FormValue("workflow"),
		DetailedReport: r.FormValue("detailed_report") == "true",
	}
	// Absent means "use the configured default"; only an explicit value
	// overrides.
	switch r.FormValue("enable_validation") {
	case "true":
		on := true
		opts.EnableValidation = &on
	case "false":
		off := false
		opts.EnableValidation = &off
	}
	return opts
}

// runExtraction executes the workflow and maps failures to HTTP statuses.
// On failure the error response is already written and ok is false.
func runExtraction(w http.ResponseWriter, r *http.Request, pdfPath string, opts workflow.Options) (*extract.Result, bool) {
	orchestrator := svcctx.OrchestratorFrom(r.Context())
	if orchestrator == nil {
		writeError(w, http.StatusServiceUnavailable, "orchestrator not initialized")
		return nil, false
	}

	result, err := orchestrator.Execute(r.Context(), pdfPath, opts)
	if err != nil {
		if strings.Contains(err.Error(), "unknown workflow type") {
			writeError(w, http.StatusBadRequest, err.Error())
			return nil, false
		}
		if logger := svcctx.LoggerFrom(r.Context()); logger != nil {
			logger.Error("extraction failed", "error", err, "pdf", pdfPath)
		}
		var secErr *validation.SecondaryExtractionError
		if errors.As(err, &secErr) {
			writeError(w, http.StatusBadGateway, fmt.Sprintf("extraction failed: %v", err))
			return nil, false
		}
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("extraction failed: %v", err))
		return nil, false
	}
	return result, true
}
