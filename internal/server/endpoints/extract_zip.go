package endpoints

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/docvet/internal/api"
	"github.com/jackzampolin/docvet/internal/extract"
	"github.com/jackzampolin/docvet/internal/svcctx"
)

// ExtractZipEndpoint handles POST /extract-zip. The extraction result is
// packaged as a ZIP archive of markdown and JSON files.
type ExtractZipEndpoint struct{}

var _ api.Endpoint = (*ExtractZipEndpoint)(nil)

func (e *ExtractZipEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/extract-zip", e.handler
}

func (e *ExtractZipEndpoint) RequiresInit() bool { return true }

func (e *ExtractZipEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	pdfPath, cleanup, ok := saveUploadedPDF(w, r)
	if !ok {
		return
	}
	defer cleanup()

	opts := optionsFromForm(r)
	includeSections := r.FormValue("include_sections") != "false"

	result, ok := runExtraction(w, r, pdfPath, opts)
	if !ok {
		return
	}

	filename := "extraction.zip"
	if _, header, err := r.FormFile("file"); err == nil {
		filename = strings.TrimSuffix(header.Filename, ".pdf") + ".zip"
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)

	if err := writeResultArchive(w, result, includeSections); err != nil {
		// Headers are gone; all we can do is log.
		if logger := svcctx.LoggerFrom(r.Context()); logger != nil {
			logger.Error("failed to stream zip archive", "error", err)
		}
	}
}

// writeResultArchive streams the extraction result as a ZIP archive:
// full_content.md, metadata.json, optional validation_report.json, and
// one markdown file per page when sections are included.
func writeResultArchive(w http.ResponseWriter, result *extract.Result, includeSections bool) error {
	zw := zip.NewWriter(w)

	if err := addZipFile(zw, "full_content.md", []byte(result.Content)); err != nil {
		return err
	}

	meta, err := json.MarshalIndent(result.Metadata, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := addZipFile(zw, "metadata.json", meta); err != nil {
		return err
	}

	if result.ValidationReport != nil {
		report, err := json.MarshalIndent(result.ValidationReport, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal validation report: %w", err)
		}
		if err := addZipFile(zw, "validation_report.json", report); err != nil {
			return err
		}
	}

	if includeSections {
		for _, section := range result.Sections {
			name := fmt.Sprintf("pages/page_%03d.md", section.PageNumber)
			if err := addZipFile(zw, name, []byte(section.Content)); err != nil {
				return err
			}
		}
	}

	return zw.Close()
}

func addZipFile(zw *zip.Writer, name string, content []byte) error {
	f, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create %s in archive: %w", name, err)
	}
	if _, err := f.Write(content); err != nil {
		return fmt.Errorf("failed to write %s to archive: %w", name, err)
	}
	return nil
}

func (e *ExtractZipEndpoint) Command(_ func() string) *cobra.Command {
	// Binary download; no CLI form. Use the extract command for JSON output.
	return nil
}
