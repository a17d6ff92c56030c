package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/docvet/internal/api"
	"github.com/jackzampolin/docvet/version"
)

var (
	cfgFile      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "docvet",
	Short: "PDF extraction gateway with cross-provider validation",
	Long: `Docvet is an HTTP gateway that extracts structured content from PDF
documents using multiple extraction providers.

Queries are routed to a workflow based on their wording, and every result
can be cross-checked against a second provider:
  - Keyword-based workflow routing (text extraction, OCR, Gemini)
  - Per-provider rate limiting with retry and backoff
  - Quality heuristics that catch truncated or garbled extractions
  - Similarity scoring between primary and secondary results`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.docvet/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}
