package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/docvet/internal/config"
	"github.com/jackzampolin/docvet/internal/server"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the docvet server",
	Long: `Start the docvet HTTP server.

Providers are built from the configuration file and rebuilt on the fly
when the file changes.

The server provides:
  - /extract-json         - Extract PDF content as JSON
  - /extract-zip          - Extract PDF content as a ZIP archive
  - /extract-base64-json  - Extract from a base64-encoded PDF
  - /health               - Server and provider health
  - /workflows            - Available extraction workflows
  - /status               - Detailed service status

Examples:
  docvet serve                   # Start on the configured address
  docvet serve --port 3000       # Start on a custom port
  docvet serve --host 127.0.0.1  # Bind to loopback only`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// Set up logger
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))

		cm, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cm.WatchConfig()

		// Create server
		srv, err := server.New(server.Config{
			Host:          serveHost,
			Port:          servePort,
			ConfigManager: cm,
			Logger:        logger,
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (overrides config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")

	rootCmd.AddCommand(serveCmd)
}
