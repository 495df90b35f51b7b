package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/scanview/frontend/internal/server"
	"github.com/spf13/cobra"
)

var (
	serveHost     string
	servePort     int
	serveDebug    bool
	serveAllowAll bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the scan dashboard",
	Long: `Start the web dashboard.

Every visit to / opens a fresh page with its history loaded from the scan
service. New history entries are pushed to open pages over a websocket.

Examples:
  # Start with default settings (127.0.0.1:8082)
  scanview serve

  # Point at a remote scan service
  scanview serve --scan-service http://scanner.internal:8000

  # Allow external connections
  scanview serve --host 0.0.0.0`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveHost, "host", "H", "", "Listen host (overrides config)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Listen port (overrides config)")
	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Run gin in debug mode")
	serveCmd.Flags().BoolVar(&serveAllowAll, "allow-all-origins", false, "Allow all CORS and websocket origins (development only)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}
	if serveDebug {
		cfg.Debug = true
	}
	if serveAllowAll {
		cfg.Server.AllowedOrigins = []string{"*"}
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating flags: %w", err)
	}

	printBanner()
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	green.Printf("  Dashboard:    http://%s\n", cfg.Addr())
	green.Printf("  Scan service: %s\n", cfg.ScanService.URL)
	if cfg.Server.Host == "0.0.0.0" {
		yellow.Println("  WARNING: the dashboard is reachable from all network interfaces.")
	}
	if serveAllowAll {
		yellow.Println("  WARNING: all origins are allowed.")
	}
	fmt.Println()

	log := newLogger()
	srv, err := server.New(cfg, newClient(cfg, log), log)
	if err != nil {
		return err
	}
	return srv.Run(cmd.Context())
}
