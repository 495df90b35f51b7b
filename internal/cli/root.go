package cli

import (
	"context"
	"fmt"
	"log/slog"

	logger "github.com/Easy-Infra-Ltd/easy-logger"
	"github.com/fatih/color"
	"github.com/scanview/frontend/internal/config"
	"github.com/scanview/frontend/internal/scanclient"
	"github.com/scanview/frontend/internal/version"
	"github.com/spf13/cobra"
)

var (
	configPath     string
	scanServiceURL string

	rootCmd = &cobra.Command{
		Use:   "scanview",
		Short: "Web dashboard for a website vulnerability scan service",
		Long: `scanview - front end for a website vulnerability scan service.

It submits URLs to the scan service, shows the risk level, tips and
vulnerability findings with a bar chart and a risk pie chart, and keeps a
per-page history of past scans.

Run "scanview serve" for the dashboard, or "scanview scan <url>" for a
one-shot scan in the terminal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Version,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "f", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&scanServiceURL, "scan-service", "", "Scan service base URL (overrides config)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the command line. ctx is cancelled on interrupt.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func printBanner() {
	cyan := color.New(color.FgCyan, color.Bold)
	cyan.Println("\n┌─────────────────────────────────────────┐")
	cyan.Println("│        SCANVIEW SCAN DASHBOARD          │")
	cyan.Println("└─────────────────────────────────────────┘")
	fmt.Println()
}

// loadConfig reads the config file and environment, then applies the
// persistent flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if scanServiceURL != "" {
		cfg.ScanService.URL = scanServiceURL
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("validating flags: %w", err)
		}
	}
	return cfg, nil
}

func newLogger() *slog.Logger {
	return logger.CreateLoggerFromEnv(nil, "blue").With("process", "scanview")
}

func newClient(cfg *config.Config, log *slog.Logger) *scanclient.Client {
	return scanclient.New(cfg.ScanService.URL, cfg.ScanService.Timeout, log)
}
