package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/scanview/frontend/internal/render"
	"github.com/scanview/frontend/web"
	"github.com/spf13/cobra"
)

var scanHTML string

var scanCmd = &cobra.Command{
	Use:   "scan <url>",
	Short: "Scan a URL and print the result",
	Long: `Submit a URL to the scan service and print the risk level, tips and
vulnerabilities. With --html a standalone report with both charts is written.

Examples:
  scanview scan https://example.com
  scanview scan https://example.com --html report.html`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanHTML, "html", "", "Write an HTML report to this file")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client := newClient(cfg, newLogger())
	result, err := client.Scan(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	vs := render.Render(result)
	if err := render.WriteText(cmd.OutOrStdout(), vs); err != nil {
		return err
	}

	if scanHTML != "" {
		if err := writeReport(scanHTML, vs, time.Now()); err != nil {
			return err
		}
		color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "\n  Report written to %s\n", scanHTML)
	}
	return nil
}

// reportData is the data of the "report" template.
type reportData struct {
	View        render.ViewState
	GeneratedAt time.Time
}

func writeReport(path string, vs render.ViewState, at time.Time) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}
	if err := executeReport(f, vs, at); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func executeReport(w io.Writer, vs render.ViewState, at time.Time) error {
	tmpl, err := web.Parse()
	if err != nil {
		return err
	}
	if err := tmpl.ExecuteTemplate(w, "report", reportData{View: vs, GeneratedAt: at}); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	return nil
}
