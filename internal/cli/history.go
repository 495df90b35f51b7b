package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/scanview/frontend/internal/history"
	"github.com/scanview/frontend/internal/model"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past scans, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var historyColors = map[model.RiskLevel]*color.Color{
	model.RiskLow:    color.New(color.FgGreen),
	model.RiskMedium: color.New(color.FgYellow),
	model.RiskHigh:   color.New(color.FgRed),
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	results, err := newClient(cfg, newLogger()).History(cmd.Context())
	if err != nil {
		return err
	}

	log := history.New()
	log.Preload(results)

	out := cmd.OutOrStdout()
	if log.Len() == 0 {
		fmt.Fprintln(out, "No scans yet.")
		return nil
	}
	for _, e := range log.Entries() {
		c, ok := historyColors[e.RiskLevel]
		if !ok {
			c = color.New(color.Reset)
		}
		fmt.Fprintf(out, "  %-50s ", e.URL)
		c.Fprintf(out, "Risk: %s\n", e.RiskLevel)
	}
	return nil
}
