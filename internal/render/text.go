package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/scanview/frontend/internal/model"
)

const textBarWidth = 30

var riskColors = map[model.RiskLevel]*color.Color{
	model.RiskLow:    color.New(color.FgGreen, color.Bold),
	model.RiskMedium: color.New(color.FgYellow, color.Bold),
	model.RiskHigh:   color.New(color.FgRed, color.Bold),
}

// WriteText writes vs for a terminal: risk, tips, vulnerabilities and the
// category counts as horizontal bars scaled to the chart's y bound.
func WriteText(w io.Writer, vs ViewState) error {
	if !vs.Rendered {
		_, err := fmt.Fprintln(w, "No scan results.")
		return err
	}

	cyan := color.New(color.FgCyan, color.Bold)
	gray := color.New(color.FgHiBlack)
	white := color.New(color.FgWhite, color.Bold)

	ew := &errWriter{w: w}

	cyan.Fprintf(ew, "\n  %s\n", vs.URL)
	if c, ok := riskColors[vs.RiskLevel]; ok {
		c.Fprintf(ew, "  %s\n\n", vs.RiskText)
	} else {
		fmt.Fprintf(ew, "  %s\n\n", vs.RiskText)
	}

	white.Fprintln(ew, "  Tips")
	if len(vs.Tips) == 0 {
		gray.Fprintln(ew, "    none")
	}
	for _, tip := range vs.Tips {
		fmt.Fprintf(ew, "    - %s\n", tip)
	}
	fmt.Fprintln(ew)

	white.Fprintf(ew, "  %s\n", VulnerabilitiesHead)
	if len(vs.Vulnerabilities) == 0 {
		gray.Fprintln(ew, "    none")
	}
	for _, v := range vs.Vulnerabilities {
		fmt.Fprintf(ew, "    - ")
		white.Fprint(ew, v.Type)
		if v.Details != "" {
			fmt.Fprintf(ew, ": %s", v.Details)
		}
		fmt.Fprintln(ew)
	}

	if len(vs.BarChart.Bars) > 0 {
		fmt.Fprintln(ew)
		labelWidth := 0
		for _, b := range vs.BarChart.Bars {
			labelWidth = max(labelWidth, len(b.Label))
		}
		blue := color.New(color.FgBlue)
		for _, b := range vs.BarChart.Bars {
			n := int(float64(b.Count) / vs.BarChart.YMax * textBarWidth)
			fmt.Fprintf(ew, "    %-*s ", labelWidth, b.Label)
			blue.Fprint(ew, strings.Repeat("█", n))
			gray.Fprintf(ew, " %d\n", b.Count)
		}
	}
	fmt.Fprintln(ew)
	return ew.err
}

// errWriter keeps the first write error so WriteText can report it once.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}
