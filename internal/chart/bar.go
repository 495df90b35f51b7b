package chart

import "github.com/scanview/frontend/internal/model"

const (
	Width  = 300
	Height = 300

	marginTop    = 20
	marginRight  = 20
	marginBottom = 40
	marginLeft   = 40

	bandPadding = 0.3
	tickCount   = 10

	BarFill = "#3b82f6"
)

// Bar is the laid-out category chart: one rect per vulnerability entry over a
// band x-axis and a linear y-axis starting at zero.
type Bar struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Fill   string `json:"fill"`

	// YMax is the rounded upper bound of the y domain.
	YMax float64 `json:"y_max"`

	Bars   []BarRect `json:"bars"`
	XTicks []Tick    `json:"x_ticks"`
	YTicks []Tick    `json:"y_ticks"`

	// Axis placement in SVG coordinates.
	AxisX      float64 `json:"-"`
	AxisY      float64 `json:"-"`
	PlotLeft   float64 `json:"-"`
	PlotRight  float64 `json:"-"`
	PlotTop    float64 `json:"-"`
	PlotBottom float64 `json:"-"`
}

type BarRect struct {
	Label  string  `json:"label"`
	Count  int     `json:"count"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Tick is an axis tick: Pos is its offset along the axis in SVG coordinates.
type Tick struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
	Pos   float64 `json:"pos"`
}

// NewBar lays out vulnerabilities in input order. Each call builds the chart
// from scratch.
func NewBar(vulns []model.VulnerabilityFinding) Bar {
	b := Bar{
		Width:      Width,
		Height:     Height,
		Fill:       BarFill,
		PlotLeft:   marginLeft,
		PlotRight:  Width - marginRight,
		PlotTop:    marginTop,
		PlotBottom: Height - marginBottom,
		AxisX:      marginLeft,
		AxisY:      Height - marginBottom,
	}

	maxCount := 0
	for _, v := range vulns {
		if v.Count > maxCount {
			maxCount = v.Count
		}
	}
	if maxCount > 0 {
		b.YMax = niceStop(float64(maxCount), tickCount)
	} else {
		b.YMax = 1
	}

	for _, t := range ticks(0, b.YMax, tickCount) {
		b.YTicks = append(b.YTicks, Tick{Value: t, Label: Num(t), Pos: b.y(t)})
	}

	x := newBandScale(len(vulns), b.PlotLeft, b.PlotRight, bandPadding)
	for i, v := range vulns {
		left := x.at(i)
		top := b.y(float64(v.Count))
		b.Bars = append(b.Bars, BarRect{
			Label:  v.Type,
			Count:  v.Count,
			X:      left,
			Y:      top,
			Width:  x.bandwidth,
			Height: b.y(0) - top,
		})
		b.XTicks = append(b.XTicks, Tick{
			Value: float64(i),
			Label: v.Type,
			Pos:   left + x.bandwidth/2,
		})
	}
	return b
}

func (b Bar) y(v float64) float64 {
	return b.PlotBottom - v/b.YMax*(b.PlotBottom-b.PlotTop)
}
