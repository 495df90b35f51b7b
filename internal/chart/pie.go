package chart

import (
	"fmt"
	"math"
	"sort"

	"github.com/scanview/frontend/internal/model"
)

// Epsilon is the weight given to levels that are not the scan's level, so they
// stay visible as thin reference slices.
const Epsilon = 0.01

const Radius = Width / 2

var levelColors = map[model.RiskLevel]string{
	model.RiskLow:    "#22c55e",
	model.RiskMedium: "#facc15",
	model.RiskHigh:   "#ef4444",
}

// LevelColor returns the fill used for a risk level, or "" for unknown levels.
func LevelColor(level model.RiskLevel) string {
	return levelColors[level]
}

// Pie highlights a single risk level: it is drawn as a near-full circle with
// the other two levels as slivers.
type Pie struct {
	Width  int             `json:"width"`
	Height int             `json:"height"`
	Radius float64         `json:"radius"`
	Level  model.RiskLevel `json:"level"`
	Slices []Slice         `json:"slices"`
}

// Slice angles are in radians, clockwise from 12 o'clock.
type Slice struct {
	Level      model.RiskLevel `json:"level"`
	Label      string          `json:"label"`
	Weight     float64         `json:"weight"`
	StartAngle float64         `json:"start_angle"`
	EndAngle   float64         `json:"end_angle"`
	Color      string          `json:"color"`
	Path       string          `json:"path"`
}

// NewPie builds the three slices in Low, Medium, High order. An unknown level
// highlights nothing and all slices get Epsilon.
func NewPie(level model.RiskLevel) Pie {
	p := Pie{Width: Width, Height: Height, Radius: Radius, Level: level}

	total := 0.0
	for _, l := range model.RiskLevels {
		w := Epsilon
		if l == level {
			w = 1
		}
		total += w
		p.Slices = append(p.Slices, Slice{
			Level:  l,
			Label:  string(l),
			Weight: w,
			Color:  levelColors[l],
		})
	}

	// Arcs are laid out by descending weight; ties keep input order.
	order := make([]int, len(p.Slices))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return p.Slices[order[i]].Weight > p.Slices[order[j]].Weight
	})

	angle := 0.0
	for _, idx := range order {
		s := &p.Slices[idx]
		span := s.Weight / total * 2 * math.Pi
		s.StartAngle = angle
		s.EndAngle = angle + span
		s.Path = arcPath(p.Radius, s.StartAngle, s.EndAngle)
		angle += span
	}
	return p
}

// Highlighted returns the slice with the largest weight and whether it is
// strictly larger than the others.
func (p Pie) Highlighted() (Slice, bool) {
	best := 0
	for i, s := range p.Slices {
		if s.Weight > p.Slices[best].Weight {
			best = i
		}
	}
	for i, s := range p.Slices {
		if i != best && s.Weight == p.Slices[best].Weight {
			return p.Slices[best], false
		}
	}
	return p.Slices[best], true
}

func arcPath(r, a0, a1 float64) string {
	if a1-a0 >= 2*math.Pi-1e-6 {
		return fmt.Sprintf("M0,%sA%s,%s,0,1,1,0,%sA%s,%s,0,1,1,0,%sZ",
			Num(-r), Num(r), Num(r), Num(r), Num(r), Num(r), Num(-r))
	}
	x0, y0 := r*math.Sin(a0), -r*math.Cos(a0)
	x1, y1 := r*math.Sin(a1), -r*math.Cos(a1)
	large := 0
	if a1-a0 > math.Pi {
		large = 1
	}
	return fmt.Sprintf("M%s,%sA%s,%s,0,%d,1,%s,%sL0,0Z",
		Num(x0), Num(y0), Num(r), Num(r), large, Num(x1), Num(y1))
}
