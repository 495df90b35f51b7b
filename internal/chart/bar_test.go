package chart

import (
	"math"
	"testing"

	"github.com/scanview/frontend/internal/model"
)

func TestNiceStop(t *testing.T) {
	cases := []struct {
		max  float64
		want float64
	}{
		{1, 1},
		{2, 2},
		{7, 7},
		{13, 13},
		{47, 50},
		{93, 100},
		{1234, 1300},
	}
	for _, tc := range cases {
		if got := niceStop(tc.max, tickCount); got != tc.want {
			t.Errorf("niceStop(%v) = %v, want %v", tc.max, got, tc.want)
		}
	}
}

func TestTicksUseDivisionForFractionalSteps(t *testing.T) {
	got := ticks(0, 2, tickCount)
	if len(got) != 11 {
		t.Fatalf("tick count = %d, want 11", len(got))
	}
	if Num(got[3]) != "0.6" {
		t.Errorf("tick[3] = %s, want 0.6", Num(got[3]))
	}
	if got[len(got)-1] != 2 {
		t.Errorf("last tick = %v, want 2", got[len(got)-1])
	}
}

func TestNewBarOneBarPerEntry(t *testing.T) {
	vulns := []model.VulnerabilityFinding{
		{Type: "Missing Headers", Count: 3},
		{Type: "XSS", Count: 12},
		{Type: "Exposed Admin/Login URL", Count: 1},
	}
	b := NewBar(vulns)

	if len(b.Bars) != len(vulns) {
		t.Fatalf("bars = %d, want %d", len(b.Bars), len(vulns))
	}
	for i, v := range vulns {
		if b.Bars[i].Label != v.Type {
			t.Errorf("bar[%d].Label = %q, want %q", i, b.Bars[i].Label, v.Type)
		}
		if b.XTicks[i].Label != v.Type {
			t.Errorf("xtick[%d].Label = %q, want %q", i, b.XTicks[i].Label, v.Type)
		}
	}
	if b.YMax < 12 {
		t.Errorf("YMax = %v, want >= 12", b.YMax)
	}
	if !(b.Bars[1].Height > b.Bars[0].Height && b.Bars[0].Height > b.Bars[2].Height) {
		t.Errorf("heights not ordered by count: %v %v %v", b.Bars[0].Height, b.Bars[1].Height, b.Bars[2].Height)
	}
	for i, r := range b.Bars {
		if math.Abs(r.Y+r.Height-b.PlotBottom) > 1e-9 {
			t.Errorf("bar[%d] does not sit on the x axis: y=%v h=%v", i, r.Y, r.Height)
		}
		if r.X < b.PlotLeft || r.X+r.Width > b.PlotRight {
			t.Errorf("bar[%d] outside plot: x=%v w=%v", i, r.X, r.Width)
		}
	}
}

func TestNewBarSingleEntryGeometry(t *testing.T) {
	b := NewBar([]model.VulnerabilityFinding{{Type: "XSS", Count: 2}})
	if len(b.Bars) != 1 {
		t.Fatalf("bars = %d, want 1", len(b.Bars))
	}
	r := b.Bars[0]
	if r.Count != 2 {
		t.Errorf("count = %d, want 2", r.Count)
	}
	if b.YMax != 2 {
		t.Errorf("YMax = %v, want 2", b.YMax)
	}
	// The tallest bar spans the whole plot height.
	if r.Y != b.PlotTop {
		t.Errorf("bar top = %v, want %v", r.Y, b.PlotTop)
	}
	// One band with 0.3 padding over 240px: step 240/1.3, centred.
	if Num(r.Width) != "129.231" {
		t.Errorf("bandwidth = %s, want 129.231", Num(r.Width))
	}
	if Num(r.X) != "95.385" {
		t.Errorf("bar x = %s, want 95.385", Num(r.X))
	}
}

func TestNewBarEmpty(t *testing.T) {
	b := NewBar(nil)
	if len(b.Bars) != 0 || len(b.XTicks) != 0 {
		t.Fatalf("expected no bars, got %d bars %d ticks", len(b.Bars), len(b.XTicks))
	}
	if b.YMax != 1 {
		t.Errorf("YMax = %v, want 1", b.YMax)
	}
	if len(b.YTicks) == 0 {
		t.Error("expected y axis ticks for an empty chart")
	}
}

func TestNewBarAllZeroCounts(t *testing.T) {
	b := NewBar([]model.VulnerabilityFinding{{Type: "Error", Count: 0}})
	if len(b.Bars) != 1 {
		t.Fatalf("bars = %d, want 1", len(b.Bars))
	}
	if b.Bars[0].Height != 0 {
		t.Errorf("height = %v, want 0", b.Bars[0].Height)
	}
}

func TestNewBarIsRebuiltEachCall(t *testing.T) {
	first := NewBar([]model.VulnerabilityFinding{{Type: "A", Count: 1}, {Type: "B", Count: 2}})
	second := NewBar([]model.VulnerabilityFinding{{Type: "C", Count: 5}})
	if len(first.Bars) != 2 || len(second.Bars) != 1 {
		t.Fatalf("bars = %d/%d, want 2/1", len(first.Bars), len(second.Bars))
	}
	if second.Bars[0].Label != "C" {
		t.Errorf("label = %q, want C", second.Bars[0].Label)
	}
}
