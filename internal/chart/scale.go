package chart

import (
	"math"
	"strconv"
)

var (
	e10 = math.Sqrt(50)
	e5  = math.Sqrt(10)
	e2  = math.Sqrt(2)
)

// tickIncrement returns the tick step for [start, stop] split into roughly
// count intervals. Steps below one are returned as the negated inverse so that
// ticks can be computed by division without accumulating float error.
func tickIncrement(start, stop float64, count int) float64 {
	step := (stop - start) / math.Max(0, float64(count))
	power := math.Floor(math.Log10(step))
	e := step / math.Pow(10, power)

	factor := 1.0
	switch {
	case e >= e10:
		factor = 10
	case e >= e5:
		factor = 5
	case e >= e2:
		factor = 2
	}

	if power >= 0 {
		return factor * math.Pow(10, power)
	}
	return -math.Pow(10, -power) / factor
}

// niceStop extends the upper bound of [0, stop] to a round value aligned with
// the tick step. stop must be positive.
func niceStop(stop float64, count int) float64 {
	start := 0.0
	prestep := 0.0
	for i := 0; i < 10; i++ {
		step := tickIncrement(start, stop, count)
		if step == prestep {
			break
		}
		switch {
		case step > 0:
			start = math.Floor(start/step) * step
			stop = math.Ceil(stop/step) * step
		case step < 0:
			start = math.Ceil(start*step) / step
			stop = math.Floor(stop*step) / step
		default:
			return stop
		}
		prestep = step
	}
	return stop
}

func ticks(start, stop float64, count int) []float64 {
	inc := tickIncrement(start, stop, count)
	var out []float64
	switch {
	case inc > 0:
		for i := math.Ceil(start / inc); i <= math.Floor(stop/inc); i++ {
			out = append(out, i*inc)
		}
	case inc < 0:
		inv := -inc
		for i := math.Ceil(start * inv); i <= math.Floor(stop*inv); i++ {
			out = append(out, i/inv)
		}
	}
	return out
}

type bandScale struct {
	start     float64
	step      float64
	bandwidth float64
}

// newBandScale lays n bands over [r0, r1] with equal inner and outer padding,
// centred in the range.
func newBandScale(n int, r0, r1, padding float64) bandScale {
	step := (r1 - r0) / math.Max(1, float64(n)-padding+padding*2)
	start := r0 + (r1-r0-step*(float64(n)-padding))*0.5
	return bandScale{start: start, step: step, bandwidth: step * (1 - padding)}
}

func (b bandScale) at(i int) float64 {
	return b.start + b.step*float64(i)
}

// Num formats a coordinate for SVG output, rounded to three decimals.
func Num(v float64) string {
	r := math.Round(v*1000) / 1000
	if r == 0 {
		r = 0 // drop negative zero
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}
