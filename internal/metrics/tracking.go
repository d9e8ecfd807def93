package metrics

import (
	"math"

	"github.com/san-kum/rovsim/internal/sim"
)

// TrackingError is the RMS distance between a signal and its target.
type TrackingError struct {
	name   string
	target float64
	signal func(sim.Sample) float64
	diff   func(a, b float64) float64
	sumSq  float64
	n      int
}

func NewDepthError(target float64) *TrackingError {
	return &TrackingError{
		name:   "depth_error",
		target: target,
		signal: sim.Sample.Depth,
		diff:   func(a, b float64) float64 { return a - b },
	}
}

// NewHeadingError wraps the difference into (-180, 180] before squaring.
func NewHeadingError(target float64) *TrackingError {
	return &TrackingError{
		name:   "heading_error",
		target: target,
		signal: sim.Sample.Heading,
		diff: func(a, b float64) float64 {
			d := math.Mod(a-b+180, 360)
			if d < 0 {
				d += 360
			}
			return d - 180
		},
	}
}

func (e *TrackingError) Name() string { return e.name }

func (e *TrackingError) Observe(s sim.Sample) {
	d := e.diff(e.signal(s), e.target)
	e.sumSq += d * d
	e.n++
}

func (e *TrackingError) Value() float64 {
	if e.n == 0 {
		return 0
	}
	return math.Sqrt(e.sumSq / float64(e.n))
}

func (e *TrackingError) Reset() {
	e.sumSq = 0
	e.n = 0
}
