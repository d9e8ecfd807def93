package control

import (
	"sort"

	"github.com/san-kum/rovsim/internal/setpoint"
	"github.com/san-kum/rovsim/internal/sim"
)

// Segment holds Power from Start until the next segment begins.
type Segment struct {
	Start float64
	Power []float64
}

// Schedule is a piecewise-constant pilot. Before the first segment the board
// is zeroed.
type Schedule struct {
	segments []Segment
}

func NewSchedule(segments ...Segment) *Schedule {
	s := &Schedule{segments: append([]Segment(nil), segments...)}
	sort.SliceStable(s.segments, func(i, j int) bool {
		return s.segments[i].Start < s.segments[j].Start
	})
	return s
}

func (s *Schedule) At(t float64) []float64 {
	var cur []float64
	for _, seg := range s.segments {
		if seg.Start > t {
			break
		}
		cur = seg.Power
	}
	return cur
}

func (s *Schedule) Steer(x sim.Sample, board *setpoint.Board) {
	var u [setpoint.Count]float64
	copy(u[:], s.At(x.Time))
	board.SetAll(u[:])
}
