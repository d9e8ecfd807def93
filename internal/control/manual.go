package control

import (
	"github.com/san-kum/rovsim/internal/setpoint"
	"github.com/san-kum/rovsim/internal/sim"
)

// Manual writes the same power vector every tick.
type Manual struct {
	U [setpoint.Count]float64
}

func NewManual(power []float64) *Manual {
	m := &Manual{}
	m.SetControl(power)
	return m
}

// SetControl replaces the stored vector; missing entries are zero.
func (m *Manual) SetControl(power []float64) {
	m.U = [setpoint.Count]float64{}
	copy(m.U[:], power)
}

func (m *Manual) Steer(_ sim.Sample, board *setpoint.Board) {
	board.SetAll(m.U[:])
}
