package control

import (
	"github.com/san-kum/rovsim/internal/setpoint"
	"github.com/san-kum/rovsim/internal/sim"
)

// None never writes the board; whatever external producers set stays.
type None struct{}

func NewNone() *None {
	return &None{}
}

func (n *None) Steer(sim.Sample, *setpoint.Board) {}
