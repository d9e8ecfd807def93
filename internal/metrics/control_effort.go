package metrics

import (
	"math"

	"github.com/san-kum/rovsim/internal/sim"
)

// ControlEffort integrates the summed absolute thruster power over time.
type ControlEffort struct {
	name  string
	sum   float64
	prevT float64
	prevU float64
	seen  bool
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{
		name: "control_effort",
	}
}

func (c *ControlEffort) Name() string {
	return c.name
}

func (c *ControlEffort) Observe(s sim.Sample) {
	u := 0.0
	for _, val := range s.Power {
		u += math.Abs(val)
	}
	if c.seen {
		c.sum += c.prevU * (s.Time - c.prevT)
	}
	c.prevT, c.prevU, c.seen = s.Time, u, true
}

func (c *ControlEffort) Value() float64 {
	return c.sum
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.prevT = 0
	c.prevU = 0
	c.seen = false
}
