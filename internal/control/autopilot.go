package control

import (
	"math"

	"github.com/san-kum/rovsim/internal/setpoint"
	"github.com/san-kum/rovsim/internal/sim"
)

// Thruster groups for the default layout: which sign of power on each slot
// produces surge, heave and positive yaw.
var (
	surgeMix = [setpoint.Count]float64{1, 1, 1, 1, 0, 0, 0, 0}
	heaveMix = [setpoint.Count]float64{0, 0, 0, 0, 1, 1, 1, 1}
	yawMix   = [setpoint.Count]float64{1, -1, -1, 1, 0, 0, 0, 0}
)

// Autopilot holds depth (metres, positive down) and heading (degrees about
// +Y) with independent PIDs while applying a constant surge. A nil PID
// disables that axis.
type Autopilot struct {
	Depth   *PID
	Heading *PID
	Surge   float64
}

func NewAutopilot(depth, heading *PID, surge float64) *Autopilot {
	return &Autopilot{Depth: depth, Heading: heading, Surge: surge}
}

// Mix combines surge, heave and yaw demands into per-thruster power.
func Mix(surge, heave, yaw float64) [setpoint.Count]float64 {
	var u [setpoint.Count]float64
	for i := range u {
		u[i] = surge*surgeMix[i] + heave*heaveMix[i] + yaw*yawMix[i]
	}
	return u
}

func (a *Autopilot) Steer(x sim.Sample, board *setpoint.Board) {
	var heave, yaw float64
	if a.Depth != nil {
		// deeper target needs downward thrust
		heave = -a.Depth.Compute(x.Depth(), x.Time)
	}
	if a.Heading != nil {
		yaw = a.Heading.ComputeError(wrapDeg(a.Heading.Target-x.Heading()), x.Time)
	}
	u := Mix(a.Surge, heave, yaw)
	board.SetAll(u[:])
}

func wrapDeg(d float64) float64 {
	d = math.Mod(d+180, 360)
	if d < 0 {
		d += 360
	}
	return d - 180
}
