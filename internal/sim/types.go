package sim

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rovsim/internal/orient"
	"github.com/san-kum/rovsim/internal/setpoint"
)

// Sample is the observable state of the vehicle at one instant. Position and
// orientation are world-space; Euler angles are degrees.
type Sample struct {
	Time            float64
	Position        mgl64.Vec3
	Orientation     mgl64.Quat
	Euler           [3]float64
	LinearVelocity  mgl64.Vec3
	AngularVelocity mgl64.Vec3
	Power           [setpoint.Count]float64
	Thrust          []float64
	KineticEnergy   float64
}

func (s Sample) Speed() float64 { return s.LinearVelocity.Len() }

// Depth is the distance below the starting plane; +Y is up.
func (s Sample) Depth() float64 { return -s.Position.Y() }

// Heading is the yaw of the forward (-Z) axis about +Y in degrees, in
// (-180, 180].
func (s Sample) Heading() float64 {
	q := s.Orientation
	if q == (mgl64.Quat{}) {
		return 0
	}
	fwd := orient.Rotate(q, mgl64.Vec3{0, 0, -1})
	return mgl64.RadToDeg(math.Atan2(-fwd.X(), -fwd.Z()))
}

// Pilot writes thruster setpoints for the coming tick.
type Pilot interface {
	Steer(s Sample, board *setpoint.Board)
}

type PilotFunc func(s Sample, board *setpoint.Board)

func (f PilotFunc) Steer(s Sample, board *setpoint.Board) { f(s, board) }

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(s Sample)
}

// SkipObserver is told about ticks whose commit the engine refused.
type SkipObserver interface {
	OnSkip(step int, err error)
}

type Config struct {
	Dt            float64
	Duration      float64
	ValidateState bool // stop at the first skipped commit
	RealTime      bool // pace ticks against the wall clock
}

type Result struct {
	Samples    []Sample
	Metrics    map[string]float64
	StepsTaken int
	Skipped    int
	Errors     []error
}

func (r *Result) Final() Sample {
	if len(r.Samples) == 0 {
		return Sample{}
	}
	return r.Samples[len(r.Samples)-1]
}
