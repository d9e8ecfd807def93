package vehicle

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rovsim/internal/body"
	"github.com/san-kum/rovsim/internal/hydro"
	"github.com/san-kum/rovsim/internal/orient"
	"github.com/san-kum/rovsim/internal/setpoint"
)

var ErrInvalidThruster = errors.New("vehicle: invalid thruster mount")

// ThrusterMount places one thruster on the hull. Position is the body-frame
// offset from the centre of mass in metres; Direction is the body-frame
// thrust axis for positive power.
type ThrusterMount struct {
	Name      string
	Position  mgl64.Vec3
	Direction mgl64.Vec3
	MaxForce  float64
}

type Config struct {
	Mass         float64
	HullExtents  mgl64.Vec3 // half extents of the hull box before scale
	HullScale    mgl64.Vec3
	CenterOfMass mgl64.Vec3 // model-space, before scale

	Position    mgl64.Vec3
	Orientation mgl64.Quat

	// initial world-space velocities
	LinearVelocity  mgl64.Vec3
	AngularVelocity mgl64.Vec3

	Thrusters   []ThrusterMount
	LinearDrag  hydro.Drag
	AngularDrag hydro.Drag
}

const (
	defaultMaxForce = 40.0
	horizontalX     = 0.55
	horizontalZ     = 0.3
	verticalX       = 0.55
	verticalY       = 0.3
	verticalZ       = 1.1
)

// DefaultThrusters is the eight-thruster layout: four vectored horizontal
// thrusters at 45 degrees in the XZ plane and four vertical ones. Fore is -Z,
// port is -X. Full positive power on a group yields pure surge or pure heave.
func DefaultThrusters() []ThrusterMount {
	d := 1 / math.Sqrt2
	pos := func(x, y, z float64) mgl64.Vec3 { return mgl64.Vec3{x, y, z} }
	return []ThrusterMount{
		{setpoint.Names[0], pos(-horizontalX, 0, -horizontalZ), mgl64.Vec3{d, 0, -d}, defaultMaxForce},
		{setpoint.Names[1], pos(horizontalX, 0, -horizontalZ), mgl64.Vec3{-d, 0, -d}, defaultMaxForce},
		{setpoint.Names[2], pos(-horizontalX, 0, horizontalZ), mgl64.Vec3{d, 0, -d}, defaultMaxForce},
		{setpoint.Names[3], pos(horizontalX, 0, horizontalZ), mgl64.Vec3{-d, 0, -d}, defaultMaxForce},
		{setpoint.Names[4], pos(-verticalX, verticalY, -verticalZ), orient.AxisY, defaultMaxForce},
		{setpoint.Names[5], pos(verticalX, verticalY, -verticalZ), orient.AxisY, defaultMaxForce},
		{setpoint.Names[6], pos(-verticalX, verticalY, verticalZ), orient.AxisY, defaultMaxForce},
		{setpoint.Names[7], pos(verticalX, verticalY, verticalZ), orient.AxisY, defaultMaxForce},
	}
}

func DefaultConfig() Config {
	return Config{
		Mass:        15,
		HullExtents: mgl64.Vec3{0.5, 0.5, 0.5},
		HullScale:   mgl64.Vec3{1, 1, 2},
		Orientation: orient.Identity(),
		Thrusters:   DefaultThrusters(),
		LinearDrag:  hydro.NewQuadratic(hydro.SeawaterDensity, 0.9, 0.5, 400),
		AngularDrag: hydro.NewQuadratic(hydro.SeawaterDensity, 0.3, 0.4, 200),
	}
}

func (c Config) Validate() error {
	if len(c.Thrusters) != setpoint.Count {
		return &body.ConfigurationError{
			Field:   "thrusters",
			Detail:  fmt.Sprintf("need %d mounts, got %d", setpoint.Count, len(c.Thrusters)),
			Wrapped: ErrInvalidThruster,
		}
	}
	for i, m := range c.Thrusters {
		field := fmt.Sprintf("thrusters[%d]", i)
		switch {
		case !orient.VecFinite(m.Position):
			return &body.ConfigurationError{Field: field, Detail: "position not finite", Wrapped: ErrInvalidThruster}
		case !orient.VecFinite(m.Direction) || m.Direction.Len() < 1e-9:
			return &body.ConfigurationError{Field: field, Detail: "direction is zero", Wrapped: ErrInvalidThruster}
		case !(m.MaxForce > 0) || math.IsInf(m.MaxForce, 0):
			return &body.ConfigurationError{Field: field, Detail: fmt.Sprintf("max force %g", m.MaxForce), Wrapped: ErrInvalidThruster}
		}
	}
	for i, s := range c.HullScale {
		if !(s > 0) || math.IsInf(s, 0) {
			return &body.ConfigurationError{
				Field:   "hull_scale",
				Detail:  fmt.Sprintf("component %d is %g", i, s),
				Wrapped: body.ErrDegenerateGeometry,
			}
		}
	}
	return nil
}
