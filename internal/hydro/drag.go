package hydro

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	WaterDensity    = 1000.0 // kg/m³, fresh water
	SeawaterDensity = 1025.0
)

// Drag maps a velocity (linear or angular) to the resistive force or torque
// it produces. Implementations must be pure.
type Drag interface {
	Resist(v mgl64.Vec3) mgl64.Vec3
}

type None struct{}

func (None) Resist(mgl64.Vec3) mgl64.Vec3 { return mgl64.Vec3{} }

// Quadratic drag: 0.5·ρ·|v|²·Cd·A along v, capped at MaxForce. The cap keeps
// a single step from reversing the sign of a small velocity; zero disables it.
type Quadratic struct {
	Density     float64
	Coefficient float64
	Area        float64
	MaxForce    float64
}

func NewQuadratic(density, coefficient, area, maxForce float64) *Quadratic {
	return &Quadratic{Density: density, Coefficient: coefficient, Area: area, MaxForce: maxForce}
}

func (q *Quadratic) Magnitude(speed float64) float64 {
	m := 0.5 * q.Density * speed * speed * q.Coefficient * q.Area
	if q.MaxForce > 0 && m > q.MaxForce {
		m = q.MaxForce
	}
	return m
}

// Resist returns the drag along v; callers subtract it from the applied force.
func (q *Quadratic) Resist(v mgl64.Vec3) mgl64.Vec3 {
	speed := v.Len()
	if speed == 0 || math.IsNaN(speed) {
		return mgl64.Vec3{}
	}
	if math.IsInf(speed, 0) {
		// |v|² overflowed; rescale to recover the direction
		m := math.Max(math.Abs(v[0]), math.Max(math.Abs(v[1]), math.Abs(v[2])))
		if math.IsInf(m, 0) {
			return v
		}
		return v.Mul(1 / m).Normalize().Mul(q.Magnitude(speed))
	}
	return v.Mul(q.Magnitude(speed) / speed)
}

// TerminalSpeed is the speed at which drag balances a constant force f.
func (q *Quadratic) TerminalSpeed(f float64) float64 {
	k := 0.5 * q.Density * q.Coefficient * q.Area
	if k <= 0 || f <= 0 {
		return math.Inf(1)
	}
	if q.MaxForce > 0 && f > q.MaxForce {
		return math.Inf(1)
	}
	return math.Sqrt(f / k)
}

// Or returns d, or None when d is nil.
func Or(d Drag) Drag {
	if d == nil {
		return None{}
	}
	return d
}
