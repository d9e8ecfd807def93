package metrics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rovsim/internal/sim"
)

func TestKineticEnergy(t *testing.T) {
	m := NewKineticEnergy()
	m.Observe(sim.Sample{KineticEnergy: 2})
	m.Observe(sim.Sample{KineticEnergy: 4})

	if got := m.Value(); math.Abs(got-3) > 1e-12 {
		t.Errorf("expected mean 3, got %f", got)
	}

	m.Reset()
	if m.Value() != 0 {
		t.Errorf("expected 0 after reset, got %f", m.Value())
	}
}

func TestEnergyDrift(t *testing.T) {
	m := NewEnergyDrift()
	for _, e := range []float64{10, 10.5, 9, 10} {
		m.Observe(sim.Sample{KineticEnergy: e})
	}
	if got := m.Value(); math.Abs(got-0.1) > 1e-12 {
		t.Errorf("expected max drift 0.1, got %f", got)
	}
}

func TestControlEffort(t *testing.T) {
	m := NewControlEffort()
	full := [8]float64{1, -1, 0, 0, 0.5, 0.5, 0, 0}

	m.Observe(sim.Sample{Time: 0, Power: full})
	m.Observe(sim.Sample{Time: 0.5, Power: full})
	m.Observe(sim.Sample{Time: 1.0})

	// 3 units of power held for one second
	if got := m.Value(); math.Abs(got-3) > 1e-12 {
		t.Errorf("expected effort 3, got %f", got)
	}
}

func TestStability(t *testing.T) {
	m := NewStability(10)
	if m.Value() != 1 {
		t.Errorf("expected 1 with no samples, got %f", m.Value())
	}

	m.Observe(sim.Sample{Euler: [3]float64{5, 170, -5}})
	m.Observe(sim.Sample{Euler: [3]float64{15, 0, 0}})
	m.Observe(sim.Sample{Euler: [3]float64{0, 0, -20}})
	m.Observe(sim.Sample{})

	if got := m.Value(); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("expected 0.5, got %f", got)
	}
}

func TestPeakSpeedAndDistance(t *testing.T) {
	speed := NewPeakSpeed()
	dist := NewDistance()

	path := []sim.Sample{
		{Position: mgl64.Vec3{0, 0, 0}, LinearVelocity: mgl64.Vec3{1, 0, 0}},
		{Position: mgl64.Vec3{3, 4, 0}, LinearVelocity: mgl64.Vec3{0, 3, 4}},
		{Position: mgl64.Vec3{3, 4, 2}, LinearVelocity: mgl64.Vec3{0, 0, 2}},
	}
	for _, s := range path {
		speed.Observe(s)
		dist.Observe(s)
	}

	if speed.Value() != 5 {
		t.Errorf("expected peak speed 5, got %f", speed.Value())
	}
	if math.Abs(dist.Value()-7) > 1e-12 {
		t.Errorf("expected distance 7, got %f", dist.Value())
	}

	dist.Reset()
	dist.Observe(path[2])
	if dist.Value() != 0 {
		t.Errorf("expected 0 after reset, got %f", dist.Value())
	}
}

func TestDefaultsHaveUniqueNames(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range Defaults() {
		if seen[m.Name()] {
			t.Errorf("duplicate metric %q", m.Name())
		}
		seen[m.Name()] = true
	}
}

func TestDepthError(t *testing.T) {
	m := NewDepthError(2)
	m.Observe(sim.Sample{Position: mgl64.Vec3{0, -2, 0}})
	m.Observe(sim.Sample{Position: mgl64.Vec3{0, 0, 0}})

	if got := m.Value(); math.Abs(got-math.Sqrt2) > 1e-12 {
		t.Errorf("expected rms sqrt(2), got %f", got)
	}
	m.Reset()
	if m.Value() != 0 {
		t.Errorf("expected 0 after reset, got %f", m.Value())
	}
}

func TestHeadingErrorWraps(t *testing.T) {
	m := NewHeadingError(170)
	// heading -170 is 20 degrees from 170 across the seam
	q := mgl64.QuatRotate(mgl64.DegToRad(-170), mgl64.Vec3{0, 1, 0})
	m.Observe(sim.Sample{Orientation: q})

	if got := m.Value(); math.Abs(got-20) > 1e-6 {
		t.Errorf("expected 20, got %f", got)
	}
}
