package integrators

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rovsim/internal/body"
	"github.com/san-kum/rovsim/internal/hydro"
	"github.com/san-kum/rovsim/internal/orient"
	"github.com/san-kum/rovsim/internal/transform"
)

func newBody(t testing.TB, mass float64, inertia mgl64.Vec3, com mgl64.Vec3) body.State {
	t.Helper()
	st, err := body.New(mass, mgl64.Diag3(inertia), com)
	if err != nil {
		t.Fatalf("body.New: %v", err)
	}
	return st
}

func near(a, b mgl64.Vec3, eps float64) bool { return a.Sub(b).Len() <= eps }

func TestZeroForceInvariance(t *testing.T) {
	tests := []struct {
		name    string
		inertia mgl64.Vec3
		vel     mgl64.Vec3
		omega   mgl64.Vec3
		dt      float64
	}{
		{"at rest", mgl64.Vec3{1, 2, 3}, mgl64.Vec3{}, mgl64.Vec3{}, 0.01},
		{"drifting", mgl64.Vec3{1, 2, 3}, mgl64.Vec3{1, -2, 0.5}, mgl64.Vec3{}, 0.1},
		{"spinning sphere", mgl64.Vec3{2, 2, 2}, mgl64.Vec3{0.3, 0, 0}, mgl64.Vec3{0.5, 1, -2}, 0.05},
		{"large dt", mgl64.Vec3{1, 1, 1}, mgl64.Vec3{-4, 4, 1}, mgl64.Vec3{0, 3, 0}, 2.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newBody(t, 3, tt.inertia, mgl64.Vec3{})
			tr := transform.At(mgl64.Vec3{1, 2, 3}, orient.FromEulerDeg(10, 20, 30))
			st.SetLinearVelocity(tt.vel)
			st.SetAngularVelocity(tt.omega, tr.Rotation())

			start := tr.Position
			NewRK4().Step(&tr, &st, RootEnv(), tt.dt)

			if !near(st.LinearVelocity, tt.vel, 1e-12) {
				t.Errorf("linear velocity changed: %v -> %v", tt.vel, st.LinearVelocity)
			}
			if !near(st.AngularVelocity, tt.omega, 1e-9) {
				t.Errorf("angular velocity changed: %v -> %v", tt.omega, st.AngularVelocity)
			}
			want := start.Add(tt.vel.Mul(tt.dt))
			if !near(tr.Position, want, 1e-12) {
				t.Errorf("expected position %v, got %v", want, tr.Position)
			}
		})
	}
}

func TestStepDeterminism(t *testing.T) {
	run := func() (transform.Transform, body.State) {
		st := newBody(t, 7, mgl64.Vec3{1, 3, 2}, mgl64.Vec3{0.1, -0.2, 0.3})
		tr := transform.At(mgl64.Vec3{0, -5, 0}, orient.FromEulerDeg(5, 0, -15))
		env := Env{
			Parent:      mgl64.Ident3(),
			LinearDrag:  hydro.NewQuadratic(hydro.WaterDensity, 0.9, 0.3, 200),
			AngularDrag: hydro.NewQuadratic(hydro.WaterDensity, 0.2, 0.1, 50),
		}
		rk := NewRK4()
		for i := 0; i < 200; i++ {
			st.AddForceAt(mgl64.Vec3{math.Sin(float64(i)), 2, 1}, mgl64.Vec3{0.5, 0, -0.5})
			rk.Step(&tr, &st, env, 0.01)
			st.ClearAccumulators()
		}
		return tr, st
	}

	tr1, st1 := run()
	tr2, st2 := run()
	if tr1 != tr2 {
		t.Errorf("transforms differ: %+v vs %+v", tr1, tr2)
	}
	if st1 != st2 {
		t.Errorf("states differ: %+v vs %+v", st1, st2)
	}
}

func TestOrientationStaysNormalized(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	st := newBody(t, 2, mgl64.Vec3{0.5, 1, 1.5}, mgl64.Vec3{0, 0.1, 0})
	tr := transform.New()
	rk := NewRK4()

	for i := 0; i < 2000; i++ {
		f := mgl64.Vec3{rng.Float64()*2 - 1, rng.Float64()*2 - 1, rng.Float64()*2 - 1}.Mul(5)
		arm := mgl64.Vec3{rng.Float64() - 0.5, rng.Float64() - 0.5, rng.Float64() - 0.5}
		st.AddForceAt(f, arm)
		rk.Step(&tr, &st, RootEnv(), 0.02)
		st.ClearAccumulators()

		if !orient.IsUnit(tr.Orientation, 1e-5) {
			t.Fatalf("step %d: |q| = %.9f", i, tr.Orientation.Len())
		}
	}
}

func TestCenterOfMassPivot(t *testing.T) {
	com := mgl64.Vec3{1, 0, 0}
	st := newBody(t, 1, mgl64.Vec3{1, 1, 1}, com)
	tr := transform.New()

	// half a turn about Y over one second
	st.SetAngularVelocity(mgl64.Vec3{0, math.Pi, 0}, tr.Rotation())

	rk := NewRK4()
	const steps = 1000
	for i := 0; i < steps; i++ {
		rk.Step(&tr, &st, RootEnv(), 1.0/steps)
	}

	want := com.Mul(2)
	if !near(tr.Position, want, 1e-6) {
		t.Errorf("origin should swing to %v around the COM, got %v", want, tr.Position)
	}

	comWorld := tr.Position.Add(orient.Rotate(tr.Orientation, com))
	if !near(comWorld, com, 1e-6) {
		t.Errorf("COM should stay put at %v, got %v", com, comWorld)
	}
}

func TestImpulse(t *testing.T) {
	st := newBody(t, 10, mgl64.Vec3{1, 1, 1}, mgl64.Vec3{})
	tr := transform.New()

	st.AddForceAt(mgl64.Vec3{0, 0, 10}, mgl64.Vec3{0, 1, 0})
	NewRK4().Step(&tr, &st, RootEnv(), 0.1)

	if !near(st.AngularMomentum, mgl64.Vec3{-1, 0, 0}, 1e-12) {
		t.Errorf("expected angular momentum (-1,0,0), got %v", st.AngularMomentum)
	}
	if !near(st.LinearMomentum, mgl64.Vec3{0, 0, 1}, 1e-12) {
		t.Errorf("expected linear momentum (0,0,1), got %v", st.LinearMomentum)
	}
	if !near(st.LinearVelocity, mgl64.Vec3{0, 0, 0.1}, 1e-12) {
		t.Errorf("expected velocity (0,0,0.1), got %v", st.LinearVelocity)
	}
}

func TestSymmetricThrustersCancel(t *testing.T) {
	const mass, thrust, dt = 4.0, 3.0, 0.05
	st := newBody(t, mass, mgl64.Vec3{1, 1, 1}, mgl64.Vec3{})
	tr := transform.New()

	st.AddForceAt(mgl64.Vec3{0, 0, thrust}, mgl64.Vec3{1, 0.2, 0})
	st.AddForceAt(mgl64.Vec3{0, 0, thrust}, mgl64.Vec3{-1, -0.2, 0})
	if st.TotalTorque.Len() > 1e-15 {
		t.Fatalf("expected zero net torque, got %v", st.TotalTorque)
	}

	NewRK4().Step(&tr, &st, RootEnv(), dt)

	accel := st.LinearVelocity.Mul(1 / dt)
	if !near(accel, mgl64.Vec3{0, 0, 2 * thrust / mass}, 1e-12) {
		t.Errorf("expected acceleration 2F/m = %f, got %v", 2*thrust/mass, accel)
	}
	if st.AngularVelocity.Len() > 1e-15 {
		t.Errorf("expected no rotation, got %v", st.AngularVelocity)
	}
}

func TestConstantForceTrajectory(t *testing.T) {
	const dt, steps = 0.1, 20
	force := mgl64.Vec3{2, 0, -1}

	errFor := func(s Stepper) float64 {
		st := newBody(t, 2, mgl64.Vec3{1, 1, 1}, mgl64.Vec3{})
		tr := transform.New()
		for i := 0; i < steps; i++ {
			st.AddForce(force)
			s.Step(&tr, &st, RootEnv(), dt)
			st.ClearAccumulators()
		}
		total := dt * steps
		want := force.Mul(0.5 * total * total / 2)
		return tr.Position.Sub(want).Len()
	}

	if e := errFor(NewRK4()); e > 1e-12 {
		t.Errorf("rk4 should integrate constant acceleration exactly, error %g", e)
	}
	if e := errFor(NewEuler()); e < 1e-3 {
		t.Errorf("euler should lag the analytic trajectory, error %g", e)
	}
}

func TestDragDecelerates(t *testing.T) {
	st := newBody(t, 1, mgl64.Vec3{1, 1, 1}, mgl64.Vec3{})
	tr := transform.New()
	st.SetLinearVelocity(mgl64.Vec3{2, 0, 0})
	env := RootEnv()
	env.LinearDrag = hydro.NewQuadratic(hydro.WaterDensity, 1, 0.01, 5)

	prev := st.LinearVelocity.X()
	for i := 0; i < 100; i++ {
		NewRK4().Step(&tr, &st, env, 0.01)
		v := st.LinearVelocity.X()
		if v > prev {
			t.Fatalf("step %d: speed rose from %f to %f", i, prev, v)
		}
		prev = v
	}
	if prev <= 0 || prev >= 2 {
		t.Errorf("expected speed to decay but stay positive, got %f", prev)
	}
}

func TestDragNeverReversesVelocity(t *testing.T) {
	tests := []struct {
		name    string
		stepper Stepper
		v0      float64
		dt      float64
	}{
		{"rk4 moderate dt", NewRK4(), 1, 0.2},
		{"rk4 large dt", NewRK4(), 0.5, 0.5},
		{"rk4 huge dt", NewRK4(), 3, 5},
		{"euler", NewEuler(), 2, 0.1},
		{"euler large dt", NewEuler(), 0.5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newBody(t, 15, mgl64.Vec3{1, 1, 1}, mgl64.Vec3{})
			tr := transform.New()
			st.SetLinearVelocity(mgl64.Vec3{tt.v0, 0, 0})
			st.SetAngularVelocity(mgl64.Vec3{0, tt.v0, 0}, mgl64.Ident3())
			env := RootEnv()
			env.LinearDrag = hydro.NewQuadratic(hydro.SeawaterDensity, 0.9, 0.5, 400)
			env.AngularDrag = hydro.NewQuadratic(hydro.SeawaterDensity, 0.9, 0.5, 400)

			tt.stepper.Step(&tr, &st, env, tt.dt)

			v := st.LinearVelocity.X()
			if v < 0 || v > tt.v0 {
				t.Errorf("linear velocity %f outside [0, %f]", v, tt.v0)
			}
			w := st.AngularVelocity.Y()
			if w < 0 || w > tt.v0 {
				t.Errorf("angular velocity %f outside [0, %f]", w, tt.v0)
			}
		})
	}
}

func TestDragLimitInactiveForSmallSteps(t *testing.T) {
	st := newBody(t, 15, mgl64.Vec3{1, 1, 1}, mgl64.Vec3{})
	st.SetLinearVelocity(mgl64.Vec3{1, 0, 0})
	drag := hydro.NewQuadratic(hydro.SeawaterDensity, 0.9, 0.5, 400)

	env := RootEnv()
	env.LinearDrag = drag
	free := Derive(transform.New(), st, env)
	env.Dt = 0.001
	limited := Derive(transform.New(), st, env)

	if !near(free.DLinearMomentum, limited.DLinearMomentum, 1e-12) {
		t.Errorf("limit changed drag at small dt: %v vs %v", free.DLinearMomentum, limited.DLinearMomentum)
	}
	if want := -drag.Magnitude(1); math.Abs(free.DLinearMomentum.X()-want) > 1e-9 {
		t.Errorf("dP = %f, want %f", free.DLinearMomentum.X(), want)
	}
}

func TestParentFrameDisplacement(t *testing.T) {
	st := newBody(t, 1, mgl64.Vec3{1, 1, 1}, mgl64.Vec3{})
	tr := transform.New()
	st.SetLinearVelocity(mgl64.Vec3{1, 0, 0})

	env := RootEnv()
	env.Parent = orient.Matrix(orient.FromAxisAngleDeg(orient.AxisZ, 90))

	NewRK4().Step(&tr, &st, env, 0.5)

	// world +X is parent-local -Y under a 90° parent yaw
	if !near(tr.Position, mgl64.Vec3{0, -0.5, 0}, 1e-12) {
		t.Errorf("expected local displacement (0,-0.5,0), got %v", tr.Position)
	}
}

func TestScaledParentDisplacement(t *testing.T) {
	st := newBody(t, 1, mgl64.Vec3{1, 1, 1}, mgl64.Vec3{})
	tr := transform.New()
	st.SetLinearVelocity(mgl64.Vec3{1, 0, 0})

	rot := orient.Matrix(orient.FromAxisAngleDeg(orient.AxisZ, 90))
	env := RootEnv()
	env.Parent = rot
	env.ParentLinear = rot.Mul3(mgl64.Diag3(mgl64.Vec3{2, 4, 1}))

	NewRK4().Step(&tr, &st, env, 0.5)

	// world +X is parent-local -Y, and the parent's y axis is 4 units long
	if !near(tr.Position, mgl64.Vec3{0, -0.125, 0}, 1e-12) {
		t.Errorf("expected local displacement (0,-0.125,0), got %v", tr.Position)
	}
	if world := env.ParentLinear.Mul3x1(tr.Position); !near(world, mgl64.Vec3{0.5, 0, 0}, 1e-12) {
		t.Errorf("world displacement should be v*dt, got %v", world)
	}
}

func TestDeriveLeavesStateUntouched(t *testing.T) {
	st := newBody(t, 5, mgl64.Vec3{1, 2, 3}, mgl64.Vec3{})
	st.SetLinearVelocity(mgl64.Vec3{1, 1, 0})
	st.AddForce(mgl64.Vec3{0, 9, 0})
	before := st

	d := Derive(transform.New(), st, RootEnv())
	if st != before {
		t.Error("Derive mutated its input")
	}
	if d.DPosition != st.LinearVelocity {
		t.Errorf("dPosition should equal velocity, got %v", d.DPosition)
	}
	if d.DLinearMomentum != (mgl64.Vec3{0, 9, 0}) {
		t.Errorf("dP should equal force without drag, got %v", d.DLinearMomentum)
	}
}

func TestDerivativeAlgebra(t *testing.T) {
	a := Derivative{
		DPosition:        mgl64.Vec3{1, 2, 3},
		DOrientation:     mgl64.Quat{W: 1, V: mgl64.Vec3{1, 0, 0}},
		DLinearMomentum:  mgl64.Vec3{0, 1, 0},
		DAngularMomentum: mgl64.Vec3{0, 0, 1},
	}

	sum := a.Add(a)
	if sum != a.Scale(2) {
		t.Errorf("a+a should equal 2a: %+v vs %+v", sum, a.Scale(2))
	}
	zero := a.Add(a.Neg())
	if zero != (Derivative{}) {
		t.Errorf("a + -a should be zero, got %+v", zero)
	}
	if a.Sub(a) != (Derivative{}) {
		t.Errorf("a - a should be zero")
	}
}

func TestLookup(t *testing.T) {
	for _, name := range Names() {
		s, err := Lookup(name)
		if err != nil {
			t.Fatalf("lookup %s: %v", name, err)
		}
		if s.Name() != name {
			t.Errorf("expected %s, got %s", name, s.Name())
		}
	}
	if _, err := Lookup("leapfrog"); err == nil {
		t.Error("expected error for unknown integrator")
	}
}
