package integrators

import (
	"github.com/san-kum/rovsim/internal/body"
	"github.com/san-kum/rovsim/internal/transform"
)

type RK4 struct{}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Name() string { return "rk4" }

// Step samples the derivative at the start, twice at the midpoint and at the
// end, each trial state built from the original inputs, and applies the
// weighted mean once. Accumulated force and torque are held constant across
// the step.
func (r *RK4) Step(tr *transform.Transform, st *body.State, env Env, dt float64) {
	env.Dt = dt
	k1 := Derive(*tr, *st, env)

	t2, s2 := *tr, *st
	Apply(&t2, &s2, env, k1.Scale(dt*0.5))
	k2 := Derive(t2, s2, env)

	t3, s3 := *tr, *st
	Apply(&t3, &s3, env, k2.Scale(dt*0.5))
	k3 := Derive(t3, s3, env)

	t4, s4 := *tr, *st
	Apply(&t4, &s4, env, k3.Scale(dt))
	k4 := Derive(t4, s4, env)

	d := k1.Add(k2.Scale(2)).Add(k3.Scale(2)).Add(k4).Scale(1.0 / 6.0)
	Apply(tr, st, env, d.Scale(dt))
}
