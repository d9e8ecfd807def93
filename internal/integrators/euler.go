package integrators

import (
	"github.com/san-kum/rovsim/internal/body"
	"github.com/san-kum/rovsim/internal/transform"
)

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "euler" }

func (e *Euler) Step(tr *transform.Transform, st *body.State, env Env, dt float64) {
	env.Dt = dt
	Apply(tr, st, env, Derive(*tr, *st, env).Scale(dt))
}
