package integrators

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rovsim/internal/body"
	"github.com/san-kum/rovsim/internal/hydro"
	"github.com/san-kum/rovsim/internal/orient"
	"github.com/san-kum/rovsim/internal/transform"
)

// Derivative is the time rate of a (Transform, State) pair. DOrientation is a
// raw quaternion rate and is never a valid rotation on its own.
type Derivative struct {
	DPosition        mgl64.Vec3
	DOrientation     mgl64.Quat
	DLinearMomentum  mgl64.Vec3
	DAngularMomentum mgl64.Vec3
}

func (d Derivative) Add(o Derivative) Derivative {
	return Derivative{
		DPosition:        d.DPosition.Add(o.DPosition),
		DOrientation:     d.DOrientation.Add(o.DOrientation),
		DLinearMomentum:  d.DLinearMomentum.Add(o.DLinearMomentum),
		DAngularMomentum: d.DAngularMomentum.Add(o.DAngularMomentum),
	}
}

func (d Derivative) Neg() Derivative { return d.Scale(-1) }

func (d Derivative) Sub(o Derivative) Derivative { return d.Add(o.Neg()) }

func (d Derivative) Scale(f float64) Derivative {
	return Derivative{
		DPosition:        d.DPosition.Mul(f),
		DOrientation:     d.DOrientation.Scale(f),
		DLinearMomentum:  d.DLinearMomentum.Mul(f),
		DAngularMomentum: d.DAngularMomentum.Mul(f),
	}
}

// Env carries everything a step reads besides the body itself.
type Env struct {
	// Parent is the world rotation of the frame the transform lives in.
	// The zero matrix is treated as identity.
	Parent mgl64.Mat3

	// ParentLinear is the upper 3x3 of the parent's world matrix, rotation
	// and scale together. Position is stored in parent units, so world
	// displacement goes through its inverse. The zero matrix means Parent
	// alone.
	ParentLinear mgl64.Mat3

	LinearDrag  hydro.Drag
	AngularDrag hydro.Drag

	// Dt is the step the derivative will be integrated over. When set, drag
	// is limited so its impulse never exceeds the momentum it opposes.
	// Steppers fill it in.
	Dt float64
}

func RootEnv() Env {
	return Env{Parent: mgl64.Ident3()}
}

func (e Env) parent() mgl64.Mat3 {
	if e.Parent == (mgl64.Mat3{}) {
		return mgl64.Ident3()
	}
	return e.Parent
}

// toParent maps a world-space displacement into the parent's local units.
func (e Env) toParent(d mgl64.Vec3) mgl64.Vec3 {
	if e.ParentLinear != (mgl64.Mat3{}) && e.ParentLinear.Det() != 0 {
		return e.ParentLinear.Inv().Mul3x1(d)
	}
	return e.parent().Transpose().Mul3x1(d)
}

// Derive evaluates the rigid-body ODE at (tr, st). It does not modify st.
func Derive(tr transform.Transform, st body.State, env Env) Derivative {
	p := env.parent()
	omegaLocal := p.Transpose().Mul3x1(st.AngularVelocity)

	return Derivative{
		DPosition:        st.LinearVelocity,
		DOrientation:     orient.Rate(omegaLocal, tr.Orientation),
		DLinearMomentum:  st.TotalForce.Sub(env.limit(hydro.Or(env.LinearDrag).Resist(st.LinearVelocity), st.LinearMomentum)),
		DAngularMomentum: st.TotalTorque.Sub(env.limit(hydro.Or(env.AngularDrag).Resist(st.AngularVelocity), st.AngularMomentum)),
	}
}

// limit scales drag down so that |drag|·Dt <= |momentum|. Drag alone can
// then bring the body to rest within a step but never reverse it.
func (e Env) limit(drag, momentum mgl64.Vec3) mgl64.Vec3 {
	if !(e.Dt > 0) {
		return drag
	}
	m := drag.Len() * e.Dt
	p := momentum.Len()
	if m <= p || m == 0 {
		return drag
	}
	return drag.Mul(p / m)
}

// Apply advances (tr, st) by an already time-scaled derivative d.
//
// Velocities describe the centre of mass, so when the body turns the entity
// origin swings around it; the pivot term keeps the COM fixed under pure
// rotation.
func Apply(tr *transform.Transform, st *body.State, env Env, d Derivative) {
	p := env.parent()

	oldRot := tr.Rotation()
	tr.Orientation = orient.Advance(tr.Orientation, d.DOrientation)
	newRot := tr.Rotation()

	negCOM := tr.ScaleVec(st.CenterOfMass.Mul(-1))
	pivot := newRot.Mul3x1(negCOM).Sub(oldRot.Mul3x1(negCOM))
	linear := env.toParent(d.DPosition)
	tr.Position = tr.Position.Add(linear).Add(pivot)

	st.LinearMomentum = st.LinearMomentum.Add(d.DLinearMomentum)
	st.AngularMomentum = st.AngularMomentum.Add(d.DAngularMomentum)
	st.Refresh(p.Mul3(newRot))
}
