package body

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rovsim/internal/mesh"
	"github.com/san-kum/rovsim/internal/orient"
)

// singularTol bounds det(I) relative to (trace(I)/3)^3, i.e. how thin the
// mass distribution may get along its weakest axis.
const singularTol = 1e-9

// State is the dynamic state of one rigid body. Momenta are the integrated
// quantities; velocities and the world-space inverse inertia are derived from
// them and the current orientation by Refresh.
type State struct {
	Mass         float64
	CenterOfMass mgl64.Vec3 // model-space offset from the entity origin, before scale

	BodyInertia        mgl64.Mat3
	BodyInverseInertia mgl64.Mat3

	LinearMomentum  mgl64.Vec3
	AngularMomentum mgl64.Vec3

	WorldInverseInertia mgl64.Mat3
	LinearVelocity      mgl64.Vec3
	AngularVelocity     mgl64.Vec3

	TotalForce  mgl64.Vec3
	TotalTorque mgl64.Vec3
}

// New builds a body at rest from an explicit mass, body-space inertia and
// centre of mass.
func New(mass float64, inertia mgl64.Mat3, centerOfMass mgl64.Vec3) (State, error) {
	if err := checkMass(mass); err != nil {
		return State{}, err
	}
	if !orient.MatFinite(inertia) || singular(inertia) {
		return State{}, configErr("inertia", ErrInvalidInertia, "det=%g", inertia.Det())
	}
	if !orient.VecFinite(centerOfMass) {
		return State{}, configErr("center_of_mass", ErrDegenerateGeometry, "non-finite offset %v", centerOfMass)
	}

	s := State{
		Mass:               mass,
		CenterOfMass:       centerOfMass,
		BodyInertia:        inertia,
		BodyInverseInertia: inertia.Inv(),
	}
	s.Refresh(mgl64.Ident3())
	return s, nil
}

// FromMesh derives mass properties from triangulated geometry. Each index
// reference is a point mass of mass/len(Indices), so shared corners weigh
// more. The centre of mass is the mean of the referenced vertices unless com
// is non-nil. Vertices are scaled component-wise by scale before the tensor
// is accumulated.
func FromMesh(mass float64, geom mesh.Geometry, scale mgl64.Vec3, com *mgl64.Vec3) (State, error) {
	if err := checkMass(mass); err != nil {
		return State{}, err
	}
	if len(geom.Indices) == 0 {
		return State{}, configErr("geometry", ErrDegenerateGeometry, "no referenced vertices")
	}
	for i, ix := range geom.Indices {
		if int(ix) >= len(geom.Vertices) {
			return State{}, configErr("geometry", ErrDegenerateGeometry, "index %d at %d out of range", ix, i)
		}
	}

	var center mgl64.Vec3
	if com != nil {
		center = *com
	} else {
		for _, ix := range geom.Indices {
			center = center.Add(geom.Vertices[ix])
		}
		center = center.Mul(1.0 / float64(len(geom.Indices)))
	}

	pointMass := mass / float64(len(geom.Indices))
	var inertia mgl64.Mat3
	for _, ix := range geom.Indices {
		d := geom.Vertices[ix].Sub(center)
		p := mgl64.Vec3{d[0] * scale[0], d[1] * scale[1], d[2] * scale[2]}
		inertia = inertia.Add(pointInertia(p).Mul(pointMass))
	}

	if !orient.MatFinite(inertia) || singular(inertia) {
		return State{}, configErr("geometry", ErrDegenerateGeometry, "inertia tensor not invertible (det=%g)", inertia.Det())
	}

	s := State{
		Mass:               mass,
		CenterOfMass:       center,
		BodyInertia:        inertia,
		BodyInverseInertia: inertia.Inv(),
	}
	s.Refresh(mgl64.Ident3())
	return s, nil
}

// pointInertia is dot(p,p)·I₃ − outer(p,p).
func pointInertia(p mgl64.Vec3) mgl64.Mat3 {
	d := p.Dot(p)
	x, y, z := p[0], p[1], p[2]
	return mgl64.Mat3{
		d - x*x, -x * y, -x * z,
		-y * x, d - y*y, -y * z,
		-z * x, -z * y, d - z*z,
	}
}

func singular(m mgl64.Mat3) bool {
	trace := m[0] + m[4] + m[8]
	if trace <= 0 {
		return true
	}
	scale := trace / 3
	return m.Det() <= singularTol*scale*scale*scale
}

func checkMass(mass float64) error {
	if !(mass > 0) || math.IsInf(mass, 0) {
		return configErr("mass", ErrInvalidMass, "got %g", mass)
	}
	return nil
}

// Refresh recomputes the derived quantities for world rotation r.
func (s *State) Refresh(r mgl64.Mat3) {
	s.WorldInverseInertia = r.Mul3(s.BodyInverseInertia).Mul3(r.Transpose())
	s.LinearVelocity = s.LinearMomentum.Mul(1.0 / s.Mass)
	s.AngularVelocity = s.WorldInverseInertia.Mul3x1(s.AngularMomentum)
}

func (s *State) SetLinearVelocity(v mgl64.Vec3) {
	s.LinearMomentum = v.Mul(s.Mass)
	s.LinearVelocity = v
}

// SetAngularVelocity sets L = I_world·ω for world rotation r.
func (s *State) SetAngularVelocity(omega mgl64.Vec3, r mgl64.Mat3) {
	worldInertia := r.Mul3(s.BodyInertia).Mul3(r.Transpose())
	s.AngularMomentum = worldInertia.Mul3x1(omega)
	s.Refresh(r)
}

func (s *State) AddForce(f mgl64.Vec3) {
	s.TotalForce = s.TotalForce.Add(f)
}

func (s *State) AddTorque(t mgl64.Vec3) {
	s.TotalTorque = s.TotalTorque.Add(t)
}

// AddForceAt applies f at arm (world-space offset from the centre of mass).
// Torque follows the cross(force, arm) convention used throughout.
func (s *State) AddForceAt(f, arm mgl64.Vec3) {
	s.AddForce(f)
	s.AddTorque(f.Cross(arm))
}

func (s *State) ClearAccumulators() {
	s.TotalForce = mgl64.Vec3{}
	s.TotalTorque = mgl64.Vec3{}
}

func (s *State) KineticEnergy() float64 {
	return 0.5*s.LinearMomentum.Dot(s.LinearVelocity) + 0.5*s.AngularMomentum.Dot(s.AngularVelocity)
}

func (s *State) IsFinite() bool {
	return orient.VecFinite(s.LinearMomentum) &&
		orient.VecFinite(s.AngularMomentum) &&
		orient.VecFinite(s.LinearVelocity) &&
		orient.VecFinite(s.AngularVelocity) &&
		orient.MatFinite(s.WorldInverseInertia)
}
