package entity

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rovsim/internal/body"
	"github.com/san-kum/rovsim/internal/hydro"
	"github.com/san-kum/rovsim/internal/scene"
	"github.com/san-kum/rovsim/internal/transform"
)

// RigidBody is a transform in the scene arena driven by a body.State. It
// registers itself with the engine on every Update.
type RigidBody struct {
	handle transform.Handle
	arena  *transform.Arena
	state  body.State

	LinearDrag  hydro.Drag
	AngularDrag hydro.Drag
}

func NewRigidBody(c *scene.Context, tr transform.Transform, st body.State) *RigidBody {
	rb := &RigidBody{
		handle: c.Arena.Add(tr),
		arena:  c.Arena,
		state:  st,
	}
	if r, err := c.Arena.WorldRotation(rb.handle); err == nil {
		rb.state.Refresh(r)
	}
	return rb
}

func (rb *RigidBody) Handle() transform.Handle { return rb.handle }

func (rb *RigidBody) RigidBody() *body.State { return &rb.state }

func (rb *RigidBody) Drag() (hydro.Drag, hydro.Drag) {
	return hydro.Or(rb.LinearDrag), hydro.Or(rb.AngularDrag)
}

func (rb *RigidBody) Update(c *scene.Context) error {
	c.Engine.Register(rb)
	return nil
}

// Pose is the committed local transform.
func (rb *RigidBody) Pose() (transform.Transform, error) {
	return rb.arena.Get(rb.handle)
}

func (rb *RigidBody) WorldRotation() (mgl64.Mat3, error) {
	return rb.arena.WorldRotation(rb.handle)
}

func (rb *RigidBody) WorldPosition() (mgl64.Vec3, error) {
	return rb.arena.WorldPosition(rb.handle)
}

// AddForce applies a world-space force at a world-space arm from the centre
// of mass.
func (rb *RigidBody) AddForce(force, arm mgl64.Vec3) {
	rb.state.AddForceAt(force, arm)
}

// AddForceLocal applies a body-frame force at a body-frame arm, rotating both
// into world space with the committed pose.
func (rb *RigidBody) AddForceLocal(force, arm mgl64.Vec3) error {
	r, err := rb.WorldRotation()
	if err != nil {
		return err
	}
	rb.state.AddForceAt(r.Mul3x1(force), r.Mul3x1(arm))
	return nil
}
