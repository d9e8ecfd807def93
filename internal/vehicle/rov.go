package vehicle

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rovsim/internal/body"
	"github.com/san-kum/rovsim/internal/entity"
	"github.com/san-kum/rovsim/internal/mesh"
	"github.com/san-kum/rovsim/internal/orient"
	"github.com/san-kum/rovsim/internal/scene"
	"github.com/san-kum/rovsim/internal/setpoint"
	"github.com/san-kum/rovsim/internal/transform"
)

// nodeScale is the uniform scale of the visual thruster nodes.
const nodeScale = 0.1

// ROV is a box hull driven by eight thrusters whose power comes from a
// setpoint board.
type ROV struct {
	hull   *entity.RigidBody
	geom   mesh.Geometry
	mounts []ThrusterMount
	nodes  []transform.Handle
	board  *setpoint.Board
	power  [setpoint.Count]float64
}

func New(c *scene.Context, cfg Config, board *setpoint.Board) (*ROV, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	com := cfg.CenterOfMass
	geom := mesh.Box(cfg.HullExtents)
	st, err := body.FromMesh(cfg.Mass, geom, cfg.HullScale, &com)
	if err != nil {
		return nil, err
	}

	q := cfg.Orientation
	if q == (mgl64.Quat{}) {
		q = orient.Identity()
	}
	tr := transform.At(cfg.Position, q.Normalize())
	tr.Scale = cfg.HullScale

	st.SetLinearVelocity(cfg.LinearVelocity)
	st.SetAngularVelocity(cfg.AngularVelocity, tr.Rotation())

	hull := entity.NewRigidBody(c, tr, st)
	hull.LinearDrag = cfg.LinearDrag
	hull.AngularDrag = cfg.AngularDrag

	r := &ROV{
		hull:   hull,
		geom:   geom,
		mounts: make([]ThrusterMount, len(cfg.Thrusters)),
		nodes:  make([]transform.Handle, len(cfg.Thrusters)),
		board:  board,
	}
	scaledCOM := tr.ScaleVec(com)
	for i, m := range cfg.Thrusters {
		m.Direction = m.Direction.Normalize()
		r.mounts[i] = m

		// node positions live in the hull's scaled frame
		p := m.Position.Add(scaledCOM)
		local := mgl64.Vec3{p[0] / tr.Scale[0], p[1] / tr.Scale[1], p[2] / tr.Scale[2]}
		node := transform.At(local, orient.Align(orient.AxisY, m.Direction))
		node.Scale = mgl64.Vec3{nodeScale, nodeScale, nodeScale}

		h := c.Arena.Add(node)
		if err := c.Arena.SetParent(h, hull.Handle()); err != nil {
			return nil, err
		}
		r.nodes[i] = h
	}

	return r, nil
}

func (r *ROV) Hull() *entity.RigidBody { return r.hull }

// Geometry is the unscaled hull mesh; the hull transform carries the scale.
func (r *ROV) Geometry() mesh.Geometry { return r.geom }

func (r *ROV) Mounts() []ThrusterMount { return r.mounts }

// Nodes are the thruster transforms parented to the hull.
func (r *ROV) Nodes() []transform.Handle { return r.nodes }

// Power is the setpoint snapshot applied by the last Update.
func (r *ROV) Power() [setpoint.Count]float64 { return r.power }

// Thrust is the force magnitude each thruster produced in the last Update.
func (r *ROV) Thrust() []float64 {
	out := make([]float64, len(r.mounts))
	for i, m := range r.mounts {
		out[i] = r.power[i] * m.MaxForce
	}
	return out
}

// Update reads the board once, accumulates every thruster's force and torque
// on the hull, and registers the hull with the engine.
func (r *ROV) Update(c *scene.Context) error {
	if r.board != nil {
		r.board.Snapshot(&r.power)
	}
	for i, m := range r.mounts {
		if r.power[i] == 0 {
			continue
		}
		f := m.Direction.Mul(r.power[i] * m.MaxForce)
		if err := r.hull.AddForceLocal(f, m.Position); err != nil {
			return err
		}
	}
	return r.hull.Update(c)
}
