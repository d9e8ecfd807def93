package engine_test

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"

	"github.com/san-kum/rovsim/internal/body"
	"github.com/san-kum/rovsim/internal/engine"
	"github.com/san-kum/rovsim/internal/hydro"
	"github.com/san-kum/rovsim/internal/integrators"
	"github.com/san-kum/rovsim/internal/orient"
	"github.com/san-kum/rovsim/internal/transform"
)

type testEntity struct {
	h  transform.Handle
	st body.State
}

func (e *testEntity) Handle() transform.Handle { return e.h }
func (e *testEntity) RigidBody() *body.State   { return &e.st }

type draggy struct {
	testEntity
	linear hydro.Drag
}

func (d *draggy) Drag() (hydro.Drag, hydro.Drag) { return d.linear, hydro.None{} }

func newEntity(arena *transform.Arena, pos mgl64.Vec3) *testEntity {
	st, err := body.New(2, mgl64.Diag3(mgl64.Vec3{1, 1, 1}), mgl64.Vec3{})
	Expect(err).NotTo(HaveOccurred())
	return &testEntity{h: arena.Add(transform.At(pos, orient.Identity())), st: st}
}

func position(arena *transform.Arena, h transform.Handle) mgl64.Vec3 {
	tr, err := arena.Get(h)
	Expect(err).NotTo(HaveOccurred())
	return tr.Position
}

var _ = Describe("Engine", func() {
	var (
		arena *transform.Arena
		eng   *engine.Engine
	)

	BeforeEach(func() {
		arena = transform.NewArena()
		eng = engine.New(arena, integrators.NewRK4(), zerolog.Nop())
	})

	Describe("Register", func() {
		It("accepts an entity once per tick", func() {
			ent := newEntity(arena, mgl64.Vec3{})
			Expect(eng.Register(ent)).To(BeTrue())
			Expect(eng.Register(ent)).To(BeFalse())
			Expect(eng.Pending()).To(Equal(1))
		})

		It("accepts the entity again after a commit", func() {
			ent := newEntity(arena, mgl64.Vec3{})
			eng.Register(ent)
			_, err := eng.Commit(0.01)
			Expect(err).NotTo(HaveOccurred())
			Expect(eng.Pending()).To(BeZero())
			Expect(eng.Register(ent)).To(BeTrue())
		})

		It("defaults to rk4 without a stepper", func() {
			Expect(engine.New(arena, nil, zerolog.Nop()).Stepper().Name()).To(Equal("rk4"))
		})
	})

	Describe("Commit", func() {
		It("leaves a body at rest untouched", func() {
			ent := newEntity(arena, mgl64.Vec3{1, 2, 3})
			for i := 0; i < 100; i++ {
				eng.Register(ent)
				_, err := eng.Commit(0.01)
				Expect(err).NotTo(HaveOccurred())
			}
			tr, _ := arena.Get(ent.h)
			Expect(tr.Position).To(Equal(mgl64.Vec3{1, 2, 3}))
			Expect(tr.Orientation).To(Equal(orient.Identity()))
			Expect(ent.st.LinearMomentum).To(Equal(mgl64.Vec3{}))
			Expect(eng.Tick()).To(Equal(uint64(100)))
		})

		It("moves a pushed body and zeroes its accumulators", func() {
			ent := newEntity(arena, mgl64.Vec3{})
			ent.st.AddForce(mgl64.Vec3{4, 0, 0})
			eng.Register(ent)

			report, err := eng.Commit(0.5)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Stepped).To(Equal(1))
			Expect(report.Err()).NotTo(HaveOccurred())

			// x = 0.5 * (F/m) * t^2
			Expect(position(arena, ent.h).X()).To(BeNumerically("~", 0.25, 1e-12))
			Expect(ent.st.LinearVelocity.X()).To(BeNumerically("~", 1, 1e-12))
			Expect(ent.st.TotalForce).To(Equal(mgl64.Vec3{}))
			Expect(ent.st.TotalTorque).To(Equal(mgl64.Vec3{}))
		})

		It("never touches unregistered entities", func() {
			ent := newEntity(arena, mgl64.Vec3{})
			ent.st.AddForce(mgl64.Vec3{0, 1, 0})
			_, err := eng.Commit(0.01)
			Expect(err).NotTo(HaveOccurred())
			Expect(ent.st.TotalForce).To(Equal(mgl64.Vec3{0, 1, 0}))
			Expect(position(arena, ent.h)).To(Equal(mgl64.Vec3{}))
		})

		DescribeTable("rejects invalid timesteps",
			func(dt float64) {
				ent := newEntity(arena, mgl64.Vec3{})
				ent.st.AddForce(mgl64.Vec3{1, 0, 0})
				eng.Register(ent)

				report, err := eng.Commit(dt)
				Expect(err).To(MatchError(engine.ErrInvalidTimestep))
				Expect(report.Stepped).To(BeZero())
				Expect(eng.Tick()).To(BeZero())
				Expect(eng.Pending()).To(BeZero())
				Expect(ent.st.TotalForce).To(Equal(mgl64.Vec3{}))
				Expect(position(arena, ent.h)).To(Equal(mgl64.Vec3{}))
			},
			Entry("zero", 0.0),
			Entry("negative", -0.01),
			Entry("NaN", math.NaN()),
			Entry("infinite", math.Inf(1)),
		)

		It("keeps the previous state of a body that goes non-finite", func() {
			bad := newEntity(arena, mgl64.Vec3{1, 0, 0})
			good := newEntity(arena, mgl64.Vec3{})
			bad.st.AddForce(mgl64.Vec3{math.NaN(), 0, 0})
			good.st.AddForce(mgl64.Vec3{2, 0, 0})
			before := bad.st
			eng.Register(bad)
			eng.Register(good)

			report, err := eng.Commit(0.1)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Stepped).To(Equal(1))
			Expect(report.Skipped).To(HaveLen(1))
			Expect(report.Skipped[0].Handle).To(Equal(bad.h))
			Expect(report.Err()).To(MatchError(engine.ErrNumericalInstability))

			var ie *engine.InstabilityError
			Expect(errors.As(report.Err(), &ie)).To(BeTrue())
			Expect(ie.Tick).To(Equal(uint64(1)))

			Expect(position(arena, bad.h)).To(Equal(mgl64.Vec3{1, 0, 0}))
			Expect(bad.st.LinearMomentum).To(Equal(before.LinearMomentum))
			Expect(bad.st.TotalForce).To(Equal(mgl64.Vec3{}))
			Expect(position(arena, good.h).X()).To(BeNumerically(">", 0))
		})

		It("reports entities whose transform was removed", func() {
			ent := newEntity(arena, mgl64.Vec3{})
			Expect(arena.Remove(ent.h)).To(Succeed())
			eng.Register(ent)

			report, err := eng.Commit(0.01)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Err()).To(MatchError(transform.ErrStaleHandle))
		})

		It("expresses displacement in the parent frame", func() {
			parent := arena.Add(transform.At(mgl64.Vec3{}, orient.FromAxisAngleDeg(orient.AxisY, 90)))
			child := newEntity(arena, mgl64.Vec3{})
			Expect(arena.SetParent(child.h, parent)).To(Succeed())

			child.st.AddForce(mgl64.Vec3{2, 0, 0})
			eng.Register(child)
			_, err := eng.Commit(1)
			Expect(err).NotTo(HaveOccurred())

			local := position(arena, child.h)
			Expect(local.X()).To(BeNumerically("~", 0, 1e-12))
			Expect(local.Z()).To(BeNumerically("~", 0.5, 1e-12))

			world, err := arena.WorldPosition(child.h)
			Expect(err).NotTo(HaveOccurred())
			Expect(world.X()).To(BeNumerically("~", 0.5, 1e-12))
			Expect(world.Z()).To(BeNumerically("~", 0, 1e-12))
		})

		It("moves a body under a scaled parent by v*dt in world space", func() {
			pt := transform.At(mgl64.Vec3{1, 0, 0}, orient.FromAxisAngleDeg(orient.AxisY, 90))
			pt.Scale = mgl64.Vec3{3, 3, 3}
			parent := arena.Add(pt)
			child := newEntity(arena, mgl64.Vec3{})
			Expect(arena.SetParent(child.h, parent)).To(Succeed())
			child.st.SetLinearVelocity(mgl64.Vec3{0.6, 0, 0})

			before, err := arena.WorldPosition(child.h)
			Expect(err).NotTo(HaveOccurred())

			eng.Register(child)
			_, err = eng.Commit(0.5)
			Expect(err).NotTo(HaveOccurred())

			after, err := arena.WorldPosition(child.h)
			Expect(err).NotTo(HaveOccurred())
			moved := after.Sub(before)
			Expect(moved.X()).To(BeNumerically("~", 0.3, 1e-12))
			Expect(moved.Y()).To(BeNumerically("~", 0, 1e-12))
			Expect(moved.Z()).To(BeNumerically("~", 0, 1e-12))
		})

		It("applies the drag an entity provides", func() {
			free := newEntity(arena, mgl64.Vec3{})
			dragged := &draggy{
				testEntity: *newEntity(arena, mgl64.Vec3{}),
				linear:     hydro.NewQuadratic(hydro.WaterDensity, 1, 0.1, 1000),
			}
			free.st.SetLinearVelocity(mgl64.Vec3{1, 0, 0})
			dragged.st.SetLinearVelocity(mgl64.Vec3{1, 0, 0})

			for i := 0; i < 50; i++ {
				eng.Register(free)
				eng.Register(dragged)
				_, err := eng.Commit(0.02)
				Expect(err).NotTo(HaveOccurred())
			}

			Expect(free.st.LinearVelocity.X()).To(BeNumerically("~", 1, 1e-12))
			Expect(dragged.st.LinearVelocity.X()).To(BeNumerically("<", 0.5))
			Expect(dragged.st.LinearVelocity.X()).To(BeNumerically(">", 0))
		})
	})
})
