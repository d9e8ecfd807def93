package engine

import (
	"errors"
	"math"

	"github.com/rs/zerolog"
	"github.com/san-kum/rovsim/internal/body"
	"github.com/san-kum/rovsim/internal/hydro"
	"github.com/san-kum/rovsim/internal/integrators"
	"github.com/san-kum/rovsim/internal/transform"
)

// Entity is anything the engine can step: a transform in the arena plus the
// rigid-body state that drives it.
type Entity interface {
	Handle() transform.Handle
	RigidBody() *body.State
}

// DragProvider is implemented by entities that move through a fluid.
type DragProvider interface {
	Drag() (linear, angular hydro.Drag)
}

type Report struct {
	Tick    uint64
	Stepped int
	Skipped []*InstabilityError
}

func (r Report) Err() error {
	if len(r.Skipped) == 0 {
		return nil
	}
	errs := make([]error, len(r.Skipped))
	for i, s := range r.Skipped {
		errs[i] = s
	}
	return errors.Join(errs...)
}

// Engine collects entities during the update pass and integrates them all in
// Commit. It is driven from a single goroutine and never blocks.
type Engine struct {
	arena   *transform.Arena
	stepper integrators.Stepper
	log     zerolog.Logger

	pending []Entity
	seen    map[transform.Handle]struct{}
	tick    uint64
}

func New(arena *transform.Arena, stepper integrators.Stepper, log zerolog.Logger) *Engine {
	if stepper == nil {
		stepper = integrators.NewRK4()
	}
	return &Engine{
		arena:   arena,
		stepper: stepper,
		log:     log.With().Str("component", "engine").Logger(),
		seen:    make(map[transform.Handle]struct{}),
	}
}

func (e *Engine) Stepper() integrators.Stepper { return e.stepper }

func (e *Engine) Tick() uint64 { return e.tick }

func (e *Engine) Pending() int { return len(e.pending) }

// Register queues ent for the next Commit. A second registration within the
// same tick is ignored and reported as false.
func (e *Engine) Register(ent Entity) bool {
	h := ent.Handle()
	if _, dup := e.seen[h]; dup {
		e.log.Debug().Uint64("tick", e.tick).Msg("duplicate registration ignored")
		return false
	}
	e.seen[h] = struct{}{}
	e.pending = append(e.pending, ent)
	return true
}

// Commit steps every registered entity by dt and writes the results back.
// An entity whose step goes non-finite keeps its previous state and is listed
// in the report; the rest of the batch is unaffected. Accumulators of all
// registered entities are zeroed and the registration list is emptied even
// when dt is rejected; a rejected tick does not advance the tick counter.
func (e *Engine) Commit(dt float64) (Report, error) {
	defer e.reset()

	if !(dt > 0) || math.IsInf(dt, 0) {
		for _, ent := range e.pending {
			ent.RigidBody().ClearAccumulators()
		}
		return Report{Tick: e.tick}, ErrInvalidTimestep
	}

	e.tick++
	report := Report{Tick: e.tick}

	for _, ent := range e.pending {
		if err := e.commitOne(ent, dt); err != nil {
			se := &InstabilityError{Handle: ent.Handle(), Tick: e.tick, Wrapped: err}
			report.Skipped = append(report.Skipped, se)
			e.log.Warn().Err(err).Stringer("handle", se.Handle).Uint64("tick", e.tick).Msg("entity commit skipped")
			continue
		}
		report.Stepped++
	}

	return report, nil
}

func (e *Engine) commitOne(ent Entity, dt float64) error {
	rb := ent.RigidBody()
	defer rb.ClearAccumulators()

	h := ent.Handle()
	tr, err := e.arena.Get(h)
	if err != nil {
		return err
	}
	parent, err := e.arena.ParentRotation(h)
	if err != nil {
		return err
	}
	pm, err := e.arena.ParentMatrix(h)
	if err != nil {
		return err
	}

	env := integrators.Env{Parent: parent, ParentLinear: pm.Mat3()}
	if dp, ok := ent.(DragProvider); ok {
		env.LinearDrag, env.AngularDrag = dp.Drag()
	}

	st := *rb
	e.stepper.Step(&tr, &st, env, dt)

	if !tr.IsFinite() || !st.IsFinite() {
		return ErrNumericalInstability
	}

	if err := e.arena.Set(h, tr); err != nil {
		return err
	}
	*rb = st
	return nil
}

func (e *Engine) reset() {
	for i := range e.pending {
		e.pending[i] = nil
	}
	e.pending = e.pending[:0]
	clear(e.seen)
}
