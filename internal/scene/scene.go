package scene

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/san-kum/rovsim/internal/engine"
	"github.com/san-kum/rovsim/internal/integrators"
	"github.com/san-kum/rovsim/internal/transform"
)

// Updater runs once per tick before the physics commit. It is where entities
// accumulate forces and register with the engine.
type Updater interface {
	Update(c *Context) error
}

type UpdaterFunc func(c *Context) error

func (f UpdaterFunc) Update(c *Context) error { return f(c) }

// Context owns everything one simulation needs: the transform arena, the
// physics engine and the logger. It is not safe for concurrent use.
type Context struct {
	Arena  *transform.Arena
	Engine *engine.Engine
	Logger zerolog.Logger

	updaters []Updater
	elapsed  float64
}

func New(stepper integrators.Stepper, log zerolog.Logger) *Context {
	arena := transform.NewArena()
	return &Context{
		Arena:  arena,
		Engine: engine.New(arena, stepper, log),
		Logger: log,
	}
}

func (c *Context) Add(u Updater) {
	c.updaters = append(c.updaters, u)
}

func (c *Context) Len() int { return len(c.updaters) }

// Elapsed is the simulated time of all accepted ticks.
func (c *Context) Elapsed() float64 { return c.elapsed }

// Tick runs every updater and then commits the engine once. Updater errors do
// not stop the commit; they are joined and returned with the report.
func (c *Context) Tick(dt float64) (engine.Report, error) {
	var errs []error
	for i, u := range c.updaters {
		if err := u.Update(c); err != nil {
			errs = append(errs, fmt.Errorf("updater %d: %w", i, err))
		}
	}

	report, err := c.Engine.Commit(dt)
	if err != nil {
		return report, errors.Join(append(errs, err)...)
	}
	c.elapsed += dt
	return report, errors.Join(errs...)
}
