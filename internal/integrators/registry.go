package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/rovsim/internal/body"
	"github.com/san-kum/rovsim/internal/transform"
)

// Stepper advances one body by dt in place.
type Stepper interface {
	Name() string
	Step(tr *transform.Transform, st *body.State, env Env, dt float64)
}

var registry = map[string]func() Stepper{
	"rk4":   func() Stepper { return NewRK4() },
	"euler": func() Stepper { return NewEuler() },
}

func Lookup(name string) (Stepper, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s (available: %v)", name, Names())
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
