package engine

import (
	"errors"
	"fmt"

	"github.com/san-kum/rovsim/internal/transform"
)

var (
	// ErrNumericalInstability indicates a step produced NaN or Inf.
	ErrNumericalInstability = errors.New("engine: numerical instability (NaN or Inf after step)")

	// ErrInvalidTimestep indicates a non-positive or non-finite dt.
	ErrInvalidTimestep = errors.New("engine: timestep must be positive and finite")
)

// InstabilityError reports one entity whose commit was skipped this tick,
// either because its step went non-finite or its handle no longer resolves.
type InstabilityError struct {
	Handle  transform.Handle
	Tick    uint64
	Wrapped error
}

func (e *InstabilityError) Error() string {
	return fmt.Sprintf("entity %s tick %d: %v", e.Handle, e.Tick, e.Wrapped)
}

func (e *InstabilityError) Unwrap() error {
	return e.Wrapped
}
