package body

import (
	"errors"
	"fmt"
)

// Construction errors. Every constructor failure wraps one of these in a
// *ConfigurationError.
var (
	// ErrInvalidMass indicates a non-positive or non-finite mass.
	ErrInvalidMass = errors.New("body: mass must be positive and finite")

	// ErrDegenerateGeometry indicates geometry that cannot yield an
	// invertible inertia tensor: no referenced vertices, a bad index, or a
	// singular tensor.
	ErrDegenerateGeometry = errors.New("body: degenerate geometry")

	// ErrInvalidInertia indicates an explicitly supplied inertia tensor that
	// is singular or non-finite.
	ErrInvalidInertia = errors.New("body: inertia tensor is singular or non-finite")
)

// ConfigurationError reports which input rejected a body construction.
type ConfigurationError struct {
	Field   string
	Detail  string
	Wrapped error
}

func (e *ConfigurationError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s (%s)", e.Wrapped, e.Field)
	}
	return fmt.Sprintf("%s (%s): %s", e.Wrapped, e.Field, e.Detail)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Wrapped
}

func configErr(field string, wrapped error, format string, args ...any) error {
	return &ConfigurationError{Field: field, Detail: fmt.Sprintf(format, args...), Wrapped: wrapped}
}
