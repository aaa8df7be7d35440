package astrora

import (
	"errors"
	"fmt"
)

// Error kinds returned by the solvers. Match them with errors.Is.
var (
	// ErrInvalidParameter flags an input outside of its domain (position magnitude, time of flight,
	// gravitational parameter, revolution count...). Always reported before any iteration.
	ErrInvalidParameter = errors.New("lambert: invalid parameter")
	// ErrInvalidState flags a geometry or a call shape which admits no unique answer.
	ErrInvalidState = errors.New("lambert: invalid state")
	// ErrConvergence flags an exhausted iteration budget.
	ErrConvergence = errors.New("lambert: convergence failure")
	// ErrNotImplemented is reserved for algorithmic branches which are intentionally deferred.
	ErrNotImplemented = errors.New("lambert: not implemented")
)

// ParameterError details an ErrInvalidParameter.
type ParameterError struct {
	Name       string
	Value      float64
	Constraint string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("%s: %s = %g %s", ErrInvalidParameter, e.Name, e.Value, e.Constraint)
}

// Unwrap allows errors.Is(err, ErrInvalidParameter).
func (e *ParameterError) Unwrap() error {
	return ErrInvalidParameter
}

// ConvergenceError details an ErrConvergence.
type ConvergenceError struct {
	Method     string
	Iterations int
	Tolerance  float64
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("%s: %s did not converge after %d iterations (tolerance %g)", ErrConvergence, e.Method, e.Iterations, e.Tolerance)
}

// Unwrap allows errors.Is(err, ErrConvergence).
func (e *ConvergenceError) Unwrap() error {
	return ErrConvergence
}

func invalidParameter(name string, value float64, constraint string) error {
	return &ParameterError{Name: name, Value: value, Constraint: constraint}
}

func invalidState(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}

func notImplemented(what string) error {
	return fmt.Errorf("%w: %s", ErrNotImplemented, what)
}

// errorKind returns the label used in logs and metrics for the provided error.
func errorKind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidParameter):
		return "invalid_parameter"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrConvergence):
		return "convergence"
	case errors.Is(err, ErrNotImplemented):
		return "not_implemented"
	default:
		return "other"
	}
}
