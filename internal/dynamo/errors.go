package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for model simulation.
var (
	// ErrInvalidState indicates a state vector with NaN or Inf components.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrUnstable indicates the integration became numerically unstable.
	ErrUnstable = errors.New("dynamo: integration unstable (state diverged)")

	// ErrDimensionMismatch indicates mismatched state/parameter dimensions.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch")

	// ErrStepTooSmall indicates the adaptive timestep fell below its minimum.
	ErrStepTooSmall = errors.New("dynamo: adaptive timestep below minimum")

	// ErrStepRejected indicates an adaptive step whose local error estimate
	// exceeded the tolerance. Callers retry with the suggested smaller step.
	ErrStepRejected = errors.New("dynamo: adaptive step rejected (error above tolerance)")
)

// SimulationError reports an integrator failure at a specific point of the
// run. It is distinct from a merely bad fit: callers that score parameter
// vectors use it to tell "high loss" apart from "integration broke".
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("simulation failed at step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
