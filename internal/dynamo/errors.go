package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for propagation runs.
var (
	// ErrInvalidState indicates a state containing NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrInvalidStepSize indicates a step size that is not strictly positive.
	ErrInvalidStepSize = errors.New("dynamo: step size must be positive")

	// ErrInvalidRunTime indicates a negative or non-finite run time.
	ErrInvalidRunTime = errors.New("dynamo: run time must be finite and non-negative")

	// ErrNoBodies indicates an empty body list.
	ErrNoBodies = errors.New("dynamo: at least one body is required")

	// ErrDuplicateBody indicates the same identifier listed twice.
	ErrDuplicateBody = errors.New("dynamo: duplicate body identifier")

	// ErrUnknownBody indicates an identifier missing from the constants table.
	ErrUnknownBody = errors.New("dynamo: unknown body")

	// ErrDimensionMismatch indicates mismatched state and body counts.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and bodies")
)

// SimulationError wraps an error with the step at which it occurred.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
