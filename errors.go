package bigqc

import (
	"errors"
	"fmt"
)

// Errors used throughout
var (
	ErrGradientCount    = errors.New("bigqc: gradient count does not match twice the coordinate count")
	ErrGradientShape    = errors.New("bigqc: gradient length does not match the molecule")
	ErrNonFiniteHessian = errors.New("bigqc: non-finite entry in hessian")
	ErrUnknownElement   = errors.New("bigqc: no mass tabulated for element")
	ErrBadConditions    = errors.New("bigqc: temperature and pressure must be positive")
	ErrUnknownProgram   = errors.New("bigqc: no adapter registered for program")
	ErrQueueClosed      = errors.New("bigqc: queue has been shut down")
	ErrNoResult         = errors.New("bigqc: no stored result for job")
	ErrNotGradient      = errors.New("bigqc: output does not contain a gradient")
	ErrNotHessian       = errors.New("bigqc: output does not contain a hessian")
)

// UnknownProgramError rejects a submission naming a program with no
// registered adapter. It is an infrastructure error, distinct from a
// ProgramFailure: nothing ran.
type UnknownProgramError struct {
	Program string
}

func (e *UnknownProgramError) Error() string {
	return fmt.Sprintf("%v: %q", ErrUnknownProgram, e.Program)
}

func (e *UnknownProgramError) Unwrap() error { return ErrUnknownProgram }

// FailureError is the raised form of a ProgramFailure: a remote
// single-point calculation failed and the failure record traveled back
// across the queue to the caller awaiting the result. Retrieve it with
// errors.As to inspect the captured diagnostics.
type FailureError struct {
	Failure *ProgramFailure
}

func (e *FailureError) Error() string {
	return fmt.Sprintf("bigqc: %s failed: %s", e.Failure.Program, e.Failure.Message)
}
