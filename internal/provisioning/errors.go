package provisioning

import (
	"errors"
	"fmt"
)

// ErrorKind classifies where in a phase's lifecycle the failure happened.
type ErrorKind string

const (
	// KindPreconditionUnverifiable means the precondition probe itself
	// errored, so the phase's applicability is unknown.
	KindPreconditionUnverifiable ErrorKind = "precondition-unverifiable"
	// KindApplyFailed means the phase's work errored.
	KindApplyFailed ErrorKind = "apply-failed"
	// KindPostconditionFailed means apply returned cleanly but the
	// expected effect is not observable.
	KindPostconditionFailed ErrorKind = "postcondition-failed"
	// KindMissingPrerequisite means an input the phase needs (such as a
	// join credential) was absent, so the phase never started.
	KindMissingPrerequisite ErrorKind = "missing-prerequisite"
)

// PhaseError wraps a failure with the phase it happened in and its kind.
type PhaseError struct {
	Phase string
	Kind  ErrorKind
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("phase %s: %s: %v", e.Phase, e.Kind, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

// NewPhaseError wraps err for the named phase.
func NewPhaseError(phase string, kind ErrorKind, err error) *PhaseError {
	return &PhaseError{Phase: phase, Kind: kind, Err: err}
}

// AsPhaseError extracts a PhaseError from an error chain.
func AsPhaseError(err error) (*PhaseError, bool) {
	var phaseErr *PhaseError
	if errors.As(err, &phaseErr) {
		return phaseErr, true
	}
	return nil, false
}

// IsKind reports whether err is a PhaseError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	phaseErr, ok := AsPhaseError(err)
	return ok && phaseErr.Kind == kind
}
