package provisioning

import "context"

// Phase is one idempotent provisioning step.
//
// Precondition reports whether the phase's effect is already in place:
// true means apply can be skipped. Postcondition verifies the effect
// after apply. Both probes return an error only when the check itself
// cannot be performed.
type Phase interface {
	// ID is the stable catalog identifier, e.g. "disable-swap".
	ID() string

	Precondition(ctx context.Context) (bool, error)
	Apply(ctx context.Context) error
	Postcondition(ctx context.Context) (bool, error)
}

// PrerequisiteChecker is implemented by phases that need an external
// input before they can run at all. The orchestrator checks it before
// the precondition; a failure is reported as a missing prerequisite and
// leaves the machine's state untouched.
type PrerequisiteChecker interface {
	CheckPrerequisites(ctx context.Context) error
}
