// Package provisioning drives a machine through its ordered phase
// catalog.
//
// A phase is the unit of work: it declares a precondition (is it worth
// doing), an apply (do it), and a postcondition (did it take). The
// orchestrator walks the catalog in order, skipping phases recorded as
// complete whose postcondition still holds, re-applying phases whose
// effect drifted, and halting at the first failure with durable state
// pointing at the resume point.
//
// The concrete phases live in the catalog subpackage; this package owns
// the execution model, the error taxonomy, and observability.
package provisioning
