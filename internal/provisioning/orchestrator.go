package provisioning

import (
	"context"
	"fmt"
	"time"

	"github.com/imamik/kubestrap/internal/state"
)

// Plan is the ordered phase catalog for one machine role.
type Plan struct {
	Role   Role
	Phases []Phase

	// CommonCount is how many leading phases are role-independent.
	// Completing them moves the machine to CommonPhasesComplete.
	CommonCount int
}

// PhaseIDs returns the catalog as a list of IDs.
func (p Plan) PhaseIDs() []string {
	ids := make([]string, len(p.Phases))
	for i, phase := range p.Phases {
		ids[i] = phase.ID()
	}
	return ids
}

// RunResult summarizes one provisioning run.
type RunResult struct {
	MachineID string
	Role      Role

	Applied   []string // phases whose apply ran this run
	Skipped   []string // phases whose effect was already in place
	Reapplied []string // recorded-complete phases that had drifted

	Status state.Status
}

// Orchestrator executes plans against durable per-machine state.
type Orchestrator struct {
	store       *state.Store
	observer    Observer
	clusterName string

	// PhaseTimeout bounds each phase's apply. Zero means no bound.
	PhaseTimeout time.Duration
}

// NewOrchestrator creates an orchestrator. The observer must not be nil.
func NewOrchestrator(store *state.Store, observer Observer, clusterName string) *Orchestrator {
	return &Orchestrator{
		store:       store,
		observer:    observer,
		clusterName: clusterName,
	}
}

// Run executes the plan for a machine, resuming after any previously
// completed prefix. It holds the machine's exclusive lock for the whole
// run and persists state after every completed phase, so a failure run
// can be retried and picks up at the failed phase.
func (o *Orchestrator) Run(ctx context.Context, machineID string, plan Plan) (*RunResult, error) {
	unlock, err := o.store.Lock(machineID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	nodeState, err := o.store.Load(machineID)
	if err != nil {
		return nil, err
	}
	if nodeState == nil {
		nodeState = state.NewNodeState(machineID, o.clusterName, plan.Role.String())
	}
	if nodeState.Role != plan.Role.String() {
		return nil, fmt.Errorf("machine %s was provisioned as %s, refusing to run as %s",
			machineID, nodeState.Role, plan.Role)
	}

	catalog := plan.PhaseIDs()
	if err := nodeState.ValidateAgainst(catalog); err != nil {
		return nil, fmt.Errorf("state for %s does not match the phase catalog: %w", machineID, err)
	}

	observer := o.observer.WithFields(map[string]string{
		"machine": machineID,
		"role":    plan.Role.String(),
	})

	result := &RunResult{MachineID: machineID, Role: plan.Role}
	resumeAt := len(nodeState.CompletedPhases)

	if resumeAt > 0 {
		observer.Event(Event{
			Type:    EventRunResumed,
			Message: fmt.Sprintf("resuming after %d of %d phases", resumeAt, len(plan.Phases)),
		})
	} else {
		observer.Event(Event{
			Type:    EventRunStarted,
			Message: fmt.Sprintf("provisioning with %d phases", len(plan.Phases)),
		})
	}
	nodeState.ClearFailure()

	for i, phase := range plan.Phases {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		observer.Progress(phase.ID(), i+1, len(plan.Phases))

		var phaseErr error
		if i < resumeAt {
			phaseErr = o.revisitPhase(ctx, observer, phase, result)
		} else {
			phaseErr = o.runPhase(ctx, observer, phase, result)
		}

		if phaseErr != nil {
			// A missing prerequisite means the phase never started,
			// so the stored state stays exactly as it was.
			if !IsKind(phaseErr, KindMissingPrerequisite) {
				nodeState.MarkFailed(phase.ID(), phaseErr)
				if saveErr := o.store.Save(nodeState); saveErr != nil {
					observer.Printf("failed to persist failure state: %v", saveErr)
				}
			}
			result.Status = state.StatusFailed
			recordRun(plan.Role, resultFailed)
			return result, phaseErr
		}

		if i >= resumeAt {
			if err := nodeState.MarkCompleted(phase.ID(), catalog); err != nil {
				return result, err
			}
		}
		nodeState.Status = o.statusAfter(plan, i+1)
		if err := o.store.Save(nodeState); err != nil {
			return result, fmt.Errorf("failed to persist state after phase %s: %w", phase.ID(), err)
		}
	}

	result.Status = nodeState.Status
	observer.Event(Event{
		Type:    EventRunCompleted,
		Message: fmt.Sprintf("all %d phases complete", len(plan.Phases)),
	})
	recordRun(plan.Role, resultSuccess)
	return result, nil
}

// MarkVerified promotes a machine to Verified after convergence.
func (o *Orchestrator) MarkVerified(machineID string) error {
	nodeState, err := o.store.Load(machineID)
	if err != nil {
		return err
	}
	if nodeState == nil {
		return fmt.Errorf("machine %s has no provisioning state", machineID)
	}
	if nodeState.Status != state.StatusRolePhasesComplete && nodeState.Status != state.StatusVerified {
		return fmt.Errorf("machine %s is %s, only fully provisioned machines can be verified",
			machineID, nodeState.Status)
	}

	nodeState.Status = state.StatusVerified
	return o.store.Save(nodeState)
}

// runPhase executes a not-yet-completed phase.
func (o *Orchestrator) runPhase(ctx context.Context, observer Observer, phase Phase, result *RunResult) error {
	if checker, ok := phase.(PrerequisiteChecker); ok {
		if err := checker.CheckPrerequisites(ctx); err != nil {
			LogPhaseFailed(observer, phase.ID(), err)
			return NewPhaseError(phase.ID(), KindMissingPrerequisite, err)
		}
	}

	satisfied, err := phase.Precondition(ctx)
	if err != nil {
		LogPhaseFailed(observer, phase.ID(), err)
		recordPhase(phase.ID(), resultFailed)
		return NewPhaseError(phase.ID(), KindPreconditionUnverifiable, err)
	}
	if satisfied {
		LogPhaseSkipped(observer, phase.ID(), "effect already in place")
		recordPhase(phase.ID(), resultSkipped)
		result.Skipped = append(result.Skipped, phase.ID())
		return nil
	}

	LogPhaseStart(observer, phase.ID())
	start := time.Now()

	if err := o.applyPhase(ctx, phase); err != nil {
		LogPhaseFailed(observer, phase.ID(), err)
		recordPhase(phase.ID(), resultFailed)
		return NewPhaseError(phase.ID(), KindApplyFailed, err)
	}

	if err := o.confirmPostcondition(ctx, phase); err != nil {
		LogPhaseFailed(observer, phase.ID(), err)
		recordPhase(phase.ID(), resultFailed)
		return err
	}

	duration := time.Since(start)
	LogPhaseComplete(observer, phase.ID(), duration)
	recordPhase(phase.ID(), resultApplied)
	observePhaseDuration(phase.ID(), duration.Seconds())
	result.Applied = append(result.Applied, phase.ID())
	return nil
}

// revisitPhase handles a phase recorded as complete: verify the effect
// still holds and re-apply when it drifted.
func (o *Orchestrator) revisitPhase(ctx context.Context, observer Observer, phase Phase, result *RunResult) error {
	holds, err := phase.Precondition(ctx)
	if err != nil {
		LogPhaseFailed(observer, phase.ID(), err)
		recordPhase(phase.ID(), resultFailed)
		return NewPhaseError(phase.ID(), KindPreconditionUnverifiable, err)
	}
	if holds {
		LogPhaseSkipped(observer, phase.ID(), "previously completed, effect holds")
		recordPhase(phase.ID(), resultSkipped)
		result.Skipped = append(result.Skipped, phase.ID())
		return nil
	}

	observer.Event(Event{
		Type:    EventPhaseReapplied,
		Phase:   phase.ID(),
		Message: "effect drifted, applying again",
	})
	start := time.Now()

	if err := o.applyPhase(ctx, phase); err != nil {
		LogPhaseFailed(observer, phase.ID(), err)
		recordPhase(phase.ID(), resultFailed)
		return NewPhaseError(phase.ID(), KindApplyFailed, err)
	}
	if err := o.confirmPostcondition(ctx, phase); err != nil {
		LogPhaseFailed(observer, phase.ID(), err)
		recordPhase(phase.ID(), resultFailed)
		return err
	}

	duration := time.Since(start)
	LogPhaseComplete(observer, phase.ID(), duration)
	recordPhase(phase.ID(), resultReapplied)
	observePhaseDuration(phase.ID(), duration.Seconds())
	result.Reapplied = append(result.Reapplied, phase.ID())
	return nil
}

// applyPhase runs a phase's apply under the per-phase deadline, when one
// is configured.
func (o *Orchestrator) applyPhase(ctx context.Context, phase Phase) error {
	if o.PhaseTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.PhaseTimeout)
		defer cancel()
	}
	return phase.Apply(ctx)
}

func (o *Orchestrator) confirmPostcondition(ctx context.Context, phase Phase) error {
	holds, err := phase.Postcondition(ctx)
	if err != nil {
		return NewPhaseError(phase.ID(), KindPostconditionFailed, err)
	}
	if !holds {
		return NewPhaseError(phase.ID(), KindPostconditionFailed,
			fmt.Errorf("apply succeeded but the expected effect is not observable"))
	}
	return nil
}

func (o *Orchestrator) statusAfter(plan Plan, completed int) state.Status {
	switch {
	case completed >= len(plan.Phases):
		return state.StatusRolePhasesComplete
	case completed >= plan.CommonCount:
		return state.StatusCommonPhasesComplete
	default:
		return state.StatusUnprovisioned
	}
}
