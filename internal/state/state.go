package state

import (
	"fmt"
	"time"
)

// Status describes how far a machine has progressed.
type Status string

const (
	// StatusUnprovisioned is the initial status of a machine with no
	// completed phases.
	StatusUnprovisioned Status = "unprovisioned"
	// StatusCommonPhasesComplete means every role-independent phase
	// has completed.
	StatusCommonPhasesComplete Status = "common-phases-complete"
	// StatusRolePhasesComplete means every phase for the machine's
	// role has completed, but convergence is not yet confirmed.
	StatusRolePhasesComplete Status = "role-phases-complete"
	// StatusVerified means the machine is a confirmed cluster member.
	StatusVerified Status = "verified"
	// StatusFailed means a phase failed; FailedPhase and
	// FailureMessage carry the detail.
	StatusFailed Status = "failed"
)

// NodeState is the durable record for one machine.
type NodeState struct {
	MachineID   string `yaml:"machine_id"`
	ClusterName string `yaml:"cluster_name"`
	Role        string `yaml:"role"`
	Status      Status `yaml:"status"`

	// CompletedPhases lists phase IDs in completion order. The list is
	// always a prefix of the phase catalog for the machine's role.
	CompletedPhases []string `yaml:"completed_phases"`

	FailedPhase    string `yaml:"failed_phase,omitempty"`
	FailureMessage string `yaml:"failure_message,omitempty"`

	UpdatedAt time.Time `yaml:"updated_at"`
}

// NewNodeState returns the record for a machine that has never been
// provisioned.
func NewNodeState(machineID, clusterName, role string) *NodeState {
	return &NodeState{
		MachineID:   machineID,
		ClusterName: clusterName,
		Role:        role,
		Status:      StatusUnprovisioned,
	}
}

// Completed reports whether the named phase has already completed.
func (s *NodeState) Completed(phaseID string) bool {
	for _, id := range s.CompletedPhases {
		if id == phaseID {
			return true
		}
	}
	return false
}

// MarkCompleted appends a phase to the completed list. The phase must be
// the next entry of the catalog; appending out of order corrupts the
// resume point, so it is rejected.
func (s *NodeState) MarkCompleted(phaseID string, catalog []string) error {
	next := len(s.CompletedPhases)
	if next >= len(catalog) {
		return fmt.Errorf("phase %s: all %d phases already completed", phaseID, len(catalog))
	}
	if catalog[next] != phaseID {
		return fmt.Errorf("phase %s completed out of order, expected %s", phaseID, catalog[next])
	}

	s.CompletedPhases = append(s.CompletedPhases, phaseID)
	s.FailedPhase = ""
	s.FailureMessage = ""
	return nil
}

// MarkFailed records a phase failure.
func (s *NodeState) MarkFailed(phaseID string, err error) {
	s.Status = StatusFailed
	s.FailedPhase = phaseID
	s.FailureMessage = err.Error()
}

// ClearFailure resets failure bookkeeping before a retry run.
func (s *NodeState) ClearFailure() {
	if s.Status == StatusFailed {
		s.Status = StatusUnprovisioned
		if len(s.CompletedPhases) > 0 {
			s.Status = StatusCommonPhasesComplete
		}
	}
	s.FailedPhase = ""
	s.FailureMessage = ""
}

// ValidateAgainst checks that the completed list is a prefix of the
// catalog. A mismatch means the catalog changed underneath an old state
// file and resuming would skip or repeat the wrong phases.
func (s *NodeState) ValidateAgainst(catalog []string) error {
	if len(s.CompletedPhases) > len(catalog) {
		return fmt.Errorf("state lists %d completed phases but the catalog has %d",
			len(s.CompletedPhases), len(catalog))
	}
	for i, id := range s.CompletedPhases {
		if catalog[i] != id {
			return fmt.Errorf("completed phase %q at position %d does not match catalog phase %q",
				id, i, catalog[i])
		}
	}
	return nil
}
