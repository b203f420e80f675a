// Package tui provides a Bubble Tea-based terminal UI for provisioning runs.
package tui

// PhaseStatus is the display status of one phase.
type PhaseStatus string

const (
	PhaseStatusStarted   PhaseStatus = "started"
	PhaseStatusSkipped   PhaseStatus = "skipped"
	PhaseStatusReapplied PhaseStatus = "reapplied"
	PhaseStatusCompleted PhaseStatus = "completed"
	PhaseStatusFailed    PhaseStatus = "failed"
)

// PhaseMsg reports progress of one provisioning phase.
type PhaseMsg struct {
	Phase  string
	Status PhaseStatus
	Err    error
}

// VerifyMsg reports convergence progress after the phases.
type VerifyMsg struct {
	Ready    []string
	NotReady []string
	Done     bool
	TimedOut bool
}

// TickMsg is sent periodically to refresh the display.
type TickMsg struct{}

// ErrMsg carries an error.
type ErrMsg struct{ Err error }

// DoneMsg signals that the run is complete.
type DoneMsg struct{}
