package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/imamik/kubestrap/internal/provisioning"
)

// Notifier bridges provisioning events into a running Bubble Tea
// program. It satisfies the provisioning Observer interface so the
// orchestrator needs no knowledge of the UI.
type Notifier struct {
	send func(tea.Msg)
}

// NewNotifier wraps a message sink, typically (*tea.Program).Send.
func NewNotifier(send func(tea.Msg)) *Notifier {
	return &Notifier{send: send}
}

// Printf implements the Logger interface. Raw log lines have no place
// in the phase display.
func (n *Notifier) Printf(string, ...interface{}) {}

// Event implements provisioning.Observer.
func (n *Notifier) Event(event provisioning.Event) {
	var status PhaseStatus
	switch event.Type {
	case provisioning.EventPhaseStarted:
		status = PhaseStatusStarted
	case provisioning.EventPhaseSkipped:
		status = PhaseStatusSkipped
	case provisioning.EventPhaseReapplied:
		status = PhaseStatusReapplied
	case provisioning.EventPhaseCompleted:
		status = PhaseStatusCompleted
	case provisioning.EventPhaseFailed:
		status = PhaseStatusFailed
	default:
		return
	}

	n.send(PhaseMsg{Phase: event.Phase, Status: status})
}

// Progress implements provisioning.Observer.
func (n *Notifier) Progress(string, int, int) {}

// WithFields implements provisioning.Observer.
func (n *Notifier) WithFields(map[string]string) provisioning.Observer {
	return n
}
