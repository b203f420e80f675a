package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// PhaseItem is one catalog phase as displayed.
type PhaseItem struct {
	ID      string
	Status  PhaseStatus
	Started bool
	Err     error
}

// Model is the Bubble Tea model for a provisioning run.
type Model struct {
	ClusterName string
	MachineID   string
	Role        string

	Phases []PhaseItem

	// Convergence display, populated after the phases
	Verifying bool
	Ready     []string
	NotReady  []string

	StartTime time.Time

	// Animation
	SpinnerFrame int

	// UI state
	Width  int
	Height int
	Err    error
	Done   bool
}

// NewModel creates a model for a provisioning run over the given phase
// catalog.
func NewModel(clusterName, machineID, role string, phaseIDs []string) Model {
	phases := make([]PhaseItem, len(phaseIDs))
	for i, id := range phaseIDs {
		phases[i] = PhaseItem{ID: id}
	}
	return Model{
		ClusterName: clusterName,
		MachineID:   machineID,
		Role:        role,
		Phases:      phases,
		StartTime:   time.Now(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case PhaseMsg:
		m.updatePhase(msg)
		if msg.Err != nil {
			m.Err = msg.Err
			return m, tea.Quit
		}

	case VerifyMsg:
		m.Verifying = !msg.Done
		m.Ready = msg.Ready
		m.NotReady = msg.NotReady
		if msg.TimedOut {
			m.Err = errTimedOut
			return m, tea.Quit
		}

	case TickMsg:
		m.SpinnerFrame++
		return m, tickCmd()

	case ErrMsg:
		m.Err = msg.Err
		return m, tea.Quit

	case DoneMsg:
		m.Done = true
		return m, tea.Quit
	}

	return m, nil
}

func (m *Model) updatePhase(msg PhaseMsg) {
	idx := -1
	for i, phase := range m.Phases {
		if phase.ID == msg.Phase {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}

	// Everything before the reported phase is settled.
	for i := 0; i < idx; i++ {
		if m.Phases[i].Status == "" || m.Phases[i].Status == PhaseStatusStarted {
			m.Phases[i].Status = PhaseStatusCompleted
		}
	}

	m.Phases[idx].Status = msg.Status
	m.Phases[idx].Started = true
	m.Phases[idx].Err = msg.Err
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View implements tea.Model.
func (m Model) View() string {
	return renderView(m)
}
