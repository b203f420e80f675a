package handlers

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/imamik/kubestrap/internal/config"
	"github.com/imamik/kubestrap/internal/state"
)

var (
	statusLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280")).Width(12)
	statusOKStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e"))
	statusBadStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444"))
)

// Status prints the machine's stored provisioning record: a styled
// summary on a terminal, plain YAML otherwise.
func Status(_ context.Context, configPath string) error {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}

	nodeState, err := store.Load(cfg.MachineID)
	if err != nil {
		return err
	}
	if nodeState == nil {
		fmt.Printf("machine %s: unprovisioned, no state recorded\n", cfg.MachineID)
		return nil
	}

	if isatty.IsTerminal(os.Stdout.Fd()) {
		fmt.Print(renderStatus(nodeState))
		return nil
	}

	out, err := yaml.Marshal(nodeState)
	if err != nil {
		return fmt.Errorf("failed to render state: %w", err)
	}
	fmt.Print(string(out))
	return nil
}

func renderStatus(s *state.NodeState) string {
	var b strings.Builder

	row := func(label, value string) {
		b.WriteString(statusLabelStyle.Render(label))
		b.WriteString(value)
		b.WriteByte('\n')
	}

	row("machine", s.MachineID)
	row("role", s.Role)

	statusLine := statusOKStyle.Render(string(s.Status))
	if s.Status == state.StatusFailed {
		statusLine = statusBadStyle.Render(string(s.Status))
	}
	row("status", statusLine)

	if len(s.CompletedPhases) > 0 {
		row("completed", strings.Join(s.CompletedPhases, ", "))
	}
	if s.FailedPhase != "" {
		row("failed", statusBadStyle.Render(fmt.Sprintf("%s: %s", s.FailedPhase, s.FailureMessage)))
	}
	if !s.UpdatedAt.IsZero() {
		row("updated", s.UpdatedAt.Format("2006-01-02 15:04:05 MST"))
	}

	return b.String()
}
