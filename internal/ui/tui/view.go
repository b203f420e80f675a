package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var errTimedOut = errors.New("cluster did not converge before the timeout")

var spinnerFrames = []string{"|", "/", "-", "\\"}

func renderView(m Model) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("kubestrap %s", m.ClusterName)))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("machine %s (%s)", m.MachineID, m.Role)))
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("Phases"))
	b.WriteString("\n")
	for _, phase := range m.Phases {
		b.WriteString(renderPhase(phase, m.SpinnerFrame))
		b.WriteString("\n")
	}

	if m.Verifying || len(m.Ready)+len(m.NotReady) > 0 {
		b.WriteString(sectionStyle.Render("Convergence"))
		b.WriteString("\n")
		for _, name := range m.Ready {
			b.WriteString(fmt.Sprintf("  %s %s\n", readyStyle.Render(checkMark), name))
		}
		for _, name := range m.NotReady {
			b.WriteString(fmt.Sprintf("  %s %s\n", warningStyle.Render(spinner), name))
		}
	}

	switch {
	case m.Err != nil:
		b.WriteString(failedStyle.Render(fmt.Sprintf("\nError: %v", m.Err)))
		b.WriteString("\n")
	case m.Done:
		b.WriteString(readyStyle.Render("\nDone."))
		b.WriteString("\n")
	}

	elapsed := time.Since(m.StartTime).Round(time.Second)
	b.WriteString(footerStyle.Render(fmt.Sprintf("elapsed %s | q to quit", elapsed)))
	b.WriteString("\n")

	return b.String()
}

func renderPhase(phase PhaseItem, frame int) string {
	switch phase.Status {
	case PhaseStatusCompleted, PhaseStatusReapplied:
		return fmt.Sprintf("  %s %s", readyStyle.Render(checkMark), phase.ID)
	case PhaseStatusSkipped:
		return fmt.Sprintf("  %s %s %s", readyStyle.Render(skipMark), phase.ID,
			dimStyle.Render("(already in place)"))
	case PhaseStatusFailed:
		return fmt.Sprintf("  %s %s", failedStyle.Render(crossMark), activeStyle.Render(phase.ID))
	case PhaseStatusStarted:
		mark := spinnerFrames[frame%len(spinnerFrames)]
		return fmt.Sprintf("  [%s] %s", mark, activeStyle.Render(phase.ID))
	default:
		return fmt.Sprintf("  %s %s", dimStyle.Render(pending), dimStyle.Render(phase.ID))
	}
}
