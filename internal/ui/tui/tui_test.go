package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/kubestrap/internal/provisioning"
)

func testModel() Model {
	return NewModel("demo", "cp-1", "control-plane",
		[]string{"disable-swap", "kernel-prereqs", "kubeadm-init"})
}

func TestNewModel(t *testing.T) {
	t.Parallel()

	m := testModel()

	require.Len(t, m.Phases, 3)
	assert.Equal(t, "disable-swap", m.Phases[0].ID)
	assert.Empty(t, m.Phases[0].Status)
}

func TestModel_PhaseProgress(t *testing.T) {
	t.Parallel()

	m := testModel()

	updated, _ := m.Update(PhaseMsg{Phase: "kernel-prereqs", Status: PhaseStatusStarted})
	m = updated.(Model)

	assert.Equal(t, PhaseStatusCompleted, m.Phases[0].Status,
		"phases before the active one settle as completed")
	assert.Equal(t, PhaseStatusStarted, m.Phases[1].Status)
	assert.Empty(t, m.Phases[2].Status)
}

func TestModel_PhaseFailureQuits(t *testing.T) {
	t.Parallel()

	m := testModel()
	failure := errors.New("apply failed")

	updated, cmd := m.Update(PhaseMsg{Phase: "kubeadm-init", Status: PhaseStatusFailed, Err: failure})
	m = updated.(Model)

	assert.Equal(t, failure, m.Err)
	assert.NotNil(t, cmd)
}

func TestModel_QuitKeys(t *testing.T) {
	t.Parallel()

	m := testModel()
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	assert.NotNil(t, cmd)
}

func TestModel_DoneQuits(t *testing.T) {
	t.Parallel()

	m := testModel()
	updated, cmd := m.Update(DoneMsg{})
	m = updated.(Model)

	assert.True(t, m.Done)
	assert.NotNil(t, cmd)
}

func TestView_RendersPhases(t *testing.T) {
	t.Parallel()

	m := testModel()
	updated, _ := m.Update(PhaseMsg{Phase: "disable-swap", Status: PhaseStatusSkipped})
	m = updated.(Model)

	view := m.View()

	assert.Contains(t, view, "demo")
	assert.Contains(t, view, "cp-1")
	assert.Contains(t, view, "disable-swap")
	assert.Contains(t, view, "already in place")
	assert.Contains(t, view, "kubeadm-init")
}

func TestView_ShowsConvergence(t *testing.T) {
	t.Parallel()

	m := testModel()
	updated, _ := m.Update(VerifyMsg{Ready: []string{"cp-1"}, NotReady: []string{"worker-1"}})
	m = updated.(Model)

	view := m.View()

	assert.Contains(t, view, "Convergence")
	assert.Contains(t, view, "worker-1")
}

func TestNotifier_MapsEvents(t *testing.T) {
	t.Parallel()

	var got []tea.Msg
	n := NewNotifier(func(msg tea.Msg) { got = append(got, msg) })

	n.Event(provisioning.Event{Type: provisioning.EventPhaseStarted, Phase: "disable-swap"})
	n.Event(provisioning.Event{Type: provisioning.EventPhaseSkipped, Phase: "disable-swap"})
	n.Event(provisioning.Event{Type: provisioning.EventRunStarted})

	require.Len(t, got, 2, "run-level events are not phase messages")
	assert.Equal(t, PhaseMsg{Phase: "disable-swap", Status: PhaseStatusStarted}, got[0])
	assert.Equal(t, PhaseMsg{Phase: "disable-swap", Status: PhaseStatusSkipped}, got[1])
}
