package handlers

import (
	"context"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/kubestrap/internal/config"
	"github.com/imamik/kubestrap/internal/provisioning"
	"github.com/imamik/kubestrap/internal/state"
)

// stuckPhase's apply only returns when its context is cancelled.
type stuckPhase struct{}

func (p *stuckPhase) ID() string { return "install-runtime" }

func (p *stuckPhase) Precondition(context.Context) (bool, error) { return false, nil }

func (p *stuckPhase) Apply(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func (p *stuckPhase) Postcondition(context.Context) (bool, error) { return true, nil }

func TestRunWithTUI_QuitAbortsRun(t *testing.T) {
	t.Parallel()

	store, err := state.NewStore(t.TempDir())
	require.NoError(t, err)
	cfg := &config.Config{ClusterName: "demo", MachineID: "m1"}
	plan := provisioning.Plan{
		Role:        provisioning.RoleWorker,
		Phases:      []provisioning.Phase{&stuckPhase{}},
		CommonCount: 1,
	}

	// Quitting the display while a phase is still applying must cancel
	// the run and hand back its outcome instead of a nil result.
	result, err := runWithTUI(context.Background(), cfg, store, plan, 0,
		tea.WithInput(strings.NewReader("q")),
		tea.WithOutput(io.Discard),
		tea.WithoutRenderer(),
	)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result)

	// The aborted run must have released the machine lock.
	unlock, err := store.Lock("m1")
	require.NoError(t, err)
	unlock()
}
