package provisioning

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhaseError(t *testing.T) {
	t.Parallel()

	cause := errors.New("swapoff exited 1")
	err := NewPhaseError("disable-swap", KindApplyFailed, cause)

	assert.Contains(t, err.Error(), "disable-swap")
	assert.Contains(t, err.Error(), string(KindApplyFailed))
	assert.ErrorIs(t, err, cause)
}

func TestAsPhaseError(t *testing.T) {
	t.Parallel()

	inner := NewPhaseError("join-cluster", KindMissingPrerequisite, errors.New("no credential"))
	wrapped := fmt.Errorf("provisioning w1: %w", inner)

	phaseErr, ok := AsPhaseError(wrapped)
	require.True(t, ok)
	assert.Equal(t, "join-cluster", phaseErr.Phase)
	assert.Equal(t, KindMissingPrerequisite, phaseErr.Kind)

	_, ok = AsPhaseError(errors.New("plain"))
	assert.False(t, ok)
}

func TestIsKind(t *testing.T) {
	t.Parallel()

	err := NewPhaseError("kubeadm-init", KindPostconditionFailed, errors.New("admin.conf absent"))

	assert.True(t, IsKind(err, KindPostconditionFailed))
	assert.False(t, IsKind(err, KindApplyFailed))
	assert.False(t, IsKind(errors.New("plain"), KindApplyFailed))
}

func TestParseRole(t *testing.T) {
	t.Parallel()

	role, err := ParseRole("control-plane")
	require.NoError(t, err)
	assert.Equal(t, RoleControlPlane, role)

	role, err = ParseRole("worker")
	require.NoError(t, err)
	assert.Equal(t, RoleWorker, role)

	_, err = ParseRole("gateway")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gateway")
}
