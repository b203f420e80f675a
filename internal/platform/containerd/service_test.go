package containerd

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kstesting "github.com/imamik/kubestrap/internal/testing"
)

func TestService_WriteConfig(t *testing.T) {
	t.Parallel()
	runner := kstesting.NewFakeRunner()

	svc := NewService(runner, "")
	err := svc.WriteConfig(context.Background(), []byte("SystemdCgroup = true\n"))

	require.NoError(t, err)
	content, ok := runner.File(DefaultConfigPath)
	require.True(t, ok)
	assert.Contains(t, string(content), "SystemdCgroup")
}

func TestService_CustomConfigPath(t *testing.T) {
	t.Parallel()
	svc := NewService(kstesting.NewFakeRunner(), "/opt/containerd/config.toml")
	assert.Equal(t, "/opt/containerd/config.toml", svc.ConfigPath())
}

func TestService_ConfigContains(t *testing.T) {
	t.Parallel()
	runner := kstesting.NewFakeRunner()
	runner.Respond("cat /etc/containerd/config.toml", "SystemdCgroup = true\n", nil)

	found, err := NewService(runner, "").ConfigContains(context.Background(), "SystemdCgroup = true")

	require.NoError(t, err)
	assert.True(t, found)
}

func TestService_IsActive(t *testing.T) {
	t.Parallel()

	t.Run("active", func(t *testing.T) {
		t.Parallel()
		runner := kstesting.NewFakeRunner()
		runner.Respond("is-active", "active\n", nil)

		active, err := NewService(runner, "").IsActive(context.Background())

		require.NoError(t, err)
		assert.True(t, active)
	})

	t.Run("inactive", func(t *testing.T) {
		t.Parallel()
		runner := kstesting.NewFakeRunner()
		runner.Respond("is-active", "inactive\n", nil)

		active, err := NewService(runner, "").IsActive(context.Background())

		require.NoError(t, err)
		assert.False(t, active)
	})
}

func TestService_EnableAndRestart(t *testing.T) {
	t.Parallel()
	runner := kstesting.NewFakeRunner()

	svc := NewService(runner, "")
	require.NoError(t, svc.Enable(context.Background()))
	require.NoError(t, svc.Restart(context.Background()))

	assert.True(t, runner.Ran("systemctl enable containerd"))
	assert.True(t, runner.Ran("systemctl restart containerd"))
}

func TestService_RestartFailure(t *testing.T) {
	t.Parallel()
	runner := kstesting.NewFakeRunner()
	runner.Respond("systemctl restart", "Job for containerd.service failed", errors.New("exit status 1"))

	err := NewService(runner, "").Restart(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "containerd.service failed")
}
