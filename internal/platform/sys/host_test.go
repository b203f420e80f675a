package sys

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kstesting "github.com/imamik/kubestrap/internal/testing"
)

func TestHost_SwapEnabled(t *testing.T) {
	t.Parallel()

	t.Run("swap active", func(t *testing.T) {
		t.Parallel()
		runner := kstesting.NewFakeRunner()
		runner.Respond("swapon", "/dev/sda2 partition 2G 0B -2\n", nil)

		enabled, err := NewHost(runner).SwapEnabled(context.Background())

		require.NoError(t, err)
		assert.True(t, enabled)
	})

	t.Run("swap off", func(t *testing.T) {
		t.Parallel()
		runner := kstesting.NewFakeRunner()
		runner.Respond("swapon", "  \n", nil)

		enabled, err := NewHost(runner).SwapEnabled(context.Background())

		require.NoError(t, err)
		assert.False(t, enabled)
	})

	t.Run("probe failure", func(t *testing.T) {
		t.Parallel()
		runner := kstesting.NewFakeRunner()
		runner.Respond("swapon", "", errors.New("no such binary"))

		_, err := NewHost(runner).SwapEnabled(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to probe swap state")
	})
}

func TestHost_DisableSwap(t *testing.T) {
	t.Parallel()
	runner := kstesting.NewFakeRunner()

	err := NewHost(runner).DisableSwap(context.Background())

	require.NoError(t, err)
	assert.True(t, runner.Ran("swapoff -a"))
	assert.True(t, runner.Ran("/etc/fstab"))
}

func TestHost_ModuleLoaded(t *testing.T) {
	t.Parallel()
	runner := kstesting.NewFakeRunner()
	runner.Respond("/sys/module/br_netfilter", "loaded\n", nil)
	runner.Respond("/sys/module/overlay", "", nil)

	host := NewHost(runner)

	loaded, err := host.ModuleLoaded(context.Background(), "br_netfilter")
	require.NoError(t, err)
	assert.True(t, loaded)

	loaded, err = host.ModuleLoaded(context.Background(), "overlay")
	require.NoError(t, err)
	assert.False(t, loaded)
}

func TestHost_EnsureModules(t *testing.T) {
	t.Parallel()
	runner := kstesting.NewFakeRunner()

	err := NewHost(runner).EnsureModules(context.Background(), "overlay", "br_netfilter")

	require.NoError(t, err)
	assert.True(t, runner.Ran("modprobe overlay"))
	assert.True(t, runner.Ran("modprobe br_netfilter"))

	content, ok := runner.File("/etc/modules-load.d/kubestrap.conf")
	require.True(t, ok, "module list should be persisted")
	assert.Equal(t, "overlay\nbr_netfilter\n", string(content))
}

func TestHost_EnsureModules_ModprobeFails(t *testing.T) {
	t.Parallel()
	runner := kstesting.NewFakeRunner()
	runner.Respond("modprobe br_netfilter", "", errors.New("module not found"))

	err := NewHost(runner).EnsureModules(context.Background(), "br_netfilter")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "br_netfilter")
}

func TestHost_SysctlValue(t *testing.T) {
	t.Parallel()
	runner := kstesting.NewFakeRunner()
	runner.Respond("sysctl -n net.ipv4.ip_forward", "1\n", nil)

	value, err := NewHost(runner).SysctlValue(context.Background(), "net.ipv4.ip_forward")

	require.NoError(t, err)
	assert.Equal(t, "1", value)
}

func TestHost_ApplySysctl(t *testing.T) {
	t.Parallel()
	runner := kstesting.NewFakeRunner()

	err := NewHost(runner).ApplySysctl(context.Background(), map[string]string{
		"net.ipv4.ip_forward":                "1",
		"net.bridge.bridge-nf-call-iptables": "1",
	})

	require.NoError(t, err)
	assert.True(t, runner.Ran("sysctl -w net.ipv4.ip_forward=1"))
	assert.True(t, runner.Ran("sysctl -w net.bridge.bridge-nf-call-iptables=1"))

	content, ok := runner.File("/etc/sysctl.d/99-kubestrap.conf")
	require.True(t, ok, "sysctl settings should be persisted")
	// Keys are written in sorted order for stable output
	assert.Equal(t, "net.bridge.bridge-nf-call-iptables = 1\nnet.ipv4.ip_forward = 1\n", string(content))
}
