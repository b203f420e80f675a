package kubeadm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kstesting "github.com/imamik/kubestrap/internal/testing"
)

const joinOutput = "kubeadm join 10.0.0.1:6443 --token abcdef.0123456789abcdef " +
	"--discovery-token-ca-cert-hash sha256:8cb2de97839780a412b93877f8507ad6e78f6d0844a9cf0b1c9e52b00167b9ed\n"

func TestKubeadm_IsBootstrapped(t *testing.T) {
	t.Parallel()

	t.Run("bootstrapped", func(t *testing.T) {
		t.Parallel()
		runner := kstesting.NewFakeRunner()
		runner.Respond(AdminConfPath, "present\n", nil)

		bootstrapped, err := New(runner).IsBootstrapped(context.Background())

		require.NoError(t, err)
		assert.True(t, bootstrapped)
	})

	t.Run("fresh host", func(t *testing.T) {
		t.Parallel()
		runner := kstesting.NewFakeRunner()
		runner.Respond(AdminConfPath, "", nil)

		bootstrapped, err := New(runner).IsBootstrapped(context.Background())

		require.NoError(t, err)
		assert.False(t, bootstrapped)
	})
}

func TestKubeadm_Init(t *testing.T) {
	t.Parallel()
	runner := kstesting.NewFakeRunner()

	err := New(runner).Init(context.Background(), "10.244.0.0/16", "")

	require.NoError(t, err)
	assert.True(t, runner.Ran("kubeadm init --pod-network-cidr 10.244.0.0/16"))
}

func TestKubeadm_Init_WithControlPlaneEndpoint(t *testing.T) {
	t.Parallel()
	runner := kstesting.NewFakeRunner()

	err := New(runner).Init(context.Background(), "10.244.0.0/16", "api.cluster.local:6443")

	require.NoError(t, err)
	assert.True(t, runner.Ran("--control-plane-endpoint api.cluster.local:6443"))
}

func TestKubeadm_Init_Failure(t *testing.T) {
	t.Parallel()
	runner := kstesting.NewFakeRunner()
	runner.Respond("kubeadm init", "error execution phase preflight", errors.New("exit status 1"))

	err := New(runner).Init(context.Background(), "10.244.0.0/16", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "preflight")
}

func TestKubeadm_CreateJoinToken(t *testing.T) {
	t.Parallel()
	runner := kstesting.NewFakeRunner()
	runner.Respond("kubeadm token create", joinOutput, nil)

	cred, err := New(runner).CreateJoinToken(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "abcdef.0123456789abcdef", cred.Token)
	assert.Equal(t, "10.0.0.1:6443", cred.Endpoint)
	assert.Contains(t, cred.CACertHash, "sha256:")
}

func TestKubeadm_CreateJoinToken_RetryBudget(t *testing.T) {
	t.Parallel()
	runner := kstesting.NewFakeRunner()
	runner.Respond("kubeadm token create", "", errors.New("connection refused"))

	kube := New(runner)
	kube.TokenRetries = 2
	kube.TokenRetryDelay = time.Millisecond

	_, err := kube.CreateJoinToken(context.Background())

	require.Error(t, err)
	assert.Len(t, runner.Commands(), 3, "retry budget is attempts after the first")
}

func TestKubeadm_Join(t *testing.T) {
	t.Parallel()
	runner := kstesting.NewFakeRunner()

	cred, err := ParseJoinCommand(joinOutput)
	require.NoError(t, err)

	err = New(runner).Join(context.Background(), cred)

	require.NoError(t, err)
	assert.True(t, runner.Ran("kubeadm join 10.0.0.1:6443"))
	assert.True(t, runner.Ran("--token abcdef.0123456789abcdef"))
}

func TestKubeadm_Reset(t *testing.T) {
	t.Parallel()
	runner := kstesting.NewFakeRunner()

	err := New(runner).Reset(context.Background())

	require.NoError(t, err)
	assert.True(t, runner.Ran("kubeadm reset --force"))
}

func TestKubeadm_ReadAdminConf(t *testing.T) {
	t.Parallel()
	runner := kstesting.NewFakeRunner()
	runner.Respond("cat "+AdminConfPath, "apiVersion: v1\nkind: Config\n", nil)

	data, err := New(runner).ReadAdminConf(context.Background())

	require.NoError(t, err)
	assert.Contains(t, string(data), "kind: Config")
}
