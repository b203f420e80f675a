package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalControlPlane = `
cluster_name: demo
machine_id: cp-1
role: control-plane
cni:
  manifest_url: https://example.com/cni.yaml
  pod_name_prefix: kube-flannel
`

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load([]byte(minimalControlPlane))

	require.NoError(t, err)
	assert.Equal(t, DefaultStateDir, cfg.StateDir)
	assert.Equal(t, DefaultKubernetesVersion, cfg.Kubernetes.Version)
	assert.Equal(t, DefaultPodNetworkCIDR, cfg.Kubernetes.PodNetworkCIDR)
	assert.Contains(t, cfg.Packages.RepositoryURL, "v"+DefaultKubernetesVersion)
	assert.Contains(t, cfg.Packages.KeyURL, "Release.key")
}

func TestLoad_Worker(t *testing.T) {
	t.Parallel()

	cfg, err := Load([]byte(`
cluster_name: demo
machine_id: worker-1
role: worker
kubernetes:
  control_plane_endpoint: 10.0.0.10:6443
`))

	require.NoError(t, err)
	assert.Equal(t, "worker-1", cfg.MachineID)
	assert.Equal(t, "10.0.0.10:6443", cfg.Kubernetes.ControlPlaneEndpoint)
}

func TestLoad_TargetDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load([]byte(minimalControlPlane + `
target:
  host: 192.0.2.10
  private_key_path: /home/op/.ssh/id_ed25519
`))

	require.NoError(t, err)
	require.NotNil(t, cfg.Target)
	assert.Equal(t, DefaultSSHPort, cfg.Target.Port)
	assert.Equal(t, DefaultSSHUser, cfg.Target.User)
}

func TestLoad_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing cluster name",
			yaml:    "machine_id: cp-1\nrole: control-plane\n",
			wantErr: "cluster_name",
		},
		{
			name:    "missing machine id",
			yaml:    "cluster_name: demo\nrole: control-plane\n",
			wantErr: "machine_id",
		},
		{
			name:    "unknown role",
			yaml:    "cluster_name: demo\nmachine_id: m\nrole: gateway\n",
			wantErr: "role",
		},
		{
			name: "worker without endpoint",
			yaml: "cluster_name: demo\nmachine_id: w\nrole: worker\n",

			wantErr: "control_plane_endpoint",
		},
		{
			name: "endpoint without port",
			yaml: `
cluster_name: demo
machine_id: w
role: worker
kubernetes:
  control_plane_endpoint: 10.0.0.10
`,
			wantErr: "host:port",
		},
		{
			name: "bad cidr",
			yaml: minimalControlPlane + "kubernetes:\n  pod_network_cidr: not-a-cidr\n",

			wantErr: "pod_network_cidr",
		},
		{
			name: "control plane without cni",
			yaml: "cluster_name: demo\nmachine_id: cp-1\nrole: control-plane\n",

			wantErr: "network plugin",
		},
		{
			name: "target without key",
			yaml: minimalControlPlane + "target:\n  host: 192.0.2.10\n",

			wantErr: "private_key_path",
		},
		{
			name: "incomplete object store",
			yaml: minimalControlPlane + "object_store:\n  endpoint: https://s3.example.com\n",

			wantErr: "object_store",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Load([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "kubestrap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalControlPlane), 0o600))

	cfg, err := LoadFile(path)

	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.ClusterName)
}

func TestLoadFile_Missing(t *testing.T) {
	t.Parallel()

	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
