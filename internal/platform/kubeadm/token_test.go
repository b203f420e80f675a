package kubeadm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJoinCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		output   string
		wantErr  bool
		endpoint string
	}{
		{
			name: "single line",
			output: "kubeadm join 10.0.0.1:6443 --token abcdef.0123456789abcdef " +
				"--discovery-token-ca-cert-hash sha256:8cb2de97839780a412b93877f8507ad6e78f6d0844a9cf0b1c9e52b00167b9ed",
			endpoint: "10.0.0.1:6443",
		},
		{
			name: "wrapped with backslash continuation",
			output: "kubeadm join 192.168.10.5:6443 --token abcdef.0123456789abcdef \\\n" +
				"\t--discovery-token-ca-cert-hash sha256:8cb2de97839780a412b93877f8507ad6e78f6d0844a9cf0b1c9e52b00167b9ed\n",
			endpoint: "192.168.10.5:6443",
		},
		{
			name: "warning lines before command",
			output: "W0101 12:00:00 token.go:120] a kubeadm warning\n" +
				"kubeadm join 10.0.0.1:6443 --token abcdef.0123456789abcdef " +
				"--discovery-token-ca-cert-hash sha256:8cb2de97839780a412b93877f8507ad6e78f6d0844a9cf0b1c9e52b00167b9ed\n",
			endpoint: "10.0.0.1:6443",
		},
		{
			name:    "no join command",
			output:  "something went wrong",
			wantErr: true,
		},
		{
			name:    "join command with malformed token",
			output:  "kubeadm join 10.0.0.1:6443 --token nope --discovery-token-ca-cert-hash sha256:ab",
			wantErr: true,
		},
		{
			name:    "empty output",
			output:  "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cred, err := ParseJoinCommand(tt.output)

			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.endpoint, cred.Endpoint)
			assert.Equal(t, "abcdef.0123456789abcdef", cred.Token)
			assert.NoError(t, cred.Validate())
		})
	}
}
