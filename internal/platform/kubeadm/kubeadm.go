// Package kubeadm wraps the cluster bootstrap tool as a black-box
// collaborator: control plane init, join token issuance, worker join, and
// the probes the provisioning phases use to gate on its outcomes.
package kubeadm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/imamik/kubestrap/internal/cluster"
	"github.com/imamik/kubestrap/internal/platform/exec"
	"github.com/imamik/kubestrap/internal/util/retry"
)

const (
	// AdminConfPath is the admin kubeconfig written by kubeadm init.
	AdminConfPath = "/etc/kubernetes/admin.conf"
	// KubeletConfPath is the kubelet kubeconfig written by init and join.
	KubeletConfPath = "/etc/kubernetes/kubelet.conf"
)

// Kubeadm executes kubeadm commands through a runner.
type Kubeadm struct {
	runner exec.Runner

	// TokenRetries and TokenRetryDelay shape the backoff around token
	// issuance while the API server settles after init.
	TokenRetries    int
	TokenRetryDelay time.Duration
}

// New creates a kubeadm collaborator on top of the given runner.
func New(runner exec.Runner) *Kubeadm {
	return &Kubeadm{
		runner:          runner,
		TokenRetries:    3,
		TokenRetryDelay: 2 * time.Second,
	}
}

// IsBootstrapped reports whether kubeadm init has completed on this host.
// The admin kubeconfig only exists after a successful init.
func (k *Kubeadm) IsBootstrapped(ctx context.Context) (bool, error) {
	return k.fileExists(ctx, AdminConfPath)
}

// IsJoined reports whether this host has joined a cluster.
// kubeadm join writes the kubelet kubeconfig on success.
func (k *Kubeadm) IsJoined(ctx context.Context) (bool, error) {
	return k.fileExists(ctx, KubeletConfPath)
}

// Init creates the control plane. podNetworkCIDR configures the pod
// network range the CNI plugin will use; controlPlaneEndpoint is optional
// and sets a stable API endpoint for later HA expansion.
func (k *Kubeadm) Init(ctx context.Context, podNetworkCIDR, controlPlaneEndpoint string) error {
	cmd := fmt.Sprintf("kubeadm init --pod-network-cidr %s", podNetworkCIDR)
	if controlPlaneEndpoint != "" {
		cmd += " --control-plane-endpoint " + controlPlaneEndpoint
	}

	if out, err := k.runner.Run(ctx, cmd); err != nil {
		return fmt.Errorf("kubeadm init failed: %w\nOutput: %s", err, out)
	}

	return nil
}

// CreateJoinToken asks the control plane for a fresh join token and
// returns it with the discovery endpoint and CA cert hash. The API server
// can be briefly unavailable right after init, so issuance is retried.
func (k *Kubeadm) CreateJoinToken(ctx context.Context) (cluster.JoinCredential, error) {
	var out string

	err := retry.WithExponentialBackoff(ctx, func() error {
		var runErr error
		out, runErr = k.runner.Run(ctx, "kubeadm token create --print-join-command")
		return runErr
	}, retry.WithMaxRetries(k.TokenRetries), retry.WithInitialDelay(k.TokenRetryDelay))

	if err != nil {
		return cluster.JoinCredential{}, fmt.Errorf("kubeadm token create failed: %w", err)
	}

	cred, err := ParseJoinCommand(out)
	if err != nil {
		return cluster.JoinCredential{}, fmt.Errorf("failed to parse join command: %w", err)
	}

	return cred, nil
}

// Join joins this host to the cluster identified by the credential.
func (k *Kubeadm) Join(ctx context.Context, cred cluster.JoinCredential) error {
	cmd := fmt.Sprintf("kubeadm join %s --token %s --discovery-token-ca-cert-hash %s",
		cred.Endpoint, cred.Token, cred.CACertHash)

	if out, err := k.runner.Run(ctx, cmd); err != nil {
		return fmt.Errorf("kubeadm join failed: %w\nOutput: %s", err, out)
	}

	return nil
}

// Reset tears down any kubeadm-managed state on this host. Used by the
// operator-facing reset command, never by the provisioning phases.
func (k *Kubeadm) Reset(ctx context.Context) error {
	if out, err := k.runner.Run(ctx, "kubeadm reset --force"); err != nil {
		return fmt.Errorf("kubeadm reset failed: %w\nOutput: %s", err, out)
	}
	return nil
}

// ReadAdminConf returns the admin kubeconfig contents from the host.
func (k *Kubeadm) ReadAdminConf(ctx context.Context) ([]byte, error) {
	out, err := k.runner.Run(ctx, "cat "+AdminConfPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read admin kubeconfig: %w", err)
	}
	return []byte(out), nil
}

// ReadKubeletConf returns the kubelet kubeconfig contents from the host.
func (k *Kubeadm) ReadKubeletConf(ctx context.Context) ([]byte, error) {
	out, err := k.runner.Run(ctx, "cat "+KubeletConfPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read kubelet kubeconfig: %w", err)
	}
	return []byte(out), nil
}

func (k *Kubeadm) fileExists(ctx context.Context, path string) (bool, error) {
	out, err := k.runner.Run(ctx, fmt.Sprintf("test -f %s && echo present || true", path))
	if err != nil {
		return false, fmt.Errorf("failed to probe %s: %w", path, err)
	}
	return strings.Contains(out, "present"), nil
}
