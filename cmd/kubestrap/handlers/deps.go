// Package handlers implements the CLI commands: wiring configuration,
// platform collaborators, and the orchestrator together.
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/imamik/kubestrap/internal/addons/cni"
	"github.com/imamik/kubestrap/internal/config"
	"github.com/imamik/kubestrap/internal/k8s"
	"github.com/imamik/kubestrap/internal/platform/exec"
	"github.com/imamik/kubestrap/internal/platform/kubeadm"
	"github.com/imamik/kubestrap/internal/platform/ssh"
	"github.com/imamik/kubestrap/internal/provisioning"
	"github.com/imamik/kubestrap/internal/provisioning/catalog"
	"github.com/imamik/kubestrap/internal/state"
)

// buildRunner selects where phase commands execute: locally, or over
// SSH when the config names a target machine.
func buildRunner(cfg *config.Config) (exec.Runner, error) {
	if cfg.Target == nil {
		return exec.NewLocalRunner(), nil
	}

	key, err := os.ReadFile(cfg.Target.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read SSH private key: %w", err)
	}

	timeouts := config.LoadTimeouts()
	return ssh.NewRunner(&ssh.Config{
		Host:       cfg.Target.Host,
		Port:       cfg.Target.Port,
		User:       cfg.Target.User,
		PrivateKey: key,
		MaxRetries: timeouts.RetryMaxAttempts,
		RetryDelay: timeouts.RetryInitialDelay,
	})
}

// buildDeps assembles the catalog collaborators over one runner.
func buildDeps(cfg *config.Config, runner exec.Runner, kube *kubeadm.Kubeadm) catalog.Deps {
	return catalog.Deps{
		Host:     newSysHost(runner),
		Packages: newPackageManager(runner),
		Runtime:  newRuntimeService(runner),
		Kubeadm:  kube,
		Network:  &lazyNetwork{cfg: cfg.CNI, kubeadm: kube},
	}
}

// lazyNetwork defers building the network plugin installer until the
// control plane exists: its kubeconfig is only written by kubeadm init,
// which runs earlier in the same plan.
type lazyNetwork struct {
	cfg     cni.Config
	kubeadm *kubeadm.Kubeadm

	mu        sync.Mutex
	installer *cni.Installer
}

func (l *lazyNetwork) get(ctx context.Context) (*cni.Installer, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.installer != nil {
		return l.installer, nil
	}

	kubeconfig, err := l.kubeadm.ReadAdminConf(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read the admin kubeconfig: %w", err)
	}

	client, err := k8s.NewClientFromBytes(kubeconfig)
	if err != nil {
		return nil, err
	}

	var charts cni.ChartInstaller
	if l.cfg.Helm != nil {
		charts = k8s.NewHelmClient()
	}

	l.installer = cni.NewInstaller(l.cfg, client, charts, kubeconfig)
	return l.installer, nil
}

func (l *lazyNetwork) Installed(ctx context.Context) (bool, error) {
	installer, err := l.get(ctx)
	if err != nil {
		return false, err
	}
	return installer.Installed(ctx)
}

func (l *lazyNetwork) Install(ctx context.Context) error {
	installer, err := l.get(ctx)
	if err != nil {
		return err
	}
	return installer.Install(ctx)
}

// readKubeconfig returns the kubeconfig a machine can use to observe the
// cluster. Control planes hold the admin credential; workers read node
// state through the kubelet's own credential.
func readKubeconfig(ctx context.Context, role provisioning.Role, kube *kubeadm.Kubeadm) ([]byte, error) {
	if role == provisioning.RoleControlPlane {
		return kube.ReadAdminConf(ctx)
	}
	return kube.ReadKubeletConf(ctx)
}

// serveMetrics exposes provisioning metrics for the duration of the run.
func serveMetrics(addr string) error {
	if err := provisioning.RegisterMetrics(prometheus.DefaultRegisterer); err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "metrics server error: %v\n", err)
		}
	}()

	return nil
}

// openStore opens the durable state store from the config.
func openStore(cfg *config.Config) (*state.Store, error) {
	return state.NewStore(cfg.StateDir)
}
