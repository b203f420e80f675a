package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/imamik/kubestrap/internal/cluster"
	"github.com/imamik/kubestrap/internal/config"
	"github.com/imamik/kubestrap/internal/k8s"
	"github.com/imamik/kubestrap/internal/platform/kubeadm"
	"github.com/imamik/kubestrap/internal/provisioning"
	"github.com/imamik/kubestrap/internal/state"
)

// Verify waits for the expected members to report Ready and prints the
// outcome. A timeout exits nonzero with the partial result.
func Verify(ctx context.Context, configPath string, expected []string, timeout, pollInterval time.Duration) error {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return err
	}
	timeouts := config.LoadTimeouts()
	if timeout <= 0 {
		timeout = timeouts.Converge
	}
	if pollInterval <= 0 {
		pollInterval = timeouts.PollInterval
	}
	if len(expected) == 0 {
		expected = []string{cfg.MachineID}
	}

	runner, err := buildRunner(cfg)
	if err != nil {
		return err
	}
	kube := kubeadm.New(runner)

	kubeconfig, err := readKubeconfig(ctx, cfg.ParsedRole(), kube)
	if err != nil {
		return err
	}
	client, err := k8s.NewClientFromBytes(kubeconfig)
	if err != nil {
		return err
	}

	verifier := cluster.NewVerifier(client)
	verdict := verifier.AwaitReady(ctx, expected, timeout, pollInterval)

	for _, name := range verdict.Ready {
		fmt.Printf("  ready:     %s\n", name)
	}
	for _, name := range verdict.NotReady {
		fmt.Printf("  not ready: %s\n", name)
	}

	if !verdict.Converged() {
		return fmt.Errorf("%d of %d expected members not Ready after %v",
			len(verdict.NotReady), len(expected), timeout)
	}

	if err := markVerifiedIfProvisioned(cfg); err != nil {
		return err
	}

	fmt.Println("Converged.")
	return nil
}

// markVerifiedIfProvisioned promotes this machine to Verified when it
// has a completed provisioning record. Verifying from a machine with no
// record (an operator laptop, say) is fine and records nothing.
func markVerifiedIfProvisioned(cfg *config.Config) error {
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	nodeState, err := store.Load(cfg.MachineID)
	if err != nil {
		return err
	}
	if nodeState == nil || (nodeState.Status != state.StatusRolePhasesComplete && nodeState.Status != state.StatusVerified) {
		return nil
	}

	orch := provisioning.NewOrchestrator(store, provisioning.NewConsoleObserver(), cfg.ClusterName)
	return orch.MarkVerified(cfg.MachineID)
}
