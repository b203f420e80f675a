package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"

	"github.com/imamik/kubestrap/internal/config"
	"github.com/imamik/kubestrap/internal/platform/kubeadm"
)

// Reset clears the machine's provisioning record. With full set, the
// machine is also torn down with 'kubeadm reset'.
func Reset(ctx context.Context, configPath string, full, yes bool) error {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return err
	}

	if !yes {
		confirmed, err := confirmReset(cfg.MachineID, full)
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if full {
		runner, err := buildRunner(cfg)
		if err != nil {
			return err
		}
		if err := kubeadm.New(runner).Reset(ctx); err != nil {
			return err
		}
		fmt.Printf("Machine %s torn down.\n", cfg.MachineID)
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	if err := store.Delete(cfg.MachineID); err != nil {
		return err
	}

	fmt.Printf("State for %s cleared.\n", cfg.MachineID)
	return nil
}

func confirmReset(machineID string, full bool) (bool, error) {
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return false, fmt.Errorf("refusing to reset without --yes in a non-interactive session")
	}

	title := fmt.Sprintf("Clear provisioning state for %s?", machineID)
	if full {
		title = fmt.Sprintf("Tear down %s with 'kubeadm reset' and clear its state?", machineID)
	}

	var confirmed bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().Title(title).Value(&confirmed),
	))
	if err := form.Run(); err != nil {
		return false, fmt.Errorf("confirmation aborted: %w", err)
	}
	return confirmed, nil
}
