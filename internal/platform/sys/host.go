// Package sys probes and mutates host-level kernel and memory settings
// required before a machine can run a kubelet: swap state, kernel modules,
// and sysctl values.
//
// All state lives on the host itself and is re-probed on every call.
// Nothing is cached, so a setting reverted out-of-band (a reboot that
// re-enabled swap, for example) is observed on the next run.
package sys

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/imamik/kubestrap/internal/platform/exec"
)

// Host performs host-level configuration through a command runner.
type Host struct {
	runner exec.Runner
}

// NewHost creates a host collaborator on top of the given runner.
func NewHost(runner exec.Runner) *Host {
	return &Host{runner: runner}
}

// SwapEnabled reports whether any swap device or file is active.
func (h *Host) SwapEnabled(ctx context.Context) (bool, error) {
	out, err := h.runner.Run(ctx, "swapon --show --noheadings")
	if err != nil {
		return false, fmt.Errorf("failed to probe swap state: %w", err)
	}
	return strings.TrimSpace(out) != "", nil
}

// DisableSwap turns off all active swap and comments out swap entries in
// /etc/fstab so the setting survives reboots.
func (h *Host) DisableSwap(ctx context.Context) error {
	if _, err := h.runner.Run(ctx, "swapoff -a"); err != nil {
		return fmt.Errorf("failed to disable swap: %w", err)
	}

	if _, err := h.runner.Run(ctx, `sed -i '/\sswap\s/s/^\([^#]\)/#\1/' /etc/fstab`); err != nil {
		return fmt.Errorf("failed to comment swap entries in fstab: %w", err)
	}

	return nil
}

// ModuleLoaded reports whether the named kernel module is loaded.
func (h *Host) ModuleLoaded(ctx context.Context, name string) (bool, error) {
	out, err := h.runner.Run(ctx, fmt.Sprintf("test -d /sys/module/%s && echo loaded || true", name))
	if err != nil {
		return false, fmt.Errorf("failed to probe module %s: %w", name, err)
	}
	return strings.Contains(out, "loaded"), nil
}

// EnsureModules loads the named kernel modules now and persists them in
// /etc/modules-load.d so they are loaded on boot.
func (h *Host) EnsureModules(ctx context.Context, names ...string) error {
	for _, name := range names {
		if _, err := h.runner.Run(ctx, "modprobe "+name); err != nil {
			return fmt.Errorf("failed to load module %s: %w", name, err)
		}
	}

	content := strings.Join(names, "\n") + "\n"
	if err := h.runner.WriteFile(ctx, "/etc/modules-load.d/kubestrap.conf", []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to persist module list: %w", err)
	}

	return nil
}

// SysctlValue returns the current value of a sysctl key.
func (h *Host) SysctlValue(ctx context.Context, key string) (string, error) {
	out, err := h.runner.Run(ctx, "sysctl -n "+key)
	if err != nil {
		return "", fmt.Errorf("failed to read sysctl %s: %w", key, err)
	}
	return strings.TrimSpace(out), nil
}

// ApplySysctl sets the given sysctl values now and persists them in
// /etc/sysctl.d so they survive reboots.
func (h *Host) ApplySysctl(ctx context.Context, settings map[string]string) error {
	keys := make([]string, 0, len(settings))
	for key := range settings {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		if _, err := h.runner.Run(ctx, fmt.Sprintf("sysctl -w %s=%s", key, settings[key])); err != nil {
			return fmt.Errorf("failed to set sysctl %s: %w", key, err)
		}
		fmt.Fprintf(&b, "%s = %s\n", key, settings[key])
	}

	if err := h.runner.WriteFile(ctx, "/etc/sysctl.d/99-kubestrap.conf", []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to persist sysctl settings: %w", err)
	}

	return nil
}
