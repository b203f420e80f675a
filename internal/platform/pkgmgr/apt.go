// Package pkgmgr wraps the host package manager used to install and pin
// the container runtime and Kubernetes binaries.
//
// The apt frontend is the only implementation; the provisioning phases
// depend on the PackageManager interface defined in the catalog, so other
// frontends can be added without touching phase logic.
package pkgmgr

import (
	"context"
	"fmt"
	"strings"

	"github.com/imamik/kubestrap/internal/platform/exec"
)

const (
	keyringPath    = "/etc/apt/keyrings/kubestrap-apt-keyring.gpg"
	repoListPath   = "/etc/apt/sources.list.d/kubestrap.list"
	aptNonInteract = "DEBIAN_FRONTEND=noninteractive apt-get"
)

// Apt manages packages through apt-get and apt-mark.
type Apt struct {
	runner exec.Runner
}

// NewApt creates an apt package manager on top of the given runner.
func NewApt(runner exec.Runner) *Apt {
	return &Apt{runner: runner}
}

// IsInstalled reports whether the named package is installed.
func (a *Apt) IsInstalled(ctx context.Context, name string) (bool, error) {
	out, err := a.runner.Run(ctx, fmt.Sprintf("dpkg-query -W -f '${Status}' %s 2>/dev/null || true", name))
	if err != nil {
		return false, fmt.Errorf("failed to query package %s: %w", name, err)
	}
	return strings.Contains(out, "install ok installed"), nil
}

// Install installs the named packages. Already-installed packages are
// upgraded or left alone by apt; the call is safe to repeat.
func (a *Apt) Install(ctx context.Context, names ...string) error {
	cmd := fmt.Sprintf("%s install -y %s", aptNonInteract, strings.Join(names, " "))
	if out, err := a.runner.Run(ctx, cmd); err != nil {
		return fmt.Errorf("apt install failed: %w\nOutput: %s", err, out)
	}
	return nil
}

// Hold pins the named packages against unintended upgrades.
func (a *Apt) Hold(ctx context.Context, names ...string) error {
	cmd := "apt-mark hold " + strings.Join(names, " ")
	if out, err := a.runner.Run(ctx, cmd); err != nil {
		return fmt.Errorf("apt-mark hold failed: %w\nOutput: %s", err, out)
	}
	return nil
}

// RepositoryExists reports whether the kubestrap-managed apt repository
// list file is present.
func (a *Apt) RepositoryExists(ctx context.Context) (bool, error) {
	out, err := a.runner.Run(ctx, fmt.Sprintf("test -f %s && echo present || true", repoListPath))
	if err != nil {
		return false, fmt.Errorf("failed to probe apt repository: %w", err)
	}
	return strings.Contains(out, "present"), nil
}

// AddRepository registers an apt repository with its signing key and
// refreshes the package index. descriptor is a full sources.list line
// with a [signed-by=...] option pointing at the managed keyring.
func (a *Apt) AddRepository(ctx context.Context, descriptor, signingKeyURL string) error {
	keyCmd := fmt.Sprintf("mkdir -p /etc/apt/keyrings && curl -fsSL %s | gpg --dearmor --yes -o %s",
		signingKeyURL, keyringPath)
	if out, err := a.runner.Run(ctx, keyCmd); err != nil {
		return fmt.Errorf("failed to fetch repository signing key: %w\nOutput: %s", err, out)
	}

	if err := a.runner.WriteFile(ctx, repoListPath, []byte(descriptor+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write repository list: %w", err)
	}

	if out, err := a.runner.Run(ctx, aptNonInteract+" update"); err != nil {
		return fmt.Errorf("apt update failed: %w\nOutput: %s", err, out)
	}

	return nil
}

// KeyringPath returns the path of the managed signing keyring, for use in
// repository descriptors.
func KeyringPath() string {
	return keyringPath
}
