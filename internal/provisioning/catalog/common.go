package catalog

import (
	"context"
	"fmt"

	"github.com/imamik/kubestrap/internal/provisioning"
)

// Phase IDs, in catalog order.
const (
	PhaseDisableSwap         = "disable-swap"
	PhaseKernelPrereqs       = "kernel-prereqs"
	PhaseInstallRuntime      = "install-runtime"
	PhaseInstallKubePackages = "install-kube-packages"
	PhaseKubeadmInit         = "kubeadm-init"
	PhaseInstallNetwork      = "install-network-plugin"
	PhaseJoinCluster         = "join-cluster"
)

var (
	kernelModules = []string{"overlay", "br_netfilter"}

	kernelSysctls = map[string]string{
		"net.bridge.bridge-nf-call-iptables":  "1",
		"net.bridge.bridge-nf-call-ip6tables": "1",
		"net.ipv4.ip_forward":                 "1",
	}

	kubePackages = []string{"kubelet", "kubeadm", "kubectl"}
)

// runtimeConfigMarker is the line whose presence proves our containerd
// config is in place. kubelet requires the systemd cgroup driver.
const runtimeConfigMarker = "SystemdCgroup = true"

const runtimeConfig = `version = 2

[plugins."io.containerd.grpc.v1.cri"]
  sandbox_image = "registry.k8s.io/pause:3.10"

  [plugins."io.containerd.grpc.v1.cri".containerd.runtimes.runc]
    runtime_type = "io.containerd.runc.v2"

    [plugins."io.containerd.grpc.v1.cri".containerd.runtimes.runc.options]
      SystemdCgroup = true
`

// disableSwapPhase turns swap off now and across reboots. kubelet
// refuses to start with swap active.
type disableSwapPhase struct {
	host HostConfigurer
}

func (p *disableSwapPhase) ID() string { return PhaseDisableSwap }

func (p *disableSwapPhase) Precondition(ctx context.Context) (bool, error) {
	enabled, err := p.host.SwapEnabled(ctx)
	if err != nil {
		return false, err
	}
	return !enabled, nil
}

func (p *disableSwapPhase) Apply(ctx context.Context) error {
	return p.host.DisableSwap(ctx)
}

func (p *disableSwapPhase) Postcondition(ctx context.Context) (bool, error) {
	return p.Precondition(ctx)
}

// kernelPrereqsPhase loads the kernel modules and sysctls container
// networking needs.
type kernelPrereqsPhase struct {
	host HostConfigurer
}

func (p *kernelPrereqsPhase) ID() string { return PhaseKernelPrereqs }

func (p *kernelPrereqsPhase) Precondition(ctx context.Context) (bool, error) {
	for _, module := range kernelModules {
		loaded, err := p.host.ModuleLoaded(ctx, module)
		if err != nil {
			return false, err
		}
		if !loaded {
			return false, nil
		}
	}

	for key, want := range kernelSysctls {
		value, err := p.host.SysctlValue(ctx, key)
		if err != nil {
			return false, err
		}
		if value != want {
			return false, nil
		}
	}

	return true, nil
}

func (p *kernelPrereqsPhase) Apply(ctx context.Context) error {
	if err := p.host.EnsureModules(ctx, kernelModules...); err != nil {
		return err
	}
	return p.host.ApplySysctl(ctx, kernelSysctls)
}

func (p *kernelPrereqsPhase) Postcondition(ctx context.Context) (bool, error) {
	return p.Precondition(ctx)
}

// installRuntimePhase installs containerd and puts our config in place.
type installRuntimePhase struct {
	packages PackageManager
	runtime  RuntimeService
}

func (p *installRuntimePhase) ID() string { return PhaseInstallRuntime }

func (p *installRuntimePhase) Precondition(ctx context.Context) (bool, error) {
	installed, err := p.packages.IsInstalled(ctx, "containerd")
	if err != nil {
		return false, err
	}
	if !installed {
		return false, nil
	}

	configured, err := p.runtime.ConfigContains(ctx, runtimeConfigMarker)
	if err != nil {
		return false, err
	}
	if !configured {
		return false, nil
	}

	return p.runtime.IsActive(ctx)
}

func (p *installRuntimePhase) Apply(ctx context.Context) error {
	installed, err := p.packages.IsInstalled(ctx, "containerd")
	if err != nil {
		return err
	}
	if !installed {
		if err := p.packages.Install(ctx, "containerd"); err != nil {
			return err
		}
	}

	if err := p.runtime.WriteConfig(ctx, []byte(runtimeConfig)); err != nil {
		return err
	}
	if err := p.runtime.Enable(ctx); err != nil {
		return err
	}
	return p.runtime.Restart(ctx)
}

func (p *installRuntimePhase) Postcondition(ctx context.Context) (bool, error) {
	return p.Precondition(ctx)
}

// installKubePackagesPhase installs kubelet, kubeadm, and kubectl from
// the configured repository and pins them against unattended upgrades.
type installKubePackagesPhase struct {
	packages      PackageManager
	repositoryURL string
	keyURL        string
	keyringPath   string
}

func (p *installKubePackagesPhase) ID() string { return PhaseInstallKubePackages }

func (p *installKubePackagesPhase) Precondition(ctx context.Context) (bool, error) {
	for _, name := range kubePackages {
		installed, err := p.packages.IsInstalled(ctx, name)
		if err != nil {
			return false, err
		}
		if !installed {
			return false, nil
		}
	}
	return true, nil
}

func (p *installKubePackagesPhase) Apply(ctx context.Context) error {
	exists, err := p.packages.RepositoryExists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		descriptor := fmt.Sprintf("deb [signed-by=%s] %s /", p.keyringPath, p.repositoryURL)
		if err := p.packages.AddRepository(ctx, descriptor, p.keyURL); err != nil {
			return err
		}
	}

	if err := p.packages.Install(ctx, kubePackages...); err != nil {
		return err
	}
	return p.packages.Hold(ctx, kubePackages...)
}

func (p *installKubePackagesPhase) Postcondition(ctx context.Context) (bool, error) {
	return p.Precondition(ctx)
}

// commonPhases returns the role-independent prefix of every catalog.
func commonPhases(deps Deps, opts Options) []provisioning.Phase {
	return []provisioning.Phase{
		&disableSwapPhase{host: deps.Host},
		&kernelPrereqsPhase{host: deps.Host},
		&installRuntimePhase{packages: deps.Packages, runtime: deps.Runtime},
		&installKubePackagesPhase{
			packages:      deps.Packages,
			repositoryURL: opts.RepositoryURL,
			keyURL:        opts.KeyURL,
			keyringPath:   opts.keyring(),
		},
	}
}
