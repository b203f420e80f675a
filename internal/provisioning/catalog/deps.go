package catalog

import (
	"context"

	"github.com/imamik/kubestrap/internal/cluster"
)

// HostConfigurer adjusts kernel and swap settings.
// Implemented by platform/sys.Host.
type HostConfigurer interface {
	SwapEnabled(ctx context.Context) (bool, error)
	DisableSwap(ctx context.Context) error
	ModuleLoaded(ctx context.Context, name string) (bool, error)
	EnsureModules(ctx context.Context, names ...string) error
	SysctlValue(ctx context.Context, key string) (string, error)
	ApplySysctl(ctx context.Context, settings map[string]string) error
}

// PackageManager installs and pins system packages.
// Implemented by platform/pkgmgr.Apt.
type PackageManager interface {
	IsInstalled(ctx context.Context, name string) (bool, error)
	Install(ctx context.Context, names ...string) error
	Hold(ctx context.Context, names ...string) error
	RepositoryExists(ctx context.Context) (bool, error)
	AddRepository(ctx context.Context, descriptor, signingKeyURL string) error
}

// RuntimeService manages the container runtime daemon.
// Implemented by platform/containerd.Service.
type RuntimeService interface {
	WriteConfig(ctx context.Context, content []byte) error
	ConfigContains(ctx context.Context, marker string) (bool, error)
	Enable(ctx context.Context) error
	Restart(ctx context.Context) error
	IsActive(ctx context.Context) (bool, error)
}

// Bootstrapper drives kubeadm on the machine.
// Implemented by platform/kubeadm.Kubeadm.
type Bootstrapper interface {
	IsBootstrapped(ctx context.Context) (bool, error)
	IsJoined(ctx context.Context) (bool, error)
	Init(ctx context.Context, podNetworkCIDR, controlPlaneEndpoint string) error
	Join(ctx context.Context, cred cluster.JoinCredential) error
}

// NetworkInstaller installs the pod network plugin.
// Implemented by addons/cni.Installer.
type NetworkInstaller interface {
	Installed(ctx context.Context) (bool, error)
	Install(ctx context.Context) error
}

// Deps bundles every collaborator the catalog phases use.
type Deps struct {
	Host     HostConfigurer
	Packages PackageManager
	Runtime  RuntimeService
	Kubeadm  Bootstrapper
	Network  NetworkInstaller
}
