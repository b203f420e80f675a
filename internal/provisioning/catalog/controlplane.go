package catalog

import (
	"context"

	"github.com/imamik/kubestrap/internal/provisioning"
)

// kubeadmInitPhase initializes a new cluster on this machine.
type kubeadmInitPhase struct {
	kubeadm              Bootstrapper
	podNetworkCIDR       string
	controlPlaneEndpoint string
}

func (p *kubeadmInitPhase) ID() string { return PhaseKubeadmInit }

func (p *kubeadmInitPhase) Precondition(ctx context.Context) (bool, error) {
	return p.kubeadm.IsBootstrapped(ctx)
}

func (p *kubeadmInitPhase) Apply(ctx context.Context) error {
	return p.kubeadm.Init(ctx, p.podNetworkCIDR, p.controlPlaneEndpoint)
}

func (p *kubeadmInitPhase) Postcondition(ctx context.Context) (bool, error) {
	return p.kubeadm.IsBootstrapped(ctx)
}

// installNetworkPhase installs the pod network plugin. The control
// plane's own node stays NotReady until this lands.
type installNetworkPhase struct {
	network NetworkInstaller
}

func (p *installNetworkPhase) ID() string { return PhaseInstallNetwork }

func (p *installNetworkPhase) Precondition(ctx context.Context) (bool, error) {
	return p.network.Installed(ctx)
}

func (p *installNetworkPhase) Apply(ctx context.Context) error {
	return p.network.Install(ctx)
}

func (p *installNetworkPhase) Postcondition(ctx context.Context) (bool, error) {
	return p.network.Installed(ctx)
}

func controlPlanePhases(deps Deps, opts Options) []provisioning.Phase {
	return []provisioning.Phase{
		&kubeadmInitPhase{
			kubeadm:              deps.Kubeadm,
			podNetworkCIDR:       opts.PodNetworkCIDR,
			controlPlaneEndpoint: opts.ControlPlaneEndpoint,
		},
		&installNetworkPhase{network: deps.Network},
	}
}
