package catalog

import (
	"github.com/imamik/kubestrap/internal/cluster"
	"github.com/imamik/kubestrap/internal/platform/pkgmgr"
	"github.com/imamik/kubestrap/internal/provisioning"
)

// Options parameterizes the catalog for one cluster.
type Options struct {
	// RepositoryURL and KeyURL locate the Kubernetes package repository.
	RepositoryURL string
	KeyURL        string

	// KeyringPath overrides where the repository signing key is stored.
	KeyringPath string

	// PodNetworkCIDR and ControlPlaneEndpoint feed kubeadm init.
	PodNetworkCIDR       string
	ControlPlaneEndpoint string

	// JoinCredential admits a worker to the cluster. Nil until the
	// operator supplies one; the join phase reports it as a missing
	// prerequisite rather than attempting a join that cannot succeed.
	JoinCredential *cluster.JoinCredential
}

func (o Options) keyring() string {
	if o.KeyringPath != "" {
		return o.KeyringPath
	}
	return pkgmgr.KeyringPath()
}

// ForRole builds the full ordered plan for a machine role.
func ForRole(role provisioning.Role, deps Deps, opts Options) provisioning.Plan {
	common := commonPhases(deps, opts)

	plan := provisioning.Plan{
		Role:        role,
		Phases:      common,
		CommonCount: len(common),
	}

	switch role {
	case provisioning.RoleControlPlane:
		plan.Phases = append(plan.Phases, controlPlanePhases(deps, opts)...)
	case provisioning.RoleWorker:
		plan.Phases = append(plan.Phases, workerPhases(deps, opts)...)
	}

	return plan
}
