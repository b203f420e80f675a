package catalog

import (
	"context"
	"fmt"

	"github.com/imamik/kubestrap/internal/cluster"
	"github.com/imamik/kubestrap/internal/provisioning"
)

// joinClusterPhase admits the machine to an existing cluster. It needs a
// join credential issued by the control plane; without one the phase
// reports a missing prerequisite before doing anything.
type joinClusterPhase struct {
	kubeadm    Bootstrapper
	credential *cluster.JoinCredential
}

func (p *joinClusterPhase) ID() string { return PhaseJoinCluster }

func (p *joinClusterPhase) CheckPrerequisites(_ context.Context) error {
	if p.credential == nil {
		return fmt.Errorf("no join credential supplied, issue one on the control plane first")
	}
	if err := p.credential.Validate(); err != nil {
		return fmt.Errorf("join credential is invalid: %w", err)
	}
	return nil
}

func (p *joinClusterPhase) Precondition(ctx context.Context) (bool, error) {
	return p.kubeadm.IsJoined(ctx)
}

func (p *joinClusterPhase) Apply(ctx context.Context) error {
	return p.kubeadm.Join(ctx, *p.credential)
}

func (p *joinClusterPhase) Postcondition(ctx context.Context) (bool, error) {
	return p.kubeadm.IsJoined(ctx)
}

func workerPhases(deps Deps, opts Options) []provisioning.Phase {
	return []provisioning.Phase{
		&joinClusterPhase{
			kubeadm:    deps.Kubeadm,
			credential: opts.JoinCredential,
		},
	}
}
