package cluster

import "context"

// Member is one machine in the cluster membership snapshot.
type Member struct {
	Name  string
	Ready bool
}

// View is a read-only snapshot of cluster membership and readiness as
// reported by the control plane. It is fetched fresh for every
// verification pass and never cached.
type View struct {
	Members []Member
}

// Ready reports whether the named member exists and reports Ready.
func (v View) Ready(name string) bool {
	for _, m := range v.Members {
		if m.Name == name {
			return m.Ready
		}
	}
	return false
}

// NodesGetter fetches the current cluster membership snapshot.
// Implemented by the k8s client.
type NodesGetter interface {
	GetNodes(ctx context.Context) (View, error)
}
