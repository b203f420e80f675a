package provisioning

import "fmt"

// Role determines which phase catalog a machine runs.
type Role string

const (
	// RoleControlPlane initializes a new cluster on the machine.
	RoleControlPlane Role = "control-plane"
	// RoleWorker joins the machine to an existing cluster.
	RoleWorker Role = "worker"
)

// ParseRole validates and normalizes a role string.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleControlPlane:
		return RoleControlPlane, nil
	case RoleWorker:
		return RoleWorker, nil
	default:
		return "", fmt.Errorf("unknown role %q, expected %q or %q", s, RoleControlPlane, RoleWorker)
	}
}

func (r Role) String() string {
	return string(r)
}
