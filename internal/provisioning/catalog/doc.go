// Package catalog defines the concrete phases a machine runs, in order.
//
// Common phases prepare any machine to host Kubernetes: swap off,
// kernel modules and sysctls, container runtime, and the kube packages.
// Control-plane machines then initialize a cluster and install its
// network plugin; workers join an existing cluster with a credential
// issued by the control plane.
package catalog
