// Package cluster contains the control-plane-facing pieces of bootstrap:
// the join credential exchange that binds workers to a control plane, and
// the verifier that confirms members converge to Ready after join.
package cluster
