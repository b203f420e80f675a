// Package state persists per-machine provisioning progress.
//
// Each machine gets one YAML file under the state directory, named by its
// machine ID. The file records which phases have completed so that an
// interrupted run can resume where it stopped instead of starting over.
// A lock file next to the state file rejects concurrent runs against the
// same machine.
package state
