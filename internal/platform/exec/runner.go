// Package exec defines the command runner abstraction used by all host
// collaborators (package manager, runtime service, kubeadm). A Runner hides
// whether commands execute on the local machine or on a remote target, so
// the provisioning phases never care where the host actually is.
package exec

import (
	"context"
	"os"
)

// Runner executes shell commands and writes files on a target host.
type Runner interface {
	// Run executes a shell command and returns its combined output.
	// A non-zero exit status is returned as an error; the output is
	// still returned so callers can surface collaborator detail.
	Run(ctx context.Context, command string) (string, error)

	// WriteFile writes data to path on the target host with the given mode,
	// creating parent directories as needed.
	WriteFile(ctx context.Context, path string, data []byte, perm os.FileMode) error
}
