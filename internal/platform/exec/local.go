package exec

import (
	"context"
	"fmt"
	"os"
	osexec "os/exec"
	"path/filepath"
)

// LocalRunner executes commands on the machine kubestrap itself runs on.
type LocalRunner struct {
	// Shell is the shell binary used to interpret commands.
	// Defaults to /bin/sh when empty.
	Shell string
}

// NewLocalRunner creates a runner for the local machine.
func NewLocalRunner() *LocalRunner {
	return &LocalRunner{}
}

// Run implements Runner.
func (r *LocalRunner) Run(ctx context.Context, command string) (string, error) {
	shell := r.Shell
	if shell == "" {
		shell = "/bin/sh"
	}

	out, err := osexec.CommandContext(ctx, shell, "-c", command).CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("command failed: %w\nCommand: %s\nOutput: %s", err, command, string(out))
	}

	return string(out), nil
}

// WriteFile implements Runner.
func (r *LocalRunner) WriteFile(_ context.Context, path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create parent directory for %s: %w", path, err)
	}

	if err := os.WriteFile(path, data, perm); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}
