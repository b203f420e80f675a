// Package containerd manages the container runtime service on a host:
// its configuration file and its systemd unit lifecycle.
package containerd

import (
	"context"
	"fmt"
	"strings"

	"github.com/imamik/kubestrap/internal/platform/exec"
)

// DefaultConfigPath is where containerd reads its configuration.
const DefaultConfigPath = "/etc/containerd/config.toml"

// Service controls the containerd systemd unit and its configuration.
type Service struct {
	runner     exec.Runner
	configPath string
}

// NewService creates a containerd service collaborator.
// An empty configPath selects DefaultConfigPath.
func NewService(runner exec.Runner, configPath string) *Service {
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	return &Service{runner: runner, configPath: configPath}
}

// ConfigPath returns the configuration file path in use.
func (s *Service) ConfigPath() string {
	return s.configPath
}

// WriteConfig writes the runtime configuration file.
func (s *Service) WriteConfig(ctx context.Context, content []byte) error {
	if err := s.runner.WriteFile(ctx, s.configPath, content, 0o644); err != nil {
		return fmt.Errorf("failed to write containerd config: %w", err)
	}
	return nil
}

// ConfigContains reports whether the current configuration file contains
// the given marker. Used to detect whether the kubestrap-managed config
// is in place without caching file contents.
func (s *Service) ConfigContains(ctx context.Context, marker string) (bool, error) {
	out, err := s.runner.Run(ctx, fmt.Sprintf("cat %s 2>/dev/null || true", s.configPath))
	if err != nil {
		return false, fmt.Errorf("failed to read containerd config: %w", err)
	}
	return strings.Contains(out, marker), nil
}

// Enable enables the unit so it starts on boot.
func (s *Service) Enable(ctx context.Context) error {
	if out, err := s.runner.Run(ctx, "systemctl enable containerd"); err != nil {
		return fmt.Errorf("failed to enable containerd: %w\nOutput: %s", err, out)
	}
	return nil
}

// Restart restarts the unit so configuration changes take effect.
func (s *Service) Restart(ctx context.Context) error {
	if out, err := s.runner.Run(ctx, "systemctl restart containerd"); err != nil {
		return fmt.Errorf("failed to restart containerd: %w\nOutput: %s", err, out)
	}
	return nil
}

// IsActive reports whether the unit is currently running.
func (s *Service) IsActive(ctx context.Context) (bool, error) {
	out, err := s.runner.Run(ctx, "systemctl is-active containerd || true")
	if err != nil {
		return false, fmt.Errorf("failed to probe containerd state: %w", err)
	}
	return strings.TrimSpace(out) == "active", nil
}
