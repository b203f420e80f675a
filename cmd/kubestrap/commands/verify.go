package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/imamik/kubestrap/cmd/kubestrap/handlers"
)

// Verify returns the command that waits for cluster convergence.
func Verify() *cobra.Command {
	var (
		configPath   string
		expect       []string
		timeout      time.Duration
		pollInterval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Wait for expected members to report Ready",
		Long: `Poll the cluster until every expected member reports Ready.

A timeout is reported with the partial membership observed, and the
command exits nonzero so scripts can react. With no --expect flags the
machine's own ID is expected.

Examples:
  kubestrap verify --expect cp-1 --expect worker-1
  kubestrap verify --timeout 3m`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Verify(cmd.Context(), configPath, expect, timeout, pollInterval)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "kubestrap.yaml", "Path to configuration file")
	cmd.Flags().StringArrayVar(&expect, "expect", nil, "Member expected to be Ready (repeatable)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Convergence timeout (default from KUBESTRAP_TIMEOUT_CONVERGE)")
	cmd.Flags().DurationVar(&pollInterval, "poll-interval", 0, "Poll interval (default from KUBESTRAP_POLL_INTERVAL)")

	return cmd
}
