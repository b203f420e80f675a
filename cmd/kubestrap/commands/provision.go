package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/kubestrap/cmd/kubestrap/handlers"
)

// Provision returns the command that runs the phase catalog on a machine.
//
// The machine role and target come from the configuration file. Workers
// need a join credential issued on the control plane with
// 'kubestrap token'; pass it via flags or answer the interactive prompt.
func Provision() *cobra.Command {
	var (
		configPath  string
		joinToken   string
		caCertHash  string
		endpoint    string
		plain       bool
		skipVerify  bool
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Run the provisioning phases on a machine",
		Long: `Bring a machine from a bare OS install to a cluster member.

Phases run in a fixed order and every completed phase is recorded, so a
failed run can simply be retried: it resumes at the failed phase.

Examples:
  # Bootstrap a control plane described by kubestrap.yaml
  kubestrap provision

  # Join a worker with a credential issued on the control plane
  kubestrap provision -c worker.yaml \
    --join-token abcdef.0123456789abcdef \
    --ca-cert-hash sha256:...

  # Plain log output for CI or non-interactive shells
  kubestrap provision --plain`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Provision(cmd.Context(), configPath, handlers.ProvisionOptions{
				JoinToken:   joinToken,
				CACertHash:  caCertHash,
				Endpoint:    endpoint,
				Plain:       plain,
				SkipVerify:  skipVerify,
				MetricsAddr: metricsAddr,
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "kubestrap.yaml", "Path to configuration file")
	cmd.Flags().StringVar(&joinToken, "join-token", "", "Join token for the worker role")
	cmd.Flags().StringVar(&caCertHash, "ca-cert-hash", "", "CA certificate hash for the worker role (sha256:...)")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "Control plane endpoint (host:port), overrides the config file")
	cmd.Flags().BoolVar(&plain, "plain", false, "Disable the interactive progress display")
	cmd.Flags().BoolVar(&skipVerify, "skip-verify", false, "Skip the convergence wait after the phases")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while provisioning")

	return cmd
}
