package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/kubestrap/cmd/kubestrap/handlers"
)

// Token returns the command that issues a worker join credential.
//
// Tokens are short-lived; issue a fresh one per worker. Running the
// command again always mints a new token, so a leaked or expired one is
// replaced by reissuing.
func Token() *cobra.Command {
	var (
		configPath string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a join credential on the control plane",
		Long: `Issue a credential that admits a worker to the cluster.

The command must run against a bootstrapped control plane. The output is
the token, endpoint, and CA certificate hash a worker needs, plus the
matching 'kubestrap provision' invocation.

Examples:
  kubestrap token
  kubestrap token -c cp.yaml -o yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Token(cmd.Context(), configPath, output)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "kubestrap.yaml", "Path to configuration file")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text or yaml")

	return cmd
}
