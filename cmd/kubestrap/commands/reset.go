package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/kubestrap/cmd/kubestrap/handlers"
)

// Reset returns the command that clears a machine's provisioning record.
func Reset() *cobra.Command {
	var (
		configPath string
		full       bool
		yes        bool
	)

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear the machine's provisioning state",
		Long: `Forget the machine's provisioning progress.

The next 'kubestrap provision' starts from the first phase; phases whose
effect is still in place are skipped by their preconditions. With --full
the machine is also torn down with 'kubeadm reset', removing it from the
cluster.

Examples:
  kubestrap reset --yes
  kubestrap reset --full --yes`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Reset(cmd.Context(), configPath, full, yes)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "kubestrap.yaml", "Path to configuration file")
	cmd.Flags().BoolVar(&full, "full", false, "Also run 'kubeadm reset' on the machine")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}
