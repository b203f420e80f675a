package commands

import (
	"os"

	"github.com/spf13/cobra"
)

// Completion returns the completion command for shell autocompletion.
func Completion() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for kubestrap.

To load completions:

Bash:
  $ source <(kubestrap completion bash)
  # To load completions for each session, execute once:
  $ kubestrap completion bash > /etc/bash_completion.d/kubestrap

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc
  # To load completions for each session, execute once:
  $ kubestrap completion zsh > "${fpath[1]}/_kubestrap"
  # You will need to start a new shell for this setup to take effect.

Fish:
  $ kubestrap completion fish | source
  # To load completions for each session, execute once:
  $ kubestrap completion fish > ~/.config/fish/completions/kubestrap.fish

PowerShell:
  PS> kubestrap completion powershell | Out-String | Invoke-Expression
  # To load completions for every new session, run:
  PS> kubestrap completion powershell > kubestrap.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}
	return cmd
}
