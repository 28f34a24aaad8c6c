package cli

import (
	"github.com/spf13/cobra"
)

// completionCommand prints a shell completion script for groupfit.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script covering every groupfit command and flag.

  bash:        source <(groupfit completion bash)
  zsh:         groupfit completion zsh > "${fpath[1]}/_groupfit"
  fish:        groupfit completion fish > ~/.config/fish/completions/groupfit.fish
  powershell:  groupfit completion powershell | Out-String | Invoke-Expression

Start a new shell afterwards.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, out := cmd.Root(), cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, true)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			default:
				return root.GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}
