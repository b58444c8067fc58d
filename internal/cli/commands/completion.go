package commands

import (
	"github.com/spf13/cobra"
)

// NewCompletionCommand creates the completion command for shell completions
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion script",
		Long: `Generate shell completion script for ngscan.

To load completions:

Bash:

  $ source <(ngscan completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ ngscan completion bash > /etc/bash_completion.d/ngscan
  # macOS:
  $ ngscan completion bash > $(brew --prefix)/etc/bash_completion.d/ngscan

Zsh:

  $ ngscan completion zsh > "${fpath[1]}/_ngscan"

Fish:

  $ ngscan completion fish > ~/.config/fish/completions/ngscan.fish

PowerShell:

  PS> ngscan completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			root := cmd.Root()

			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, true)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}
