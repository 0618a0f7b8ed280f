package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/obentoo/qmaur/internal/common/logger"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Print a completion script for the given shell on stdout.

Package names are not completed; the scripts cover subcommands and flags,
including the values accepted by search --by and --sort.

  qmaur completion bash > /usr/share/bash-completion/completions/qmaur
  qmaur completion zsh > /usr/share/zsh/site-functions/_qmaur
  qmaur completion fish > /usr/share/fish/vendor_completions.d/qmaur.fish
  qmaur completion powershell | Out-String | Invoke-Expression`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	Run: func(cmd *cobra.Command, args []string) {
		if err := writeCompletion(os.Stdout, args[0]); err != nil {
			logger.Error("generating completions: %v", err)
			os.Exit(1)
		}
	},
}

// generateBashCompletionsCmd keeps the single-purpose spelling of
// "completion bash" that packaging scripts call
var generateBashCompletionsCmd = &cobra.Command{
	Use:   "generate-bash-completions",
	Short: "Print the bash completion script",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := writeCompletion(os.Stdout, "bash"); err != nil {
			logger.Error("generating completions: %v", err)
			os.Exit(1)
		}
	},
}

// writeCompletion writes the completion script for shell to w
func writeCompletion(w io.Writer, shell string) error {
	switch shell {
	case "bash":
		return rootCmd.GenBashCompletionV2(w, true)
	case "zsh":
		return rootCmd.GenZshCompletion(w)
	case "fish":
		return rootCmd.GenFishCompletion(w, true)
	case "powershell":
		return rootCmd.GenPowerShellCompletionWithDesc(w)
	default:
		return fmt.Errorf("unsupported shell %q", shell)
	}
}

func init() {
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(generateBashCompletionsCmd)
}
