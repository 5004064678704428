package cmd

import (
	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion",
	Short: "Generate shell completion code",
}

var bash = &cobra.Command{
	Use:   "bash",
	Short: "Generate bash completion code",
	Long: `This command generates bash CLI completion code.
Add "source <(submit completion bash)" to your bash profile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return RootCmd.GenBashCompletionV2(cmd.OutOrStdout(), true)
	},
}

var zsh = &cobra.Command{
	Use:   "zsh",
	Short: "Generate zsh completion code",
	Long: `This command generates zsh CLI completion code.
Add "source <(submit completion zsh)" to your zsh profile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return RootCmd.GenZshCompletion(cmd.OutOrStdout())
	},
}

func init() {
	completionCmd.AddCommand(bash)
	completionCmd.AddCommand(zsh)
}
