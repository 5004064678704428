// Package cmd contains the submit CLI commands.
package cmd

import (
	"errors"
	"os"
	"strings"

	"github.com/ohsu-comp-bio/submit/cmd/run"
	"github.com/ohsu-comp-bio/submit/cmd/scaffold"
	"github.com/ohsu-comp-bio/submit/cmd/version"
	"github.com/ohsu-comp-bio/submit/compute"
	"github.com/ohsu-comp-bio/submit/logger"
	"github.com/spf13/cobra"
)

// RootCmd represents the root command
var RootCmd = &cobra.Command{
	Use:           "submit",
	Short:         "Run a script over a grid of parameters, locally or on SLURM.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetOutput(cmd.ErrOrStderr())
	},
}

func init() {
	RootCmd.AddCommand(completionCmd)
	RootCmd.AddCommand(run.Cmd)
	RootCmd.AddCommand(scaffold.NewCommand())
	RootCmd.AddCommand(version.Cmd)
}

// Execute runs the root command with the process arguments.
func Execute() error {
	return ExecuteArgs(os.Args[1:])
}

// ExecuteArgs runs the root command. Flags given without a subcommand are
// passed to "run", so "submit --script train" is "submit run --script train".
func ExecuteArgs(args []string) error {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		args = append([]string{"run"}, args...)
	}
	RootCmd.SetArgs(args)
	return RootCmd.Execute()
}

// ExitCode returns the process exit status for an error returned by Execute.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *compute.ExitError
	if errors.As(err, &ee) && ee.Code > 0 {
		return ee.Code
	}
	return 1
}
