package run

import (
	"syscall"
	"time"

	"github.com/ohsu-comp-bio/submit/util"
	"github.com/spf13/cobra"
)

// *********************************************************************
// IMPORTANT:
// Usage/help docs are defined in usage.go.
// If you're updating flags, you probably need to update that file.
// *********************************************************************

// Cmd represents the run command
var Cmd = &cobra.Command{
	Use:   "run --script NAME [flags] [--PARAM VALUE...]...",
	Short: "Expand a parameter grid into jobs and run or submit them.",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := util.SignalContext(cmd.Context(), time.Millisecond, syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		err := Run(ctx, args, cmd.OutOrStdout())
		if err == ErrNoScript {
			cmd.Usage()
		}
		return err
	},
	DisableFlagParsing: true,
}

func init() {
	Cmd.SetUsageTemplate(usage)
}
