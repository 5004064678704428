package main

import (
	"os"

	"github.com/ohsu-comp-bio/submit/cmd"
	"github.com/ohsu-comp-bio/submit/logger"
)

func main() {
	if err := cmd.Execute(); err != nil {
		logger.PrintSimpleError(err)
		os.Exit(cmd.ExitCode(err))
	}
}
