package util

import (
	"errors"
	"fmt"
	"os"

	"github.com/imdario/mergo"
	"github.com/ohsu-comp-bio/submit/config"
	"github.com/ohsu-comp-bio/submit/logger"
)

// MergeConfigFileWithFlags parses the run.yaml config file and overlays the
// logger settings given on the command line. Logger values missing from both
// fall back to the defaults.
func MergeConfigFileWithFlags(file string, flagConf config.Config) (config.Config, error) {
	var conf config.Config
	err := config.ParseFile(file, &conf)
	if errors.Is(err, os.ErrNotExist) {
		return conf, fmt.Errorf("%w\nrun 'submit init' to create a config", err)
	}
	if err != nil {
		return conf, err
	}

	// file vals <- cli val
	err = mergo.MergeWithOverwrite(&conf.Logger, flagConf.Logger)
	if err != nil {
		return conf, err
	}

	err = mergo.Merge(&conf.Logger, logger.DefaultConfig())
	if err != nil {
		return conf, err
	}
	return conf, nil
}
