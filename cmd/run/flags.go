package run

import (
	"github.com/ohsu-comp-bio/submit/cmd/util"
	"github.com/ohsu-comp-bio/submit/config"
	"github.com/spf13/pflag"
)

// *********************************************************************
// IMPORTANT:
// Usage/help docs are defined in usage.go.
// If you're updating flags, you probably need to update that file.
// *********************************************************************

// flagVals captures values from CLI flag parsing
type flagVals struct {
	mode       string
	script     string
	configFile string
	envFile    string
	logLevel   string
	printJobs  bool
	help       bool

	// Override values from the .env file and run.yaml.
	settings config.Settings
	// Override values from the slurm block of run.yaml.
	slurm config.SlurmOptions
}

func defaultVals() flagVals {
	return flagVals{
		mode:       "local",
		configFile: "./submit/run.yaml",
		envFile:    ".env",
	}
}

func newFlags(v *flagVals) *pflag.FlagSet {
	f := pflag.NewFlagSet("", pflag.ContinueOnError)
	// Disable usage because it's handled elsewhere (cmd.go)
	f.Usage = func() {}

	// General
	f.StringVarP(&v.mode, "mode", "m", v.mode, "")
	f.StringVarP(&v.script, "script", "s", v.script, "")
	f.StringVarP(&v.configFile, "config_file", "c", v.configFile, "")
	f.StringVar(&v.envFile, "env_file", v.envFile, "")
	f.StringVar(&v.logLevel, "log_level", v.logLevel, "")
	f.BoolVarP(&v.printJobs, "print", "p", v.printJobs, "")
	f.BoolVarP(&v.help, "help", "h", v.help, "")

	// Environment
	f.StringVar(&v.settings.LogPath, "log_path", v.settings.LogPath, "")
	f.StringVar(&v.settings.Kernel, "pykernel", v.settings.Kernel, "")
	f.StringVar(&v.settings.ImagePath, "simg_path", v.settings.ImagePath, "")
	f.StringVar(&v.settings.DatasetsRoot, "datasets_root_path", v.settings.DatasetsRoot, "")

	// SLURM resources
	f.StringVar(&v.slurm.Partition, "partition", v.slurm.Partition, "")
	f.IntVar(&v.slurm.Nodes, "nodes", v.slurm.Nodes, "")
	f.IntVar(&v.slurm.CpusPerTask, "cpus-per-task", v.slurm.CpusPerTask, "")
	f.StringVar(&v.slurm.Mem, "mem", v.slurm.Mem, "")
	f.StringVar(&v.slurm.MemPerCpu, "mem-per-cpu", v.slurm.MemPerCpu, "")
	f.StringVar(&v.slurm.Gres, "gres", v.slurm.Gres, "")
	f.StringVar(&v.slurm.Time, "time", v.slurm.Time, "")
	f.StringVar(&v.slurm.Constraint, "constraint", v.slurm.Constraint, "")
	f.StringVar(&v.slurm.Exclude, "exclude", v.slurm.Exclude, "")
	f.StringVar(&v.slurm.MailType, "mail-type", v.slurm.MailType, "")
	f.StringVar(&v.slurm.MailUser, "mail-user", v.slurm.MailUser, "")
	f.StringVar(&v.slurm.LogDir, "slurm_log_dir", v.slurm.LogDir, "")

	f.SetNormalizeFunc(util.NormalizeFlags)
	return f
}

// parseArgs parses the known flags into vals and returns the remaining
// tokens, which describe the parameter grid.
func parseArgs(vals *flagVals, args []string) ([]string, error) {
	flags := newFlags(vals)
	known, rest := util.SplitArgs(flags, args)
	if err := flags.Parse(known); err != nil {
		return nil, err
	}
	return rest, nil
}
