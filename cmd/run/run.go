package run

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ohsu-comp-bio/submit/cmd/util"
	"github.com/ohsu-comp-bio/submit/compute"
	"github.com/ohsu-comp-bio/submit/compute/local"
	"github.com/ohsu-comp-bio/submit/compute/slurm"
	"github.com/ohsu-comp-bio/submit/config"
	"github.com/ohsu-comp-bio/submit/grid"
	"github.com/ohsu-comp-bio/submit/logger"
	"github.com/ohsu-comp-bio/submit/version"
)

var (
	// ErrNoScript is returned when --script is missing.
	ErrNoScript = errors.New("--script is required")
	// ErrNoKernel is returned when no command prefix is configured for the
	// mode in run.yaml, the .env file or on the command line.
	ErrNoKernel = errors.New("pykernel is not set")
)

// plan holds the rendered jobs of one invocation, resolved from the
// command line, run.yaml and the .env file.
type plan struct {
	params   grid.Params
	jobs     []compute.Job
	strategy compute.Strategy
}

// newModes returns the execution strategies. local and cloud_local share
// the local runner, they only differ by template and kernel.
func newModes(log *logger.Logger, stdout io.Writer, opts config.SlurmOptions) compute.Modes {
	lb := local.NewBackend(log.NewSubLogger("local"), stdout)
	return compute.Modes{
		"local":       {Runner: lb},
		"cloud_local": {Runner: lb},
		"slurm": {
			Renderer: slurm.Renderer{Options: opts},
			Runner:   slurm.NewBackend(log.NewSubLogger("slurm"), stdout),
		},
	}
}

// build resolves the arguments into rendered jobs. Nothing is run, and
// nothing is written to disk.
func build(vals flagVals, tail []string, stdout io.Writer) (*plan, error) {
	if vals.script == "" {
		return nil, ErrNoScript
	}

	flagConf := config.Config{Logger: logger.Config{Level: vals.logLevel}}
	conf, err := util.MergeConfigFileWithFlags(vals.configFile, flagConf)
	if err != nil {
		return nil, err
	}
	logger.Configure(conf.Logger)
	log := logger.NewSubLogger("submit")
	log.Debug("Version", version.LogFields()...)

	mode, err := conf.Mode(vals.mode)
	if err != nil {
		return nil, err
	}
	script, err := conf.Script(vals.script)
	if err != nil {
		return nil, err
	}

	env, err := config.LoadEnvFile(vals.envFile)
	if err != nil {
		return nil, err
	}
	settings, err := config.MergeSettings(env, config.Settings{Kernel: mode.Kernel}, vals.settings)
	if err != nil {
		return nil, err
	}
	if settings.Kernel == "" {
		return nil, fmt.Errorf("%w for mode %s: set pykernel in run.yaml, PYKERNEL in %s or --pykernel", ErrNoKernel, vals.mode, vals.envFile)
	}

	defaults := mode.SlurmDefaults()
	opts, err := defaults.Merge(vals.slurm)
	if err != nil {
		return nil, err
	}
	if r := replacedMemOption(defaults, vals.slurm); r != "" {
		log.Warn("Memory flag replaces the run.yaml setting", "flag", vals.slurm.MemOption(), "replaced", r)
	}

	strategy, err := newModes(log, stdout, opts).Lookup(vals.mode)
	if err != nil {
		return nil, err
	}
	if err := strategy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s options: %w", vals.mode, err)
	}

	params, err := grid.Resolve(script.DefaultArgs.Params(), tail)
	if err != nil {
		return nil, err
	}

	src, err := mode.TemplateSource(vals.mode)
	if err != nil {
		return nil, err
	}
	jobs, err := compute.RenderJobs(strategy, src, script.Path, settings, grid.Jobs(vals.script, params))
	if err != nil {
		return nil, err
	}

	log.Debug("Resolved settings",
		"mode", vals.mode,
		"script", script.Path,
		"settings", settings,
		"slurm", opts,
	)

	return &plan{
		params:   params,
		jobs:     jobs,
		strategy: strategy,
	}, nil
}

// replacedMemOption returns the run.yaml memory option dropped in favor of
// the other memory flag, or "" if nothing was dropped.
func replacedMemOption(conf, flags config.SlurmOptions) string {
	switch {
	case flags.Mem != "" && flags.MemPerCpu == "" && conf.MemPerCpu != "":
		return "mem_per_cpu=" + conf.MemPerCpu
	case flags.MemPerCpu != "" && flags.Mem == "" && conf.Mem != "":
		return "mem=" + conf.Mem
	}
	return ""
}

// Run takes a list of CLI args/flags, expands them into jobs and runs or
// submits the jobs one after another. It stops at the first failure.
func Run(ctx context.Context, args []string, stdout io.Writer) error {
	vals := defaultVals()
	tail, err := parseArgs(&vals, args)
	if err != nil {
		return err
	}
	if vals.help {
		fmt.Fprint(stdout, usage)
		return nil
	}

	p, err := build(vals, tail, stdout)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Creating %d job(s) with the following parameters:\n%s", len(p.jobs), p.params.Summary())

	if vals.printJobs {
		for _, j := range p.jobs {
			fmt.Fprintf(stdout, "\n# %s\n%s", j.Name, j.Script)
		}
		return nil
	}

	for _, j := range p.jobs {
		if _, err := p.strategy.Runner.Run(ctx, j); err != nil {
			return err
		}
	}

	fmt.Fprintf(stdout, "Submitted %d job(s)\n", len(p.jobs))
	return nil
}
