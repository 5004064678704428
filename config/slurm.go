package config

import (
	"fmt"
	"regexp"

	"github.com/alecthomas/units"
	"github.com/hashicorp/go-multierror"
	"github.com/imdario/mergo"
)

var (
	memFormat  = regexp.MustCompile(`^\d+(\.\d+)?[GM]$`)
	timeFormat = regexp.MustCompile(`^\d+-\d{2}:\d{2}:\d{2}$`)
)

// SlurmOptions describes the resources requested for a SLURM job.
type SlurmOptions struct {
	Partition   string `yaml:"partition" json:"partition,omitempty"`
	Nodes       int    `yaml:"nodes" json:"nodes,omitempty"`
	CpusPerTask int    `yaml:"cpus_per_task" json:"cpus_per_task,omitempty"`
	// Total memory, e.g. "8G". Mutually exclusive with MemPerCpu.
	Mem string `yaml:"mem" json:"mem,omitempty"`
	// Memory per CPU, e.g. "4G" or "13.4M".
	MemPerCpu string `yaml:"mem_per_cpu" json:"mem_per_cpu,omitempty"`
	// Generic resources, e.g. "gpu:1".
	Gres string `yaml:"gres" json:"gres,omitempty"`
	// Time limit in D-HH:MM:SS format.
	Time string `yaml:"time" json:"time,omitempty"`
	// Directory for the job's output file. Falls back to the log path.
	LogDir     string `yaml:"log_dir" json:"log_dir,omitempty"`
	Constraint string `yaml:"constraint" json:"constraint,omitempty"`
	Exclude    string `yaml:"exclude" json:"exclude,omitempty"`
	MailType   string `yaml:"mail_type" json:"mail_type,omitempty"`
	MailUser   string `yaml:"mail_user" json:"mail_user,omitempty"`
}

// Merge returns o with every non-empty field of flags written over it.
// Setting one memory option in flags clears the other one from o, so a
// command line --mem replaces a configured mem_per_cpu.
func (o SlurmOptions) Merge(flags SlurmOptions) (SlurmOptions, error) {
	out := o
	if flags.Mem != "" && flags.MemPerCpu == "" {
		out.MemPerCpu = ""
	}
	if flags.MemPerCpu != "" && flags.Mem == "" {
		out.Mem = ""
	}
	if err := mergo.MergeWithOverwrite(&out, flags); err != nil {
		return o, err
	}
	return out, nil
}

// Validate checks the options and reports every problem found.
func (o SlurmOptions) Validate() error {
	var result *multierror.Error

	if o.Mem != "" && o.MemPerCpu != "" {
		result = multierror.Append(result, fmt.Errorf("both --mem and --mem-per-cpu are specified"))
	}
	if o.Mem != "" {
		if _, err := MemoryBytes(o.Mem); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if o.MemPerCpu != "" {
		if _, err := MemoryBytes(o.MemPerCpu); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if o.Time != "" && !timeFormat.MatchString(o.Time) {
		result = multierror.Append(result, fmt.Errorf("time %q not in format D-HH:MM:SS", o.Time))
	}
	if o.MailType != "" && o.MailUser == "" {
		result = multierror.Append(result, fmt.Errorf("--mail-user must be specified when --mail-type is set"))
	}
	if o.Nodes < 0 {
		result = multierror.Append(result, fmt.Errorf("nodes must not be negative: %d", o.Nodes))
	}
	if o.CpusPerTask < 0 {
		result = multierror.Append(result, fmt.Errorf("cpus-per-task must not be negative: %d", o.CpusPerTask))
	}

	return result.ErrorOrNil()
}

// MemOption returns the #SBATCH memory option, or an empty string when no
// memory was requested.
func (o SlurmOptions) MemOption() string {
	switch {
	case o.Mem != "":
		return "--mem=" + o.Mem
	case o.MemPerCpu != "":
		return "--mem-per-cpu=" + o.MemPerCpu
	}
	return ""
}

// MemoryBytes parses a SLURM memory string such as "8G" or "13.4M".
func MemoryBytes(mem string) (units.Base2Bytes, error) {
	if !memFormat.MatchString(mem) {
		return 0, fmt.Errorf("memory %q has incorrect format", mem)
	}
	b, err := units.ParseBase2Bytes(mem + "B")
	if err != nil {
		return 0, fmt.Errorf("memory %q has incorrect format: %v", mem, err)
	}
	return b, nil
}
