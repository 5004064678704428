package config

import (
	"github.com/ohsu-comp-bio/submit/logger"
)

const containerKernel = "singularity exec --bind /mnt:/mnt --nv python.sif bash -c"

// DefaultConfig returns configuration with simple defaults. Templates are
// left empty so the built-in templates are used.
func DefaultConfig() Config {
	return Config{
		Modes: map[string]Mode{
			"local": {
				Kernel: "python",
			},
			"cloud_local": {
				Kernel: containerKernel,
			},
			"slurm": {
				Kernel: containerKernel,
				Slurm: &SlurmOptions{
					CpusPerTask: 1,
					MemPerCpu:   "4G",
					Gres:        "gpu:1",
					Time:        "0-08:00:00",
				},
			},
		},
		Scripts: map[string]Script{},
		Logger:  logger.DefaultConfig(),
	}
}
