package run

var usage = `Usage:
  submit [run] --script NAME [flags] [--PARAM VALUE [VALUE...]]...

Every --PARAM which isn't one of the flags below is a script parameter. Each
parameter takes one or more values and one job is created for every
combination of values, merged with the script's default_args from run.yaml.

General flags:
  -s, --script              Name of the script in run.yaml to run. Required.
  -m, --mode                Execution mode: local, slurm or cloud_local. Default: local
  -c, --config_file         Path to the run.yaml config. Default: ./submit/run.yaml
      --env_file            Path to a .env file with fallback values. Default: .env
  -p, --print               Print the rendered job scripts without running them.
      --log_level           Log level: debug, info or error.

Environment flags (override .env):
      --log_path            Directory for job logs. Default: ./logs
      --pykernel            Command used to run the script.
      --simg_path           Container image path.
      --datasets_root_path  Dataset root path.

SLURM flags (override the slurm block of run.yaml, slurm mode only):
      --partition           Partition to submit to.
      --nodes               Number of nodes. Default: 1
      --cpus-per-task       CPUs per task.
      --mem                 Total memory, e.g. 8G. Excludes --mem-per-cpu.
      --mem-per-cpu         Memory per CPU, e.g. 4G. Excludes --mem.
      --gres                Generic resources, e.g. gpu:1
      --time                Time limit in D-HH:MM:SS format.
      --constraint          Node features required.
      --exclude             Nodes to exclude.
      --mail-type           Mail events, e.g. END,FAIL. Requires --mail-user.
      --mail-user           Mail recipient.
      --slurm_log_dir       Directory for SLURM output files. Default: --log_path

Flag names ignore case, and "-" and "_" are interchangeable.

Examples:
  # Run the train script locally with its default arguments.
  submit --script train

  # Run four jobs, one per combination of seed and learning rate.
  submit --script train --seed 1 2 --lr 0.1 0.01

  # Submit the same grid to SLURM with more memory.
  submit --mode slurm --script train --seed 1 2 --mem 32G

  # Print the SLURM scripts instead of submitting them.
  submit --mode slurm --script train --print
`
