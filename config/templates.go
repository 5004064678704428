package config

// The following variables are available for use in the templates:
//
// JobName        name of the job, derived from the script name and arguments
// Kernel         command prefix used to invoke the script (pykernel)
// ScriptPath     path to the script
// Args           ordered list of {Key, Value} pairs for this job
// ArgMap         the same pairs as a map
// LogDir         log directory
// ImagePath      container image path (SIMG_PATH)
// DatasetsRoot   dataset root path (DATASETS_ROOT_PATH)
//
// The slurm mode adds Partition, Nodes, CpusPerTask, Mem, MemPerCpu,
// MemOption, Gres, Time, Output, Constraint, Exclude, MailType and MailUser.
//
// Template functions:
//
// quote          shell quotes a string
// args           renders "--key value" for every job argument, quoted
// required       fails rendering when the value is empty
//
// See https://golang.org/pkg/text/template for more information

var localTemplate = `{{.Kernel}} {{.ScriptPath}}{{with args}} {{.}}{{end}}
`

var cloudLocalTemplate = `{{.Kernel}} "python {{.ScriptPath}}{{with args}} {{.}}{{end}}"
`

var slurmTemplate = `#!/bin/bash

#SBATCH --job-name={{.JobName}}
{{if .Partition -}}
#SBATCH --partition={{.Partition}}
{{end -}}
#SBATCH --nodes={{if .Nodes}}{{.Nodes}}{{else}}1{{end}}
#SBATCH --ntasks=1
{{if .CpusPerTask -}}
#SBATCH --cpus-per-task={{.CpusPerTask}}
{{end -}}
{{if .MemOption -}}
#SBATCH {{.MemOption}}
{{end -}}
{{if .Gres -}}
#SBATCH --gres={{.Gres}}
{{end -}}
{{if .Time -}}
#SBATCH --time={{.Time}}
{{end -}}
#SBATCH --output={{.Output}}
{{if .Constraint -}}
#SBATCH --constraint={{.Constraint}}
{{end -}}
{{if .Exclude -}}
#SBATCH --exclude={{.Exclude}}
{{end -}}
{{if .MailType -}}
#SBATCH --mail-type={{.MailType}}
#SBATCH --mail-user={{.MailUser}}
{{end}}
scontrol show job $SLURM_JOB_ID

{{.Kernel}} {{.ScriptPath}}{{with args}} {{.}}{{end}}
`

// DefaultTemplate returns the built-in job template for a mode.
func DefaultTemplate(mode string) string {
	switch mode {
	case "slurm":
		return slurmTemplate
	case "cloud_local":
		return cloudLocalTemplate
	default:
		return localTemplate
	}
}
