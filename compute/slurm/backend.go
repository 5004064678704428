// Package slurm submits job scripts to a SLURM cluster with sbatch.
package slurm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"time"

	"github.com/ohsu-comp-bio/submit/compute"
	"github.com/ohsu-comp-bio/submit/config"
	"github.com/ohsu-comp-bio/submit/logger"
	"github.com/ohsu-comp-bio/submit/util"
	"github.com/ohsu-comp-bio/submit/util/fsutil"
)

var jobIDPattern = regexp.MustCompile(`Submitted batch job ([0-9]+)`)

const waitDelay = 5 * time.Second

// Renderer adds the SLURM resource request to the template variables.
type Renderer struct {
	Options config.SlurmOptions
}

// Validate validates the resource request.
func (r Renderer) Validate() error {
	return r.Options.Validate()
}

// Extend adds the SLURM variables. The log directory is made absolute since
// the job runs from wherever the scheduler starts it.
func (r Renderer) Extend(vars compute.Vars) error {
	o := r.Options
	logDir := o.LogDir
	if logDir == "" {
		logDir = vars.String("LogDir")
	}
	logDir, err := filepath.Abs(logDir)
	if err != nil {
		return fmt.Errorf("resolving log directory: %w", err)
	}

	vars["LogDir"] = logDir
	vars["Output"] = filepath.Join(logDir, fmt.Sprintf("%%j_%s.out", vars.String("JobName")))
	vars["Partition"] = o.Partition
	vars["Nodes"] = o.Nodes
	vars["CpusPerTask"] = o.CpusPerTask
	vars["Mem"] = o.Mem
	vars["MemPerCpu"] = o.MemPerCpu
	vars["MemOption"] = o.MemOption()
	vars["Gres"] = o.Gres
	vars["Time"] = o.Time
	vars["Constraint"] = o.Constraint
	vars["Exclude"] = o.Exclude
	vars["MailType"] = o.MailType
	vars["MailUser"] = o.MailUser
	return nil
}

// NewBackend returns a new SLURM Backend instance.
func NewBackend(log *logger.Logger, stdout io.Writer) *Backend {
	return &Backend{
		SubmitCmd: "sbatch",
		Stdout:    stdout,
		log:       log,
	}
}

// Backend submits jobs with sbatch. It does not wait for them to run.
type Backend struct {
	SubmitCmd string
	// Directory for the temporary submit scripts. Defaults to os.TempDir().
	ScriptDir string
	// sbatch's output is copied here.
	Stdout io.Writer
	log    *logger.Logger
}

// Run writes the job's script to a temporary file and submits it. The file
// is removed once sbatch returns, whatever the outcome.
func (b *Backend) Run(ctx context.Context, job compute.Job) (int, error) {
	bin, err := exec.LookPath(b.SubmitCmd)
	if err != nil {
		return 1, &compute.ExitError{
			Code: 1,
			Err:  fmt.Errorf("%s not found, is SLURM installed on this machine? %w", b.SubmitCmd, err),
		}
	}

	if err := fsutil.EnsureDir(job.LogDir); err != nil {
		return 1, fmt.Errorf("creating log directory: %w", err)
	}

	submitPath, err := b.writeScript(job)
	if err != nil {
		return 1, err
	}
	defer os.Remove(submitPath)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, submitPath)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	err = cmd.Run()
	if err != nil {
		code := compute.ExitCode(err)
		b.log.Error("error submitting job to slurm",
			"job", job.Name,
			"error", err,
			"stderr", stderr.String(),
			"stdout", stdout.String(),
		)
		return code, &compute.ExitError{
			Code: code,
			Err:  fmt.Errorf("submitting %s: %w", job.Name, err),
		}
	}

	out := stdout.String()
	fmt.Fprint(b.Stdout, out)
	b.log.Info("Submitted job", "job", job.Name, "slurm_id", extractID(out))
	return 0, nil
}

func (b *Backend) writeScript(job compute.Job) (string, error) {
	dir := b.ScriptDir
	if dir == "" {
		dir = os.TempDir()
	}
	p := filepath.Join(dir, fmt.Sprintf("%s.%s.slurm.sh", job.Name, util.GenID()))
	if err := os.WriteFile(p, []byte(job.Script), 0700); err != nil {
		return "", fmt.Errorf("writing submit script: %w", err)
	}
	return p, nil
}

// extractID extracts the job id from the response returned by the `sbatch`
// command, or "" if there is none.
// Example response:
// Submitted batch job 2
func extractID(in string) string {
	m := jobIDPattern.FindStringSubmatch(in)
	if m == nil {
		return ""
	}
	return m[1]
}
