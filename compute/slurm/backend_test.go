package slurm

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ohsu-comp-bio/submit/compute"
	"github.com/ohsu-comp-bio/submit/config"
	"github.com/ohsu-comp-bio/submit/grid"
	"github.com/ohsu-comp-bio/submit/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fakeSbatch = `#!/bin/sh
cp "$1" "$SBATCH_CAPTURE"
echo "Submitted batch job 42"
`

const failingSbatch = `#!/bin/sh
echo "sbatch: error: invalid partition" 1>&2
exit 2
`

const hangingSbatch = `#!/bin/sh
exec sleep 30
`

// installSbatch puts a fake sbatch with the given body first on PATH.
func installSbatch(t *testing.T, body string) {
	t.Helper()
	bin := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(bin, "sbatch"), []byte(body), 0755))
	t.Setenv("PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func createBackend(t *testing.T, stdout *bytes.Buffer) *Backend {
	log := logger.NewLogger("test", logger.DebugConfig())
	log.Discard()
	b := NewBackend(log, stdout)
	b.ScriptDir = t.TempDir()
	return b
}

func testJob(t *testing.T) compute.Job {
	return compute.Job{
		Name:   "train_seed=1",
		Script: "#!/bin/bash\necho hi\n",
		LogDir: filepath.Join(t.TempDir(), "logs"),
	}
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSubmit(t *testing.T) {
	installSbatch(t, fakeSbatch)
	capture := filepath.Join(t.TempDir(), "submitted.sh")
	t.Setenv("SBATCH_CAPTURE", capture)

	var stdout bytes.Buffer
	b := createBackend(t, &stdout)
	job := testJob(t)

	code, err := b.Run(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "Submitted batch job 42\n", stdout.String())

	submitted, err := os.ReadFile(capture)
	require.NoError(t, err)
	assert.Equal(t, job.Script, string(submitted))

	assertEmptyDir(t, b.ScriptDir)
	assertEmptyDir(t, job.LogDir)
}

func TestSubmitFailure(t *testing.T) {
	installSbatch(t, failingSbatch)

	var stdout bytes.Buffer
	b := createBackend(t, &stdout)

	code, err := b.Run(context.Background(), testJob(t))
	require.Error(t, err)
	assert.Equal(t, 2, code)

	var ee *compute.ExitError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, 2, ee.Code)
	assertEmptyDir(t, b.ScriptDir)
}

func TestSubmitCanceled(t *testing.T) {
	installSbatch(t, hangingSbatch)

	var stdout bytes.Buffer
	b := createBackend(t, &stdout)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, err := b.Run(ctx, testJob(t))
	require.Error(t, err)
	assertEmptyDir(t, b.ScriptDir)
}

func TestSubmitMissingSbatch(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	var stdout bytes.Buffer
	b := createBackend(t, &stdout)

	code, err := b.Run(context.Background(), testJob(t))
	require.Error(t, err)
	assert.Equal(t, 1, code)

	var ee *compute.ExitError
	require.True(t, errors.As(err, &ee))
	assert.Contains(t, err.Error(), "sbatch not found")
	assertEmptyDir(t, b.ScriptDir)
}

func TestExtractID(t *testing.T) {
	assert.Equal(t, "2", extractID("Submitted batch job 2\n"))
	assert.Equal(t, "1234", extractID("Submitted batch job 1234"))
	assert.Equal(t, "", extractID("error"))
}

func TestRenderSlurmTemplate(t *testing.T) {
	r := Renderer{Options: config.SlurmOptions{
		Partition:   "gpu",
		CpusPerTask: 4,
		MemPerCpu:   "4G",
		Gres:        "gpu:1",
		Time:        "0-08:00:00",
		LogDir:      "/scratch/logs",
		MailType:    "END",
		MailUser:    "me@example.com",
	}}
	require.NoError(t, r.Validate())

	args := grid.Assignment{{Key: "seed", Value: "1"}}
	job := grid.Job{Name: grid.JobName("train", args), Args: args}
	vars := compute.NewVars(job, "scripts/train.py", config.Settings{Kernel: "python", LogPath: "./logs"})
	require.NoError(t, r.Extend(vars))
	assert.Equal(t, "/scratch/logs", vars.String("LogDir"))

	out, err := compute.Render(job.Name, config.DefaultTemplate("slurm"), vars)
	require.NoError(t, err)

	expected := `#!/bin/bash

#SBATCH --job-name=train_seed=1
#SBATCH --partition=gpu
#SBATCH --nodes=1
#SBATCH --ntasks=1
#SBATCH --cpus-per-task=4
#SBATCH --mem-per-cpu=4G
#SBATCH --gres=gpu:1
#SBATCH --time=0-08:00:00
#SBATCH --output=/scratch/logs/%j_train_seed=1.out
#SBATCH --mail-type=END
#SBATCH --mail-user=me@example.com

scontrol show job $SLURM_JOB_ID

python scripts/train.py --seed 1
`
	assert.Equal(t, expected, out)
}

func TestRenderMinimalSlurmTemplate(t *testing.T) {
	job := grid.Job{Name: "eval"}
	vars := compute.NewVars(job, "eval.py", config.Settings{Kernel: "python", LogPath: "/tmp/logs"})
	require.NoError(t, Renderer{}.Extend(vars))

	out, err := compute.Render(job.Name, config.DefaultTemplate("slurm"), vars)
	require.NoError(t, err)

	expected := `#!/bin/bash

#SBATCH --job-name=eval
#SBATCH --nodes=1
#SBATCH --ntasks=1
#SBATCH --output=/tmp/logs/%j_eval.out

scontrol show job $SLURM_JOB_ID

python eval.py
`
	assert.Equal(t, expected, out)
}

func TestRendererValidate(t *testing.T) {
	r := Renderer{Options: config.SlurmOptions{Mem: "8G", MemPerCpu: "4G"}}
	assert.Error(t, r.Validate())
}
