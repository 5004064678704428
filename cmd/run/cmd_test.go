package run

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ohsu-comp-bio/submit/compute"
	"github.com/ohsu-comp-bio/submit/config"
	"github.com/ohsu-comp-bio/submit/grid"
	"github.com/ohsu-comp-bio/submit/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
mode:
  local:
    pykernel: echo
  cloud_local:
    pykernel: echo
    template: %s
  slurm:
    pykernel: python
    slurm:
      partition: gpu
      mem_per_cpu: 4G
scripts:
  train:
    path: scripts/train.py
    default_args:
      seed: [1, 2]
      lr: 0.1
logger:
  level: error
`

type fixture struct {
	dir    string
	config string
	logs   string
	tpl    string
}

func newFixture(t *testing.T) fixture {
	dir := t.TempDir()
	f := fixture{
		dir:    dir,
		config: filepath.Join(dir, "run.yaml"),
		logs:   filepath.Join(dir, "logs"),
		tpl:    filepath.Join(dir, "cloud.sh.tmpl"),
	}
	raw := strings.Replace(testConfig, "%s", f.tpl, 1)
	require.NoError(t, os.WriteFile(f.config, []byte(raw), 0644))
	require.NoError(t, os.WriteFile(f.tpl, []byte("exit 4\n"), 0644))
	return f
}

func (f fixture) args(extra ...string) []string {
	return append([]string{
		"--config_file", f.config,
		"--env_file", filepath.Join(f.dir, ".env"),
		"--log_path", f.logs,
	}, extra...)
}

func logFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestRunLocal(t *testing.T) {
	f := newFixture(t)
	var stdout bytes.Buffer

	err := Run(context.Background(), f.args("--script", "train", "--lr", "0.1", "0.01"), &stdout)
	require.NoError(t, err)

	out := stdout.String()
	assert.Contains(t, out, "Creating 4 job(s) with the following parameters:\n  seed: [1, 2]\n  lr: [0.1, 0.01]\n")
	assert.Contains(t, out, "scripts/train.py --seed 1 --lr 0.1\n"+
		"scripts/train.py --seed 1 --lr 0.01\n"+
		"scripts/train.py --seed 2 --lr 0.1\n"+
		"scripts/train.py --seed 2 --lr 0.01\n")
	assert.True(t, strings.HasSuffix(out, "Submitted 4 job(s)\n"))

	files := logFiles(t, f.logs)
	require.Len(t, files, 4)
	assert.True(t, strings.HasSuffix(files[0], "_train_seed=1_lr=0.01.out") ||
		strings.HasSuffix(files[0], "_train_seed=1_lr=0.1.out"))
}

func TestRunPrint(t *testing.T) {
	f := newFixture(t)
	var stdout bytes.Buffer

	err := Run(context.Background(), f.args("--script", "train", "--print", "--seed", "7"), &stdout)
	require.NoError(t, err)

	assert.Contains(t, stdout.String(), "Creating 1 job(s)")
	assert.Contains(t, stdout.String(), "# train_seed=7_lr=0.1\necho scripts/train.py --seed 7 --lr 0.1\n")
	assert.NotContains(t, stdout.String(), "Submitted")
	assert.Empty(t, logFiles(t, f.logs))
}

func TestRunKernelPrecedence(t *testing.T) {
	f := newFixture(t)
	env := filepath.Join(f.dir, ".env")
	require.NoError(t, os.WriteFile(env, []byte("PYKERNEL=from-env\nLOG_PATH=/nope\n"), 0644))

	// run.yaml beats .env
	var stdout bytes.Buffer
	require.NoError(t, Run(context.Background(), f.args("-s", "train", "-p"), &stdout))
	assert.Contains(t, stdout.String(), "\necho scripts/train.py")

	// the flag beats run.yaml
	stdout.Reset()
	require.NoError(t, Run(context.Background(), f.args("-s", "train", "-p", "--pykernel", "python3"), &stdout))
	assert.Contains(t, stdout.String(), "\npython3 scripts/train.py")
}

func TestRunFailFast(t *testing.T) {
	f := newFixture(t)
	var stdout bytes.Buffer

	err := Run(context.Background(), f.args("--mode", "cloud_local", "--script", "train"), &stdout)
	require.Error(t, err)

	var ee *compute.ExitError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, 4, ee.Code)

	// only the first of the two jobs ran
	assert.Len(t, logFiles(t, f.logs), 1)
	assert.NotContains(t, stdout.String(), "Submitted")
}

func TestRunTemplateErrorBeforeAnyJob(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.WriteFile(f.tpl, []byte("echo {{.JobName}}\n{{.Missing}}\n"), 0644))

	var stdout bytes.Buffer
	err := Run(context.Background(), f.args("--mode", "cloud_local", "--script", "train"), &stdout)

	var te *compute.TemplateError
	require.True(t, errors.As(err, &te))
	assert.Empty(t, stdout.String())
	assert.Empty(t, logFiles(t, f.logs))
}

func TestRunUserErrors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		args []string
		err  error
	}{
		{f.args(), ErrNoScript},
		{f.args("--script", "test"), config.ErrUnknownScript},
		{f.args("--script", "train", "--mode", "aws"), config.ErrUnknownMode},
		{f.args("--script", "train", "--lr"), grid.ErrMissingArgumentValue},
		{f.args("--script", "train", "stray"), grid.ErrMalformedArgument},
		{f.args("--script", "train", "--seed", "1", "--seed"), grid.ErrMissingArgumentValue},
	}
	for _, tc := range tests {
		var stdout bytes.Buffer
		err := Run(context.Background(), tc.args, &stdout)
		assert.True(t, errors.Is(err, tc.err), "%v: %v", tc.args, err)
		assert.Empty(t, logFiles(t, f.logs))
	}
}

func TestRunMissingKernel(t *testing.T) {
	f := newFixture(t)
	raw := "mode:\n  local: {}\nscripts:\n  train:\n    path: scripts/train.py\nlogger:\n  level: error\n"
	require.NoError(t, os.WriteFile(f.config, []byte(raw), 0644))

	var stdout bytes.Buffer
	err := Run(context.Background(), f.args("--script", "train", "--print"), &stdout)
	assert.True(t, errors.Is(err, ErrNoKernel), "%v", err)
	assert.Equal(t, 1, compute.ExitCode(err))
	assert.Empty(t, stdout.String())

	// the .env file is enough
	env := filepath.Join(f.dir, ".env")
	require.NoError(t, os.WriteFile(env, []byte("PYKERNEL=python3\n"), 0644))
	require.NoError(t, Run(context.Background(), f.args("--script", "train", "--print"), &stdout))
	assert.Contains(t, stdout.String(), "\npython3 scripts/train.py\n")
}

func TestRunSlurmValidation(t *testing.T) {
	f := newFixture(t)
	var stdout bytes.Buffer

	err := Run(context.Background(), f.args("--mode", "slurm", "--script", "train", "--mem", "8G", "--mem-per-cpu", "2G"), &stdout)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "both --mem and --mem-per-cpu")

	err = Run(context.Background(), f.args("--mode", "slurm", "--script", "train", "--time", "8h"), &stdout)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "D-HH:MM:SS")
}

func TestRunSlurmPrint(t *testing.T) {
	f := newFixture(t)
	var stdout bytes.Buffer

	args := f.args("--mode", "slurm", "--script", "train", "--print",
		"--mem", "32G", "--cpus_per_task", "8", "--seed", "3")
	require.NoError(t, Run(context.Background(), args, &stdout))

	out := stdout.String()
	assert.Contains(t, out, "#SBATCH --job-name=train_seed=3_lr=0.1\n")
	assert.Contains(t, out, "#SBATCH --partition=gpu\n")
	assert.Contains(t, out, "#SBATCH --cpus-per-task=8\n")
	assert.Contains(t, out, "#SBATCH --mem=32G\n")
	assert.NotContains(t, out, "mem-per-cpu")
	assert.Contains(t, out, "#SBATCH --output="+f.logs+"/%j_train_seed=3_lr=0.1.out\n")
	assert.Contains(t, out, "python scripts/train.py --seed 3 --lr 0.1\n")
}

func TestRunWarnsOnReplacedMemory(t *testing.T) {
	f := newFixture(t)
	raw, err := os.ReadFile(f.config)
	require.NoError(t, err)
	raw = []byte(strings.Replace(string(raw), "level: error", "level: warn\n  formatter: json", 1))
	require.NoError(t, os.WriteFile(f.config, raw, 0644))

	var logs, stdout bytes.Buffer
	logger.SetOutput(&logs)
	defer logger.SetOutput(os.Stderr)

	args := f.args("--mode", "slurm", "--script", "train", "--print", "--mem", "32G")
	require.NoError(t, Run(context.Background(), args, &stdout))
	assert.Contains(t, logs.String(), `"replaced":"mem_per_cpu=4G"`)
	assert.Contains(t, logs.String(), `"flag":"--mem=32G"`)

	logs.Reset()
	args = f.args("--mode", "slurm", "--script", "train", "--print", "--mem-per-cpu", "2G")
	require.NoError(t, Run(context.Background(), args, &stdout))
	assert.Empty(t, logs.String())
}

func TestReplacedMemOption(t *testing.T) {
	conf := config.SlurmOptions{MemPerCpu: "4G"}
	assert.Equal(t, "mem_per_cpu=4G", replacedMemOption(conf, config.SlurmOptions{Mem: "8G"}))
	assert.Equal(t, "", replacedMemOption(conf, config.SlurmOptions{MemPerCpu: "2G"}))
	assert.Equal(t, "", replacedMemOption(conf, config.SlurmOptions{}))
	assert.Equal(t, "mem=8G", replacedMemOption(config.SlurmOptions{Mem: "8G"}, config.SlurmOptions{MemPerCpu: "2G"}))
}

func TestRunSlurmSubmit(t *testing.T) {
	f := newFixture(t)
	bin := t.TempDir()
	sbatch := "#!/bin/sh\necho \"Submitted batch job 7\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(bin, "sbatch"), []byte(sbatch), 0755))
	t.Setenv("PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))

	var stdout bytes.Buffer
	require.NoError(t, Run(context.Background(), f.args("--mode", "slurm", "--script", "train"), &stdout))

	out := stdout.String()
	assert.Equal(t, 2, strings.Count(out, "Submitted batch job 7\n"))
	assert.True(t, strings.HasSuffix(out, "Submitted 2 job(s)\n"))
}

func TestRunHelp(t *testing.T) {
	var stdout bytes.Buffer
	require.NoError(t, Run(context.Background(), []string{"--help"}, &stdout))
	assert.Equal(t, usage, stdout.String())
}
