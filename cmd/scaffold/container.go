package scaffold

import (
	"fmt"
	"os"
	"path/filepath"
)

func installCommand(root string) string {
	for _, f := range []string{"pyproject.toml", "setup.py", "setup.cfg"} {
		if _, err := os.Stat(filepath.Join(root, f)); err == nil {
			return "python -m pip install --root-user-action=ignore -e ."
		}
	}
	if _, err := os.Stat(filepath.Join(root, "requirements.txt")); err == nil {
		return "python -m pip install --root-user-action=ignore -r requirements.txt"
	}
	return "echo 'No package configuration found. Add your install commands here.'"
}

func singularityDef(root, pythonVersion string) string {
	return fmt.Sprintf(`Bootstrap: docker
From: python:%s

%%post
    cd %s
    %s

%%environment
    export PYTHONPATH="%s:$PYTHONPATH"

%%runscript
    exec "$@"
`, pythonVersion, root, installCommand(root), root)
}

var buildScript = `#!/bin/bash
# Builds the Singularity container used by the cloud_local and slurm modes.

export SINGULARITY_CACHEDIR="/scratch_local/$USER-$SLURM_JOBID"
export SINGULARITY_TMPDIR="/scratch_local/$USER-$SLURM_JOBID"

mkdir -p "$SINGULARITY_CACHEDIR"
mkdir -p "$SINGULARITY_TMPDIR"

singularity build --fakeroot --force --bind /mnt:/mnt --nv python.sif Singularity.def
`
