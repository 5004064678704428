// Package scaffold implements "submit init", which sets a repository up for
// submit: a run.yaml listing the scripts found in scripts/ directories, the
// job templates, a logs directory and the container build files.
package scaffold

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ohsu-comp-bio/submit/config"
	"github.com/ohsu-comp-bio/submit/logger"
	"github.com/ohsu-comp-bio/submit/util/fsutil"
	"github.com/spf13/cobra"
)

// Options configures Init.
type Options struct {
	// Repository root. Defaults to the working directory.
	Root string
	// Overwrite existing files.
	Force bool
	// Python version of the container image.
	PythonVersion string
	// Limits Init to one group of files, OnlyYAML or OnlyContainer.
	// Empty means all files.
	Only string
}

// File groups for Options.Only.
const (
	OnlyYAML      = "yaml"
	OnlyContainer = "container"
)

// Result lists what Init found and wrote.
type Result struct {
	Scripts []string
	Written []string
	Skipped []string
}

// templateFiles maps a mode to its template file, relative to the root.
var templateFiles = map[string]string{
	"local":       "submit/templates/local.sh.tmpl",
	"cloud_local": "submit/templates/cloud_local.sh.tmpl",
	"slurm":       "submit/templates/slurm.sh.tmpl",
}

// NewCommand returns the init command.
func NewCommand() *cobra.Command {
	opts := Options{PythonVersion: "3.12"}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Set up a repository for submit.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.NewSubLogger("init")
			res, err := Init(opts)
			if err != nil {
				return err
			}
			report(cmd.OutOrStdout(), res)
			log.Info("Setup complete", "root", opts.Root)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.Root, "root", opts.Root, "Repository root. Default: working directory")
	f.BoolVar(&opts.Force, "force", opts.Force, "Overwrite existing files")
	f.StringVar(&opts.PythonVersion, "python_version", opts.PythonVersion, "Python version of the container image")
	f.StringVar(&opts.Only, "only", opts.Only, "Only write one group of files: yaml (run.yaml and templates) or container")
	return cmd
}

// Init discovers the scripts under opts.Root and writes the starter files.
// Existing files are kept unless opts.Force is set.
func Init(opts Options) (*Result, error) {
	switch opts.Only {
	case "", OnlyYAML, OnlyContainer:
	default:
		return nil, fmt.Errorf("unknown --only value %q, must be %s or %s", opts.Only, OnlyYAML, OnlyContainer)
	}

	root := opts.Root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		root = wd
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	res := &Result{}

	write := func(rel string, content []byte, mode os.FileMode) error {
		p := filepath.Join(root, rel)
		if ok, err := fsutil.Exists(p); err != nil {
			return err
		} else if ok && !opts.Force {
			res.Skipped = append(res.Skipped, rel)
			return nil
		}
		if err := fsutil.EnsureDir(filepath.Dir(p)); err != nil {
			return err
		}
		if err := os.WriteFile(p, content, mode); err != nil {
			return err
		}
		res.Written = append(res.Written, rel)
		return nil
	}

	if opts.Only != OnlyContainer {
		conf, err := discover(root, res)
		if err != nil {
			return nil, err
		}
		b, err := config.ToYaml(conf)
		if err != nil {
			return nil, err
		}
		if err := write("submit/run.yaml", b, 0644); err != nil {
			return nil, err
		}
		for _, mode := range []string{"local", "cloud_local", "slurm"} {
			if err := write(templateFiles[mode], []byte(config.DefaultTemplate(mode)), 0644); err != nil {
				return nil, err
			}
		}
		if err := fsutil.EnsureDir(filepath.Join(root, "logs")); err != nil {
			return nil, err
		}
	}

	if opts.Only != OnlyYAML {
		if err := write("Singularity.def", []byte(singularityDef(root, opts.PythonVersion)), 0644); err != nil {
			return nil, err
		}
		if err := write("build_container.sh", []byte(buildScript), 0755); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// discover returns the starter config with one entry per script found in a
// scripts/ directory. Files under submit/ and __init__.py are skipped.
func discover(root string, res *Result) (config.Config, error) {
	conf := config.DefaultConfig()
	for mode, tpl := range templateFiles {
		m := conf.Modes[mode]
		m.Template = "./" + tpl
		conf.Modes[mode] = m
	}

	files, err := fsutil.Glob(filepath.Join(root, "**", "scripts", "*.py"))
	if err != nil {
		return conf, err
	}

	submitDir := filepath.Join(root, "submit") + string(filepath.Separator)
	for _, f := range files {
		if filepath.Base(f.Abs) == "__init__.py" || strings.HasPrefix(f.Abs, submitDir) {
			continue
		}
		rel, err := filepath.Rel(root, f.Abs)
		if err != nil {
			return conf, err
		}
		name := strings.TrimSuffix(filepath.Base(rel), ".py")
		if _, ok := conf.Scripts[name]; ok {
			continue
		}
		conf.Scripts[name] = config.Script{
			Path:        "./" + filepath.ToSlash(rel),
			DefaultArgs: config.DefaultArgs{},
		}
		res.Scripts = append(res.Scripts, name)
	}
	return conf, nil
}

func report(w io.Writer, res *Result) {
	fmt.Fprintf(w, "Discovered %d script(s)\n", len(res.Scripts))
	for _, s := range res.Scripts {
		fmt.Fprintf(w, "  - %s\n", s)
	}
	for _, p := range res.Written {
		fmt.Fprintf(w, "Created %s\n", p)
	}
	for _, p := range res.Skipped {
		fmt.Fprintf(w, "Kept existing %s, use --force to overwrite\n", p)
	}
	fmt.Fprintln(w, "\nNext steps:")
	fmt.Fprintln(w, "1. Review Singularity.def and run ./build_container.sh")
	fmt.Fprintln(w, "2. Add default_args for your scripts to submit/run.yaml")
	fmt.Fprintln(w, "3. Test with: submit --mode local --script <script_name>")
}
