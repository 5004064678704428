// Package compute renders job scripts and hands them to a Runner, which
// either executes them on this machine or submits them to a scheduler.
package compute

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ohsu-comp-bio/submit/config"
)

// Job is a rendered job, ready to run.
type Job struct {
	Name string
	// The rendered script.
	Script string
	// Directory for the job's output.
	LogDir string
}

// Runner is responsible for running a job. For the local backend this
// executes the script and waits for it. For schedulers such as SLURM this
// amounts to submitting the script and returning.
type Runner interface {
	Run(ctx context.Context, job Job) (exitCode int, err error)
}

// Renderer adds mode specific variables to a job's template variables.
type Renderer interface {
	Extend(vars Vars) error
}

// Validator is implemented by renderers which need to check their
// options before any job is rendered.
type Validator interface {
	Validate() error
}

// Strategy describes how jobs of one execution mode are rendered and run.
type Strategy struct {
	// May be nil.
	Renderer Renderer
	Runner   Runner
}

// Validate validates the renderer's options, if it has any.
func (s Strategy) Validate() error {
	if v, ok := s.Renderer.(Validator); ok {
		return v.Validate()
	}
	return nil
}

// Extend adds the strategy's variables to vars.
func (s Strategy) Extend(vars Vars) error {
	if s.Renderer == nil {
		return nil
	}
	return s.Renderer.Extend(vars)
}

// Modes maps an execution mode name to its strategy.
type Modes map[string]Strategy

// Lookup returns the strategy for the named mode.
func (m Modes) Lookup(name string) (Strategy, error) {
	s, ok := m[name]
	if !ok || s.Runner == nil {
		names := make([]string, 0, len(m))
		for k := range m {
			names = append(names, k)
		}
		sort.Strings(names)
		return Strategy{}, fmt.Errorf("%w %q: no runner, must be one of [%s]", config.ErrUnknownMode, name, strings.Join(names, ", "))
	}
	return s, nil
}
