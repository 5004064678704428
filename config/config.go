// Package config contains the run configuration: execution modes, scripts
// and their default arguments, logging, and environment fallbacks.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ohsu-comp-bio/submit/logger"
)

// Errors returned by config lookups.
var (
	ErrUnknownMode   = errors.New("unknown mode")
	ErrUnknownScript = errors.New("unknown script")
)

// Config describes the contents of a run.yaml file.
type Config struct {
	// execution mode name -> how to render and run a job
	Modes map[string]Mode `yaml:"mode" json:"mode"`
	// script name -> script path and default arguments
	Scripts map[string]Script `yaml:"scripts" json:"scripts"`
	Logger  logger.Config     `yaml:"logger" json:"logger,omitempty"`
}

// Mode describes one execution mode.
type Mode struct {
	// Command prefix used to invoke the script, e.g. "python".
	Kernel string `yaml:"pykernel" json:"pykernel"`
	// Path to the job template. The built-in template for the mode is used
	// when empty.
	Template string `yaml:"template" json:"template,omitempty"`
	// Resource request defaults. Only used by the slurm mode.
	Slurm *SlurmOptions `yaml:"slurm" json:"slurm,omitempty"`
}

// Script describes a script that can be submitted.
type Script struct {
	Path        string      `yaml:"path" json:"path"`
	DefaultArgs DefaultArgs `yaml:"default_args" json:"default_args"`
}

// Mode returns the mode with the given name.
func (c Config) Mode(name string) (Mode, error) {
	m, ok := c.Modes[name]
	if !ok {
		return Mode{}, fmt.Errorf("%w %q: must be one of [%s]", ErrUnknownMode, name, strings.Join(c.ModeNames(), ", "))
	}
	return m, nil
}

// Script returns the script with the given name.
func (c Config) Script(name string) (Script, error) {
	s, ok := c.Scripts[name]
	if !ok {
		return Script{}, fmt.Errorf("%w %q: must be one of [%s]", ErrUnknownScript, name, strings.Join(c.ScriptNames(), ", "))
	}
	return s, nil
}

// ModeNames returns the sorted mode names.
func (c Config) ModeNames() []string {
	names := make([]string, 0, len(c.Modes))
	for k := range c.Modes {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// ScriptNames returns the sorted script names.
func (c Config) ScriptNames() []string {
	names := make([]string, 0, len(c.Scripts))
	for k := range c.Scripts {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// SlurmDefaults returns the resource defaults of the mode, if any.
func (m Mode) SlurmDefaults() SlurmOptions {
	if m.Slurm == nil {
		return SlurmOptions{}
	}
	return *m.Slurm
}

// TemplateSource returns the job template of the mode. The built-in
// template for name is used when no template path is configured.
func (m Mode) TemplateSource(name string) (string, error) {
	if m.Template == "" {
		return DefaultTemplate(name), nil
	}
	b, err := os.ReadFile(m.Template)
	if err != nil {
		return "", fmt.Errorf("reading template for mode %s: %w", name, err)
	}
	return string(b), nil
}
