package compute

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"text/template"

	"github.com/kballard/go-shellquote"
	"github.com/ohsu-comp-bio/submit/config"
	"github.com/ohsu-comp-bio/submit/grid"
)

// Vars are the variables available to a job template.
type Vars map[string]interface{}

// NewVars returns the variables common to every mode.
func NewVars(job grid.Job, scriptPath string, s config.Settings) Vars {
	return Vars{
		"JobName":      job.Name,
		"Kernel":       s.Kernel,
		"ScriptPath":   scriptPath,
		"Args":         job.Args,
		"ArgMap":       job.Args.Map(),
		"LogDir":       s.LogPath,
		"ImagePath":    s.ImagePath,
		"DatasetsRoot": s.DatasetsRoot,
	}
}

// String returns the string value of key, or "" if it isn't a string.
func (v Vars) String(key string) string {
	s, _ := v[key].(string)
	return s
}

// FormatArgs renders the assignment as "--key value" pairs, shell quoted.
func FormatArgs(a grid.Assignment) string {
	words := make([]string, 0, len(a)*2)
	for _, arg := range a {
		words = append(words, "--"+arg.Key, arg.Value)
	}
	return shellquote.Join(words...)
}

func funcMap(vars Vars) template.FuncMap {
	return template.FuncMap{
		"quote": func(args ...interface{}) string {
			words := make([]string, len(args))
			for i, a := range args {
				words[i] = fmt.Sprint(a)
			}
			return shellquote.Join(words...)
		},
		"args": func() string {
			a, _ := vars["Args"].(grid.Assignment)
			return FormatArgs(a)
		},
		"required": func(msg string, v interface{}) (interface{}, error) {
			if isEmpty(v) {
				return nil, errors.New(msg)
			}
			return v, nil
		},
	}
}

func isEmpty(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return rv.IsNil()
	}
	return rv.IsZero()
}

// Render executes the template source with the given variables. Referencing
// a variable which isn't defined is an error.
func Render(name, src string, vars Vars) (string, error) {
	tpl, err := template.New(name).
		Option("missingkey=error").
		Funcs(funcMap(vars)).
		Parse(src)
	if err != nil {
		return "", &TemplateError{Name: name, Err: err}
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, map[string]interface{}(vars)); err != nil {
		return "", &TemplateError{Name: name, Err: err}
	}
	return buf.String(), nil
}

// RenderJobs renders a script for every job before anything runs, so a
// template error aborts the whole submission.
func RenderJobs(s Strategy, src, scriptPath string, settings config.Settings, jobs []grid.Job) ([]Job, error) {
	out := make([]Job, 0, len(jobs))
	for _, j := range jobs {
		vars := NewVars(j, scriptPath, settings)
		if err := s.Extend(vars); err != nil {
			return nil, err
		}
		script, err := Render(j.Name, src, vars)
		if err != nil {
			return nil, err
		}
		out = append(out, Job{
			Name:   j.Name,
			Script: strings.TrimLeft(script, "\n"),
			LogDir: vars.String("LogDir"),
		})
	}
	return out, nil
}
