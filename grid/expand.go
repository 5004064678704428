package grid

import (
	"strings"
)

// Arg is a single key=value selection.
type Arg struct {
	Key   string
	Value string
}

// Assignment selects exactly one value for every key of a Params.
type Assignment []Arg

// Map returns the assignment as a map.
func (a Assignment) Map() map[string]string {
	m := make(map[string]string, len(a))
	for _, arg := range a {
		m[arg.Key] = arg.Value
	}
	return m
}

// Suffix joins the key=value pairs with "_". Path separators are replaced
// with "-" so the result is safe to use in file names.
func (a Assignment) Suffix() string {
	parts := make([]string, len(a))
	for i, arg := range a {
		parts[i] = sanitize(arg.Key) + "=" + sanitize(arg.Value)
	}
	return strings.Join(parts, "_")
}

// Job is one point of the parameter grid.
type Job struct {
	Name string
	Args Assignment
}

// JobName returns base for an empty assignment, otherwise base_<suffix>.
func JobName(base string, a Assignment) string {
	if len(a) == 0 {
		return base
	}
	return base + "_" + a.Suffix()
}

// Merge overlays overrides onto defaults. Defaults keep their declaration
// order, new keys are appended in the order they first appear.
func Merge(defaults, overrides Params) Params {
	out := defaults.Clone()
	for _, param := range overrides {
		out = out.Set(param.Key, param.Values)
	}
	return out
}

// Product returns every combination of p in odometer order, the last key
// varying fastest.
func Product(p Params) []Assignment {
	total := p.Count()
	out := make([]Assignment, 0, total)
	idx := make([]int, len(p))

	for n := 0; n < total; n++ {
		a := make(Assignment, len(p))
		for i, param := range p {
			a[i] = Arg{Key: param.Key, Value: param.Values[idx[i]]}
		}
		out = append(out, a)

		for i := len(p) - 1; i >= 0; i-- {
			idx[i]++
			if idx[i] < len(p[i].Values) {
				break
			}
			idx[i] = 0
		}
	}
	return out
}

// Resolve parses the override tokens and merges them onto defaults.
func Resolve(defaults Params, overrides []string) (Params, error) {
	over, err := ParseOverrides(overrides)
	if err != nil {
		return nil, err
	}
	params := Merge(defaults, over)
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return params, nil
}

// Jobs returns one named job per combination of p.
func Jobs(base string, p Params) []Job {
	combos := Product(p)
	jobs := make([]Job, len(combos))
	for i, a := range combos {
		jobs[i] = Job{Name: JobName(base, a), Args: a}
	}
	return jobs
}

// Expand merges defaults with the parsed override tokens and returns one
// named job per combination.
func Expand(base string, defaults Params, overrides []string) ([]Job, error) {
	params, err := Resolve(defaults, overrides)
	if err != nil {
		return nil, err
	}
	return Jobs(base, params), nil
}

func sanitize(s string) string {
	return strings.Replace(s, "/", "-", -1)
}
