// Package grid expands named parameter value lists into the cartesian
// product of jobs, each with a deterministic name.
package grid

import (
	"fmt"
	"strings"
)

// Param is one named parameter and the ordered values it takes.
type Param struct {
	Key    string
	Values []string
}

// Params is an ordered parameter set. The order decides both the order in
// which combinations are generated (last key varies fastest) and the order
// of the key=value pairs in a job name.
type Params []Param

// Index returns the position of key, or -1.
func (p Params) Index(key string) int {
	for i, param := range p {
		if param.Key == key {
			return i
		}
	}
	return -1
}

// Get returns the values of key.
func (p Params) Get(key string) ([]string, bool) {
	i := p.Index(key)
	if i < 0 {
		return nil, false
	}
	return p[i].Values, true
}

// Set replaces the values of an existing key in place, or appends a new key.
// The receiver is not modified.
func (p Params) Set(key string, values []string) Params {
	out := p.Clone()
	vals := append([]string(nil), values...)
	if i := out.Index(key); i >= 0 {
		out[i].Values = vals
		return out
	}
	return append(out, Param{Key: key, Values: vals})
}

// Clone returns a deep copy.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for i, param := range p {
		out[i] = Param{Key: param.Key, Values: append([]string(nil), param.Values...)}
	}
	return out
}

// Keys returns the parameter names in order.
func (p Params) Keys() []string {
	keys := make([]string, len(p))
	for i, param := range p {
		keys[i] = param.Key
	}
	return keys
}

// Validate checks that every key has at least one value.
func (p Params) Validate() error {
	for _, param := range p {
		if len(param.Values) == 0 {
			return fmt.Errorf("%w: no values provided for argument --%s", ErrMissingArgumentValue, param.Key)
		}
	}
	return nil
}

// Count returns the number of combinations in the product of p.
// An empty set has exactly one (empty) combination.
func (p Params) Count() int {
	n := 1
	for _, param := range p {
		n *= len(param.Values)
	}
	return n
}

// Summary formats one "  key: [v1, v2]" line per parameter.
func (p Params) Summary() string {
	if len(p) == 0 {
		return "  (no parameters specified)\n"
	}
	var b strings.Builder
	for _, param := range p {
		fmt.Fprintf(&b, "  %s: [%s]\n", param.Key, strings.Join(param.Values, ", "))
	}
	return b.String()
}
