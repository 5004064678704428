package config

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ohsu-comp-bio/submit/grid"
	"gopkg.in/yaml.v3"
)

// DefaultArgs holds a script's default arguments in declaration order.
// Scalar values become single-element lists.
type DefaultArgs grid.Params

// Params returns the arguments as a grid.Params.
func (d DefaultArgs) Params() grid.Params {
	return grid.Params(d).Clone()
}

// UnmarshalYAML implements yaml.Unmarshaler. Values are kept as written in
// the file, so "1.0" stays "1.0" and "1e-3" stays "1e-3".
func (d *DefaultArgs) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: default_args must be a mapping", value.Line)
	}

	var out grid.Params
	for i := 0; i+1 < len(value.Content); i += 2 {
		key := value.Content[i].Value
		v := resolveAlias(value.Content[i+1])

		var values []string
		switch v.Kind {
		case yaml.SequenceNode:
			if len(v.Content) == 0 {
				return fmt.Errorf("%w: default_args.%s is an empty list", grid.ErrMissingArgumentValue, key)
			}
			for _, x := range v.Content {
				s, err := scalarString(key, x)
				if err != nil {
					return err
				}
				values = append(values, s)
			}
		default:
			s, err := scalarString(key, v)
			if err != nil {
				return err
			}
			values = []string{s}
		}
		out = out.Set(key, values)
	}
	*d = DefaultArgs(out)
	return nil
}

// MarshalJSON writes the arguments as an object, keeping key order. Single
// values are written as scalars.
func (d DefaultArgs) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, p := range d {
		if i > 0 {
			b.WriteByte(',')
		}
		k, err := json.Marshal(p.Key)
		if err != nil {
			return nil, err
		}
		var v []byte
		if len(p.Values) == 1 {
			v, err = json.Marshal(p.Values[0])
		} else {
			v, err = json.Marshal(p.Values)
		}
		if err != nil {
			return nil, err
		}
		b.Write(k)
		b.WriteByte(':')
		b.Write(v)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

// scalarString returns the source text of a scalar, which is how the value
// is passed on the command line. null is the empty string.
func scalarString(key string, n *yaml.Node) (string, error) {
	n = resolveAlias(n)
	if n.Kind != yaml.ScalarNode {
		return "", fmt.Errorf("line %d: default_args.%s must be a scalar or a list of scalars", n.Line, key)
	}
	if n.ShortTag() == "!!null" {
		return "", nil
	}
	return n.Value, nil
}
