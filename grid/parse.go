package grid

import (
	"errors"
	"fmt"
	"strings"
)

// Errors returned while parsing override tokens.
var (
	ErrMalformedArgument    = errors.New("malformed argument")
	ErrMissingArgumentValue = errors.New("missing argument value")
)

const keyPrefix = "--"

// ParseOverrides parses a "--key v1 v2 --other v3" token stream.
//
// Every token starting with "--" begins a new key and the following
// non-prefixed tokens are its values. "--key=v1" is shorthand for "--key v1".
// A repeated key overwrites the values of the earlier occurrence but keeps
// its position.
func ParseOverrides(tokens []string) (Params, error) {
	var out Params
	for i := 0; i < len(tokens); {
		tok := tokens[i]
		if !strings.HasPrefix(tok, keyPrefix) {
			return nil, fmt.Errorf("%w: unexpected token %q", ErrMalformedArgument, tok)
		}

		key := strings.TrimPrefix(tok, keyPrefix)
		var vals []string
		if eq := strings.Index(key, "="); eq >= 0 {
			vals = append(vals, key[eq+1:])
			key = key[:eq]
		}
		if key == "" {
			return nil, fmt.Errorf("%w: unexpected token %q", ErrMalformedArgument, tok)
		}
		i++

		// consume until the next --key or the end
		for i < len(tokens) && !strings.HasPrefix(tokens[i], keyPrefix) {
			vals = append(vals, tokens[i])
			i++
		}
		if len(vals) == 0 {
			return nil, fmt.Errorf("%w: no values provided for argument --%s", ErrMissingArgumentValue, key)
		}
		out = out.Set(key, vals)
	}
	return out, nil
}
