package util

import (
	"strings"

	"github.com/spf13/pflag"
)

func normalize(name string) string {
	from := []string{"-", "_"}
	to := "."
	for _, sep := range from {
		name = strings.Replace(name, sep, to, -1)
	}
	return strings.ToLower(name)
}

// NormalizeFlags allows for flags to be case and separator insensitive,
// so --cpus-per-task, --cpus_per_task and --CPUS_PER_TASK are the same flag.
// Use it by passing it to pflag.FlagSet.SetNormalizeFunc
func NormalizeFlags(f *pflag.FlagSet, name string) pflag.NormalizedName {
	lookup := map[string]string{"help": "help", normalize(name): name}

	f.VisitAll(func(f *pflag.Flag) {
		lookup[normalize(f.Name)] = f.Name
	})

	return pflag.NormalizedName(lookup[normalize(name)])
}

// LookupArg returns the flag named by a command line token such as
// "--mode", "--mode=slurm" or "-p", or nil if the token doesn't name a flag
// of f.
func LookupArg(f *pflag.FlagSet, tok string) *pflag.Flag {
	switch {
	case strings.HasPrefix(tok, "--"):
		name := strings.SplitN(tok[2:], "=", 2)[0]
		if name == "" {
			return nil
		}
		return f.Lookup(name)
	case len(tok) == 2 && tok[0] == '-' && tok[1] != '-':
		return f.ShorthandLookup(tok[1:])
	}
	return nil
}

// SplitArgs separates the tokens naming flags of f, and their values, from
// everything else. The order of both lists is kept. Values of non-boolean
// flags are taken from the next token unless given as --flag=value.
func SplitArgs(f *pflag.FlagSet, args []string) (known, rest []string) {
	for i := 0; i < len(args); i++ {
		tok := args[i]
		fl := LookupArg(f, tok)
		if fl == nil {
			rest = append(rest, tok)
			continue
		}
		known = append(known, tok)
		if fl.NoOptDefVal == "" && !strings.Contains(tok, "=") && i+1 < len(args) {
			i++
			known = append(known, args[i])
		}
	}
	return known, rest
}
