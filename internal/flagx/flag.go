// Package flagx helps several loaders share one command line: each loader
// picks out only the flags it owns.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// FilterArgs returns the arguments of args that belong to allowedFlags,
// together with their values.
//
// Supported formats:
//  1. Flag and value as separate arguments:  -c conf.json
//  2. Flag and value combined with '=':      --config=conf.json
//
// A separate value is taken only when it does not itself start with '-'.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

// SplitArgs separates flags from positional arguments so that flags may
// appear anywhere on the command line.
//
// valueFlags take a value, either as "-f value" or "-f=value". boolFlags
// never consume the following argument. "--" and "-f" are treated alike.
// Unknown flags are kept in flags so the caller's FlagSet reports them.
// Everything after a lone "--" is positional.
func SplitArgs(args []string, valueFlags, boolFlags []string) (flags, positional []string) {
	takesValue := make(map[string]bool, len(valueFlags)+len(boolFlags))
	for _, f := range valueFlags {
		takesValue[normalize(f)] = true
	}
	for _, f := range boolFlags {
		takesValue[normalize(f)] = false
	}

	flags = make([]string, 0, len(args))
	positional = make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if arg == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if len(arg) < 2 || arg[0] != '-' {
			positional = append(positional, arg)
			continue
		}

		flags = append(flags, arg)
		if strings.Contains(arg, "=") {
			continue
		}
		if takesValue[normalize(arg)] && i+1 < len(args) {
			flags = append(flags, args[i+1])
			i++
		}
	}

	return flags, positional
}

func normalize(f string) string {
	return "-" + strings.TrimLeft(f, "-")
}

// JsonConfigFlags returns the config file path given with -c or -config,
// or an empty string.
func JsonConfigFlags() string {
	var config string

	args := FilterArgs(os.Args[1:], []string{"-c", "-config", "--config"})

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.StringVar(&config, "config", "", "Path to config file")
	fs.StringVar(&config, "c", "", "Path to config file (short)")
	_ = fs.Parse(args)

	return config
}
