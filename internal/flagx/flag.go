// Package flagx holds helpers that let several components share one command
// line without stepping on each other's flags.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// ConfigEnvVar names the environment variable consulted when no -c/-config
// flag is given.
const ConfigEnvVar = "CREDVAULT_CONFIG"

// flagName strips the leading dashes, so "-config" and "--config" compare
// equal the same way the flag package treats them.
func flagName(arg string) string {
	return strings.TrimLeft(arg, "-")
}

func nameSet(flags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(flags))
	for _, f := range flags {
		set[flagName(f)] = struct{}{}
	}
	return set
}

// FilterArgs keeps only the allowed flags from args, together with their
// values. Both "-f value" and "-f=value" are recognised, with one or two
// leading dashes. A separate value is taken only when it does not start
// with a dash.
//
// Flags listed in boolFlags never take a separate value, matching the flag
// package: "-tls false" would otherwise turn "false" into a positional
// argument and stop parsing. Use "-tls=false" to clear a boolean.
//
// The result is never nil.
func FilterArgs(args []string, allowedFlags []string, boolFlags ...string) []string {
	allowed := nameSet(allowedFlags)
	boolean := nameSet(boolFlags)

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			continue
		}

		name, _, hasValue := strings.Cut(flagName(arg), "=")
		if _, ok := allowed[name]; !ok {
			continue
		}

		filtered = append(filtered, arg)
		if hasValue {
			continue
		}
		if _, ok := boolean[name]; ok {
			continue
		}
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// JsonConfigPath returns the JSON config file path given via -c or -config.
// When neither flag is present it falls back to $CREDVAULT_CONFIG, and
// returns "" when that is unset too.
//
// Only these flags are parsed; other arguments are ignored, so components can
// parse their own flags from the same command line.
func JsonConfigPath() string {
	var config string

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.StringVar(&config, "config", "", "Path to config file")
	fs.StringVar(&config, "c", "", "Path to config file (short)")
	_ = fs.Parse(FilterArgs(os.Args[1:], []string{"-c", "-config"}))

	if config == "" {
		config = os.Getenv(ConfigEnvVar)
	}

	return config
}
