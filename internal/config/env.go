package config

import (
	"os"
	"regexp"
)

// envRef matches ${VAR} and ${VAR:-default}.
var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// ExpandEnv replaces ${VAR} and ${VAR:-default} references with the value
// of the environment variable. An unset or empty variable takes the default,
// or expands to nothing when there is none.
//
// Example:
//
//	client_id: ${SC_CLIENT_ID}
//	downloads_path: ${SC_MUSIC:-/srv/music}/{artist}/{playlist}
func ExpandEnv(input string) string {
	return envRef.ReplaceAllStringFunc(input, func(match string) string {
		groups := envRef.FindStringSubmatch(match)
		if value, ok := os.LookupEnv(groups[1]); ok && value != "" {
			return value
		}
		return groups[2]
	})
}
