package loader

import (
	"os"
	"strconv"
	"strings"
)

// DefaultEnvPrefix is the prefix of configuration environment variables.
const DefaultEnvPrefix = "CMDLINE_"

// EnvLoader loads configuration from environment variables.
//
// CMDLINE_GENERAL_IGNORECASE=false sets general.ignorecase, and
// CMDLINE_GENERAL_LOG_LEVEL=debug sets general.log-level: the first part
// after the prefix names the section, the rest is joined with "-".
type EnvLoader struct {
	prefix  string
	environ func() []string
}

// NewEnvLoader creates a new environment variable loader.
// The prefix should include the trailing underscore (e.g., "CMDLINE_").
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		environ: os.Environ,
	}
}

// NewEnvLoaderFrom creates a loader reading from a fixed environment.
func NewEnvLoaderFrom(prefix string, env []string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		environ: func() []string { return env },
	}
}

// Load reads environment variables and returns a configuration map.
// Empty string values are treated as valid values, not as unset.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)

	for _, env := range l.environ() {
		name, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(name, l.prefix) {
			continue
		}

		section, key, ok := l.envToPath(name)
		if !ok {
			continue
		}

		sec, _ := config[section].(map[string]any)
		if sec == nil {
			sec = make(map[string]any)
			config[section] = sec
		}
		sec[key] = parseValue(value)
	}

	return config, nil
}

// envToPath converts CMDLINE_GENERAL_LOG_LEVEL to ("general", "log-level").
func (l *EnvLoader) envToPath(env string) (string, string, bool) {
	name := strings.ToLower(strings.TrimPrefix(env, l.prefix))
	section, key, ok := strings.Cut(name, "_")
	if !ok || section == "" || key == "" {
		return "", "", false
	}
	return section, strings.ReplaceAll(key, "_", "-"), true
}

// parseValue attempts to parse the string value into an appropriate type.
func parseValue(s string) any {
	if s == "" {
		return s
	}

	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}

	return s
}
