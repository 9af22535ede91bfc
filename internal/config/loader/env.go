package loader

import (
	"os"
	"strings"
)

// Prefix is the prefix of every environment variable the loader reads.
const Prefix = "KEYBRIDGE_"

// EnvLoader loads configuration from environment variables. Values are
// kept as strings; the decoder converts them to the setting's type.
type EnvLoader struct {
	mapping map[string]string // Env var -> config path
	lookup  func(string) (string, bool)
}

// NewEnvLoader creates a loader with the default KEYBRIDGE_* mappings.
func NewEnvLoader() *EnvLoader {
	return NewEnvLoaderWithMapping(DefaultEnvMapping())
}

// NewEnvLoaderWithMapping creates a loader with custom environment variable mappings.
func NewEnvLoaderWithMapping(mapping map[string]string) *EnvLoader {
	return &EnvLoader{mapping: mapping, lookup: os.LookupEnv}
}

// DefaultEnvMapping returns the default environment variable mappings.
func DefaultEnvMapping() map[string]string {
	return map[string]string{
		Prefix + "OUTBOUND_CAPACITY": "bridge.outboundCapacity",
		Prefix + "INBOUND_CAPACITY":  "bridge.inboundCapacity",
		Prefix + "MAX_BATCH":         "bridge.maxBatch",
		Prefix + "DEBOUNCE":          "bridge.debounce",
		Prefix + "COALESCE_DISABLED": "bridge.coalesceDisabled",
		Prefix + "LOG_LEVEL":         "log.level",
		Prefix + "LOG_FORMAT":        "log.format",
		Prefix + "WORKSPACE":         "workspace.root",
		Prefix + "WATCH":             "workspace.watch",
		Prefix + "SCRIPT":            "script.init",
	}
}

// WithLookup replaces the environment lookup, e.g. for tests.
func (l *EnvLoader) WithLookup(fn func(string) (string, bool)) *EnvLoader {
	l.lookup = fn
	return l
}

// Load reads the mapped environment variables. Empty values count as set.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)
	for env, path := range l.mapping {
		if val, ok := l.lookup(env); ok {
			SetPath(config, path, val)
		}
	}
	return config, nil
}

// SetPath sets a value in a nested map using a dot-separated path.
func SetPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := data
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}

// GetPath retrieves a value from a nested map using a dot-separated path.
func GetPath(data map[string]any, path string) (any, bool) {
	var current any = data
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		if current, ok = m[part]; !ok {
			return nil, false
		}
	}
	return current, true
}
