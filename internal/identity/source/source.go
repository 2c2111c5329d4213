// Package source supplies the flat key/value configuration that identities are
// built from, and parses it into typed user and link blocks.
package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// KeyValues is a flat configuration space such as the process environment.
type KeyValues map[string]string

// Value returns the value at key. Empty values count as absent.
func (kv KeyValues) Value(key string) (string, bool) {
	v, ok := kv[key]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// FromEnviron converts os.Environ-style "KEY=value" pairs. Only the identity
// keys (USER_ prefix) are kept.
func FromEnviron(environ []string) KeyValues {
	kv := make(KeyValues)
	for _, pair := range environ {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || !strings.HasPrefix(key, userPrefix) {
			continue
		}
		kv[key] = value
	}
	return kv
}

// FromOS reads identity keys from the current process environment.
func FromOS() KeyValues {
	return FromEnviron(os.Environ())
}

// FromFile reads a YAML mapping whose keys follow the same USER_<i>_... naming
// as the environment.
func FromFile(path string) (KeyValues, error) {
	data, err := os.ReadFile(filepath.Clean(path)) // #nosec G304 - path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("failed to read identity file: %w", err)
	}

	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse identity file: %w", err)
	}

	kv := make(KeyValues, len(raw))
	for k, v := range raw {
		if strings.HasPrefix(k, userPrefix) {
			kv[k] = v
		}
	}
	return kv, nil
}
