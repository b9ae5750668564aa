package config

import (
	"path/filepath"
	"strings"
)

// InputPaths returns the configured input roots resolved against BaseDir.
// Explicit overrides, such as CLI arguments, replace them and are resolved
// against the working directory instead.
func (c *Config) InputPaths(overrides []string) []string {
	if len(overrides) > 0 {
		out := make([]string, 0, len(overrides))
		for _, p := range overrides {
			out = append(out, filepath.Clean(p))
		}
		return out
	}
	out := make([]string, 0, len(c.Input.Paths))
	for _, p := range c.Input.Paths {
		out = append(out, ResolveRelative(c.BaseDir, p))
	}
	return out
}

// StorePath returns the snapshot database path resolved against BaseDir.
func (c *Config) StorePath() string {
	return ResolveRelative(c.BaseDir, c.Store.Path)
}

func ResolveRelative(base, value string) string {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(raw) {
		return filepath.Clean(raw)
	}
	return filepath.Clean(filepath.Join(base, raw))
}
