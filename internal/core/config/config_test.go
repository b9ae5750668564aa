// # internal/core/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docxref/internal/core/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docxref.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[input]
paths = ["xml/cpp", "/abs/java"]
include = ["class*.xml", "struct*.xml"]
force_language = "C++"

[parse]
workers = 3

[resolve]
report_unresolved = false
max_listed = 10

[[transcode.pairs]]
source = "Objective-C"
target = "Swift"

[store]
enabled = true
path = "state/runs.db"
keep_runs = 5

[watch]
enabled = true
debounce = "1s"

[observability]
metrics_addr = "127.0.0.1:9090"
tracing = true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	base := filepath.Dir(path)
	assert.Equal(t, base, cfg.BaseDir)
	assert.Equal(t, []string{filepath.Join(base, "xml/cpp"), "/abs/java"}, cfg.InputPaths(nil))
	assert.Equal(t, []string{"class*.xml", "struct*.xml"}, cfg.Input.Include)
	assert.Equal(t, []string{"index.xml", "Doxyfile.xml", "combine.xslt"}, cfg.Input.Exclude)
	assert.Equal(t, "cpp", cfg.Input.ForceLanguage)
	assert.Equal(t, 3, cfg.Parse.Workers)
	assert.False(t, cfg.Resolve.ReportsUnresolved())
	assert.Equal(t, 10, cfg.Resolve.MaxListed)
	assert.Equal(t, []TranscodePair{{Source: "objc", Target: "swift"}}, cfg.Transcode.Pairs)
	assert.True(t, cfg.Store.Enabled)
	assert.Equal(t, filepath.Join(base, "state/runs.db"), cfg.StorePath())
	assert.Equal(t, 5, cfg.Store.KeepRuns)
	assert.True(t, cfg.Watch.Enabled)
	assert.Equal(t, time.Second, cfg.Watch.Debounce)
	assert.Equal(t, 30, cfg.Watch.MaxRerunsPerMinute)
	assert.Equal(t, "127.0.0.1:9090", cfg.Observability.MetricsAddr)
	assert.Equal(t, "docxref", cfg.Observability.ServiceName)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, Validate(cfg))

	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, []string{"."}, cfg.Input.Paths)
	assert.Equal(t, []string{"*.xml"}, cfg.Input.Include)
	assert.GreaterOrEqual(t, cfg.Parse.Workers, 1)
	assert.True(t, cfg.Resolve.ReportsUnresolved())
	assert.Equal(t, 50, cfg.Resolve.MaxListed)
	assert.False(t, cfg.Store.Enabled)
	assert.Equal(t, "data/docxref.db", cfg.Store.Path)
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.Debounce)
	assert.Empty(t, cfg.Observability.MetricsAddr)
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, ".", cfg.BaseDir)
	assert.Equal(t, []string{"*.xml"}, cfg.Input.Include)

	_, err = LoadOrDefault(writeConfig(t, "[parse\nworkers = 1"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeParseError))
}

func TestLoad_ExplicitEmptyExcludeKeepsNothing(t *testing.T) {
	cfg, err := Load(writeConfig(t, "[input]\nexclude = []\n"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Input.Exclude)
}

func TestInputPaths_OverridesWin(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaseDir = "/etc/docxref"
	assert.Equal(t, []string{"/etc/docxref"}, cfg.InputPaths(nil))
	assert.Equal(t, []string{"xml", "other"}, cfg.InputPaths([]string{"xml/", "./other"}))
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("DOCXREF_INPUT_PATHS", "a, b,,c")
	t.Setenv("DOCXREF_INPUT_FORCE_LANGUAGE", "Objective-C")
	t.Setenv("DOCXREF_PARSE_WORKERS", "7")
	t.Setenv("DOCXREF_STORE_ENABLED", "TRUE")
	t.Setenv("DOCXREF_WATCH_DEBOUNCE", "2s")
	t.Setenv("DOCXREF_RESOLVE_MAX_LISTED", "not-a-number")

	cfg := DefaultConfig()
	ApplyEnvOverrides(cfg)

	assert.Equal(t, []string{"a", "b", "c"}, cfg.Input.Paths)
	assert.Equal(t, "objc", cfg.Input.ForceLanguage)
	assert.Equal(t, 7, cfg.Parse.Workers)
	assert.True(t, cfg.Store.Enabled)
	assert.Equal(t, 2*time.Second, cfg.Watch.Debounce)
	assert.Equal(t, 50, cfg.Resolve.MaxListed)
}
