// # internal/core/config/loader.go
package config

import (
	stderrors "errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"docxref/internal/core/errors"
	"docxref/internal/engine/traits"
)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeParseError, "decode config"), errors.CtxPath, path)
	}
	for _, key := range md.Undecoded() {
		slog.Warn("unknown config key", "path", path, "key", key.String())
	}
	cfg.BaseDir = filepath.Dir(path)

	applyDefaults(&cfg)
	normalize(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, errors.AddContext(err, errors.CtxPath, path)
	}
	return &cfg, nil
}

// LoadOrDefault loads path, falling back to DefaultConfig when the file does
// not exist. Any other failure is returned.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if stderrors.Is(err, fs.ErrNotExist) {
		slog.Debug("config file not found, using defaults", "path", path)
		cfg = DefaultConfig()
		cfg.BaseDir = "."
		return cfg, nil
	}
	return nil, err
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}
	if strings.TrimSpace(cfg.BaseDir) == "" {
		cfg.BaseDir = "."
	}

	if len(cfg.Input.Paths) == 0 {
		cfg.Input.Paths = []string{"."}
	}
	if len(cfg.Input.Include) == 0 {
		cfg.Input.Include = []string{"*.xml"}
	}
	if cfg.Input.Exclude == nil {
		// Doxygen writes these next to the compound files; they are not compounds.
		cfg.Input.Exclude = []string{"index.xml", "Doxyfile.xml", "combine.xslt"}
	}

	if cfg.Parse.Workers == 0 {
		cfg.Parse.Workers = defaultWorkers()
	}
	if cfg.Resolve.MaxListed == 0 {
		cfg.Resolve.MaxListed = 50
	}

	if strings.TrimSpace(cfg.Store.Path) == "" {
		cfg.Store.Path = "data/docxref.db"
	}
	if cfg.Store.KeepRuns == 0 {
		cfg.Store.KeepRuns = 20
	}

	// Default debounce if not set.
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if cfg.Watch.MaxRerunsPerMinute == 0 {
		cfg.Watch.MaxRerunsPerMinute = 30
	}

	if strings.TrimSpace(cfg.Observability.ServiceName) == "" {
		cfg.Observability.ServiceName = "docxref"
	}
}

func normalize(cfg *Config) {
	cfg.Input.ForceLanguage = traits.SafeLanguageTag(strings.TrimSpace(cfg.Input.ForceLanguage))
	cfg.Input.Include = trimAll(cfg.Input.Include)
	cfg.Input.Exclude = trimAll(cfg.Input.Exclude)
	for i := range cfg.Transcode.Pairs {
		pair := &cfg.Transcode.Pairs[i]
		pair.Source = traits.SafeLanguageTag(strings.TrimSpace(pair.Source))
		pair.Target = strings.ToLower(strings.TrimSpace(pair.Target))
	}
	cfg.Store.Path = strings.TrimSpace(cfg.Store.Path)
	cfg.Observability.MetricsAddr = strings.TrimSpace(cfg.Observability.MetricsAddr)
	cfg.Observability.OTLPEndpoint = strings.TrimSpace(cfg.Observability.OTLPEndpoint)
}

func trimAll(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
