// # internal/core/config/config.go
package config

import (
	"runtime"
	"time"
)

// DefaultFile is looked up in the working directory when no -config flag is given.
const DefaultFile = "docxref.toml"

type Config struct {
	Version       int           `toml:"version"`
	Input         Input         `toml:"input"`
	Parse         Parse         `toml:"parse"`
	Resolve       Resolve       `toml:"resolve"`
	Transcode     Transcode     `toml:"transcode"`
	Store         Store         `toml:"store"`
	Watch         Watch         `toml:"watch"`
	Observability Observability `toml:"observability"`

	// BaseDir anchors relative paths. It is the directory of the loaded file.
	BaseDir string `toml:"-"`
}

type Input struct {
	Paths         []string `toml:"paths"`
	Include       []string `toml:"include"` // Globs; base name unless the pattern has a slash
	Exclude       []string `toml:"exclude"`
	ForceLanguage string   `toml:"force_language"`
}

type Parse struct {
	Workers int `toml:"workers"`
}

type Resolve struct {
	ReportUnresolved *bool `toml:"report_unresolved"`
	MaxListed        int   `toml:"max_listed"`
}

type Transcode struct {
	Pairs []TranscodePair `toml:"pairs"`
}

type TranscodePair struct {
	Source string `toml:"source"`
	Target string `toml:"target"`
}

type Store struct {
	Enabled  bool   `toml:"enabled"`
	Path     string `toml:"path"`
	KeepRuns int    `toml:"keep_runs"`
}

type Watch struct {
	Enabled            bool          `toml:"enabled"`
	Debounce           time.Duration `toml:"debounce"`
	MaxRerunsPerMinute int           `toml:"max_reruns_per_minute"`
}

type Observability struct {
	MetricsAddr  string `toml:"metrics_addr"`
	Tracing      bool   `toml:"tracing"`
	OTLPEndpoint string `toml:"otlp_endpoint"`
	ServiceName  string `toml:"service_name"`
}

// DefaultConfig is used when no config file exists.
func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func (r Resolve) ReportsUnresolved() bool {
	if r.ReportUnresolved == nil {
		return true
	}
	return *r.ReportUnresolved
}

func defaultWorkers() int {
	n := runtime.NumCPU()
	if n > 8 {
		return 8
	}
	return n
}
