package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: DOCXREF_[SECTION]_[KEY] (e.g., DOCXREF_PARSE_WORKERS).
func ApplyEnvOverrides(cfg *Config) {
	// Input
	setEnvList(&cfg.Input.Paths, "DOCXREF_INPUT_PATHS")
	setEnvString(&cfg.Input.ForceLanguage, "DOCXREF_INPUT_FORCE_LANGUAGE")

	// Parse
	setEnvInt(&cfg.Parse.Workers, "DOCXREF_PARSE_WORKERS")

	// Resolve
	setEnvInt(&cfg.Resolve.MaxListed, "DOCXREF_RESOLVE_MAX_LISTED")

	// Store
	setEnvBool(&cfg.Store.Enabled, "DOCXREF_STORE_ENABLED")
	setEnvString(&cfg.Store.Path, "DOCXREF_STORE_PATH")
	setEnvInt(&cfg.Store.KeepRuns, "DOCXREF_STORE_KEEP_RUNS")

	// Watch
	setEnvBool(&cfg.Watch.Enabled, "DOCXREF_WATCH_ENABLED")
	setEnvDuration(&cfg.Watch.Debounce, "DOCXREF_WATCH_DEBOUNCE")

	// Observability
	setEnvString(&cfg.Observability.MetricsAddr, "DOCXREF_OBSERVABILITY_METRICS_ADDR")
	setEnvBool(&cfg.Observability.Tracing, "DOCXREF_OBSERVABILITY_TRACING")
	setEnvString(&cfg.Observability.OTLPEndpoint, "DOCXREF_OBSERVABILITY_OTLP_ENDPOINT")

	normalize(cfg)
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

func setEnvList(target *[]string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = trimAll(strings.Split(val, ","))
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = b
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = d
		}
	}
}
