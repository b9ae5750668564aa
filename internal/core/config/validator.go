package config

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"

	"docxref/internal/core/errors"
	"docxref/internal/engine/traits"
	"docxref/internal/engine/transcoder"
)

// Validate checks a config after defaults were applied. Failures are
// VALIDATION_ERROR domain errors naming the offending key.
func Validate(cfg *Config) error {
	validators := []func(*Config) error{
		validateVersion,
		validateInput,
		validateParse,
		validateResolve,
		validateTranscode,
		validateStore,
		validateWatch,
		validateObservability,
	}
	for _, validate := range validators {
		if err := validate(cfg); err != nil {
			return errors.Wrap(err, errors.CodeValidationError, "invalid config")
		}
	}
	return nil
}

func validateVersion(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version %d; the only supported version is 1", cfg.Version)
	}
	return nil
}

func validateInput(cfg *Config) error {
	for i, p := range cfg.Input.Paths {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("input.paths[%d] must not be empty", i)
		}
	}
	for _, pattern := range cfg.Input.Include {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("input.include pattern %q: %w", pattern, err)
		}
	}
	for _, pattern := range cfg.Input.Exclude {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("input.exclude pattern %q: %w", pattern, err)
		}
	}
	if lang := cfg.Input.ForceLanguage; lang != "" {
		if _, ok := traits.Lookup(lang); !ok {
			return fmt.Errorf("input.force_language %q is not one of: %s", lang, strings.Join(traits.Tags(), ", "))
		}
	}
	return nil
}

func validateParse(cfg *Config) error {
	if cfg.Parse.Workers < 1 {
		return fmt.Errorf("parse.workers must be >= 1, got %d", cfg.Parse.Workers)
	}
	return nil
}

func validateResolve(cfg *Config) error {
	if cfg.Resolve.MaxListed < 0 {
		return fmt.Errorf("resolve.max_listed must be >= 0, got %d", cfg.Resolve.MaxListed)
	}
	return nil
}

func validateTranscode(cfg *Config) error {
	supported := make(map[[2]string]bool)
	for _, pair := range transcoder.Pairs() {
		supported[pair] = true
	}
	seen := make(map[[2]string]bool, len(cfg.Transcode.Pairs))
	for i, pair := range cfg.Transcode.Pairs {
		ref := fmt.Sprintf("transcode.pairs[%d]", i)
		if pair.Source == "" || pair.Target == "" {
			return fmt.Errorf("%s must set source and target", ref)
		}
		key := [2]string{pair.Source, pair.Target}
		if !supported[key] {
			return fmt.Errorf("%s: transcoding from %s to %s is not supported", ref, pair.Source, pair.Target)
		}
		if seen[key] {
			return fmt.Errorf("duplicate transcode pair %s -> %s", pair.Source, pair.Target)
		}
		seen[key] = true
	}
	return nil
}

func validateStore(cfg *Config) error {
	if cfg.Store.Enabled && cfg.Store.Path == "" {
		return fmt.Errorf("store.path must not be empty when store.enabled=true")
	}
	if cfg.Store.KeepRuns < 0 {
		return fmt.Errorf("store.keep_runs must be >= 0, got %d", cfg.Store.KeepRuns)
	}
	return nil
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	if cfg.Watch.MaxRerunsPerMinute < 1 {
		return fmt.Errorf("watch.max_reruns_per_minute must be >= 1, got %d", cfg.Watch.MaxRerunsPerMinute)
	}
	return nil
}

func validateObservability(cfg *Config) error {
	if cfg.Observability.OTLPEndpoint != "" && !cfg.Observability.Tracing {
		return fmt.Errorf("observability.otlp_endpoint requires observability.tracing=true")
	}
	return nil
}
