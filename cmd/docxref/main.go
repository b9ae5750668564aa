// # cmd/docxref/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"docxref/internal/core/config"
	"docxref/internal/core/errors"
)

var (
	configPath = flag.String("config", config.DefaultFile, "Path to config file")
	watch      = flag.Bool("watch", false, "Rerun whenever documentation files change")
	find       = flag.String("find", "", "Look up a name in the latest stored run")
	history    = flag.Int("history", 0, "List the N most recent stored runs")
	reportPath = flag.String("report", "", "Write a markdown report to this path")
	tsv        = flag.Bool("tsv", false, "Print unresolved references as TSV instead of a summary")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	version    = flag.Bool("version", false, "Print version and exit")
)

const VERSION = "0.3.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("docxref v%s\n", VERSION)
		os.Exit(0)
	}

	setupLogging(os.Stderr, *verbose)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "path", *configPath, "error", err)
		os.Exit(exitCode(err))
	}
	if *watch {
		cfg.Watch.Enabled = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := options{
		ConfigPath: *configPath,
		Inputs:     flag.Args(),
		Find:       *find,
		History:    *history,
		ReportPath: *reportPath,
		TSV:        *tsv,
	}
	if err := run(ctx, cfg, opts, os.Stdout); err != nil {
		slog.Error("docxref failed", "code", errors.CodeOf(err), "error", err)
		os.Exit(exitCode(err))
	}
}

func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// loadConfig reads the config file, falling back to defaults when the default
// file is absent, then applies DOCXREF_* environment overrides.
func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path == config.DefaultFile {
		cfg, err = config.LoadOrDefault(path)
	} else {
		cfg, err = config.Load(path)
	}
	if err != nil {
		return nil, err
	}
	config.ApplyEnvOverrides(cfg)
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// exitCode is 2 for bad configuration or arguments, 3 when a lookup found
// nothing and 1 otherwise.
func exitCode(err error) int {
	switch errors.CodeOf(err) {
	case errors.CodeValidationError, errors.CodeParseError:
		return 2
	case errors.CodeNotFound:
		return 3
	}
	return 1
}
