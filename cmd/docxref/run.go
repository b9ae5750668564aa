package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"
	"time"

	"docxref/internal/core/app"
	"docxref/internal/core/config"
	"docxref/internal/shared/observability"
	"docxref/internal/ui/report"
)

type options struct {
	ConfigPath string
	Inputs     []string
	Find       string
	History    int
	ReportPath string
	TSV        bool
}

func run(ctx context.Context, cfg *config.Config, opts options, out io.Writer) error {
	if cfg.Observability.Tracing {
		shutdown, err := observability.SetupTracing(ctx, cfg.Observability.OTLPEndpoint, cfg.Observability.ServiceName)
		if err != nil {
			return err
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(sctx); err != nil {
				slog.Warn("failed to flush traces", "error", err)
			}
		}()
	}

	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	a.Inputs = opts.Inputs
	defer a.Close()

	switch {
	case opts.Find != "":
		return printLookup(ctx, a, opts.Find, out)
	case opts.History > 0:
		return printHistory(ctx, a, opts.History, out)
	}

	if cfg.Observability.MetricsAddr != "" {
		srv := observability.NewServer(cfg.Observability.MetricsAddr, a.Health)
		if err := srv.Start(ctx); err != nil {
			return err
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Stop(sctx)
		}()
	}

	if cfg.Watch.Enabled {
		return watchLoop(ctx, a, opts, out)
	}

	res, err := a.Run(ctx)
	if err != nil {
		return err
	}
	return emit(cfg, opts, res, out)
}

// watchLoop reruns on documentation changes. A change to the config file
// restarts the loop with a fresh app built from the reloaded config.
func watchLoop(ctx context.Context, a *app.App, opts options, out io.Writer) error {
	reloaded := make(chan *config.Config, 1)
	cw := config.NewWatcher(opts.ConfigPath, func(cfg *config.Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	})
	if err := cw.Start(ctx); err != nil {
		slog.Warn("config file will not be watched", "path", opts.ConfigPath, "error", err)
	}
	defer cw.Stop()

	current := a
	defer func() {
		if current != a {
			current.Close()
		}
	}()
	for {
		wctx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		wa, cfg := current, current.Config
		go func() {
			done <- wa.Watch(wctx, func(res *app.Result) {
				if err := emit(cfg, opts, res, out); err != nil {
					slog.Error("failed to write report", "error", err)
				}
			})
		}()

		select {
		case err := <-done:
			cancel()
			return err
		case next := <-reloaded:
			cancel()
			if err := <-done; err != nil {
				slog.Warn("watch stopped with error", "error", err)
			}
			na, err := app.New(next)
			if err != nil {
				slog.Error("failed to apply reloaded config", "error", err)
				na = current
			} else {
				na.Inputs = opts.Inputs
				if current != a {
					current.Close()
				}
			}
			current = na
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func emit(cfg *config.Config, opts options, res *app.Result, out io.Writer) error {
	d := res.Report
	if !cfg.Resolve.ReportsUnresolved() {
		d.Unresolved = nil
	}

	if opts.ReportPath != "" {
		err := report.WriteMarkdown(opts.ReportPath, d, report.MarkdownOptions{
			CollapseAfter: 20,
			MaxListed:     cfg.Resolve.MaxListed,
		})
		if err != nil {
			return err
		}
		slog.Info("report written", "path", opts.ReportPath)
	}

	if opts.TSV {
		_, err := io.WriteString(out, report.UnresolvedTSV(d))
		return err
	}
	_, err := io.WriteString(out, report.Summary(d, cfg.Resolve.MaxListed))
	return err
}

func printLookup(ctx context.Context, a *app.App, name string, out io.Writer) error {
	run, found, err := a.Lookup(ctx, name)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "run %s (%s)\n", run.ID, run.Started.Format(time.RFC3339))
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tLANG\tKIND\tNAME\tBRIEF")
	for _, e := range found {
		name := e.FullName
		if name == "" {
			name = e.Name
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.ID, e.Language, e.Kind, name, oneLine(e.Brief))
	}
	return tw.Flush()
}

func printHistory(ctx context.Context, a *app.App, limit int, out io.Writer) error {
	runs, err := a.History(ctx, limit)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTARTED\tDOCS\tELEMENTS\tRESOLVED\tAMBIGUOUS\tUNRESOLVED\tDURATION")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%d\t%s\n",
			r.ID, r.Started.Format(time.RFC3339), r.Documents, r.Elements,
			r.Resolved, r.Ambiguous, r.Unresolved, r.Duration.Round(time.Millisecond))
	}
	return tw.Flush()
}

func oneLine(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > 60 {
		return s[:57] + "..."
	}
	return s
}
