// Package daemon keeps the documentation continuously built: it watches the
// source tree, rebuilds on change and on a schedule, and serves the
// generated HTML together with health, status and metrics endpoints.
package daemon

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"git.home.luguber.info/inful/docbuild/internal/build"
	"git.home.luguber.info/inful/docbuild/internal/config"
	"git.home.luguber.info/inful/docbuild/internal/events"
	"git.home.luguber.info/inful/docbuild/internal/history"
	"git.home.luguber.info/inful/docbuild/internal/sphinx"
	"git.home.luguber.info/inful/docbuild/internal/workspace"
)

// Mode selects which daemon surfaces are active.
type Mode int

const (
	// ModeWatch rebuilds on change only; no HTTP server, no schedule.
	ModeWatch Mode = iota
	// ModeServe adds the HTTP server, metrics and the periodic rebuild.
	ModeServe
)

// Daemon owns the long-running rebuild loop.
type Daemon struct {
	cfg       *config.Config
	layout    workspace.Layout
	metrics   *Metrics
	store     *history.Store
	publisher *events.Publisher
	startTime time.Time

	statusMu   sync.RWMutex
	lastReport *sphinx.Report
}

// New resolves the workspace and prepares a daemon. rootOverride takes
// precedence over the configured root.
func New(cfg *config.Config, rootOverride string) (*Daemon, error) {
	root := rootOverride
	if root == "" {
		root = cfg.Docs.Root
	}
	layout, err := workspace.Resolve(root, cfg.Docs.Subdir)
	if err != nil {
		return nil, err
	}
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	return &Daemon{
		cfg:       cfg,
		layout:    layout,
		metrics:   NewMetrics(),
		startTime: time.Now(),
	}, nil
}

// Layout exposes the resolved workspace layout.
func (d *Daemon) Layout() workspace.Layout { return d.layout }

// Run blocks until the context is canceled.
func (d *Daemon) Run(ctx context.Context, mode Mode) error {
	if !d.cfg.History.Disabled {
		path := d.cfg.History.Path
		if path == "" {
			path = history.DefaultPath(d.layout.Root)
		}
		store, err := history.Open(path)
		if err != nil {
			slog.Warn("Build history unavailable", "path", path, "error", err)
		} else {
			d.store = store
			defer func() { _ = store.Close() }()
		}
	}

	if d.cfg.Events.NATSURL != "" {
		publisher, err := events.NewPublisher(&d.cfg.Events)
		if err != nil {
			slog.Warn("Event publishing unavailable", "error", err)
		} else {
			d.publisher = publisher
			defer publisher.Close()
		}
	}

	// Initial build bootstraps the toolchain; rebuilds skip installation.
	d.runBuild(ctx, false)

	watcher, err := NewWatcher(d.layout.DocsDir, d.cfg.Daemon.Debounce.Std(), d.skipPath)
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()
	watcher.Start(ctx)
	slog.Info("Watching documentation source", "docs_dir", d.layout.DocsDir)

	rebuilds := make(chan struct{}, 1)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-watcher.Triggers():
			case <-rebuilds:
			}
			d.runBuild(ctx, true)
		}
	}()

	if mode == ModeServe {
		scheduler, err := NewScheduler()
		if err != nil {
			return err
		}
		requestRebuild := func() {
			select {
			case rebuilds <- struct{}{}:
			default:
			}
		}
		if _, err := scheduler.SchedulePeriodicRebuild(d.cfg.Daemon.RebuildInterval.Std(), requestRebuild); err != nil {
			return err
		}
		scheduler.Start()
		defer func() {
			if stopErr := scheduler.Stop(context.Background()); stopErr != nil {
				slog.Warn("Scheduler shutdown failed", "error", stopErr)
			}
		}()

		server := NewHTTPServer(d)
		if err := server.Start(ctx); err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
				slog.Warn("HTTP server shutdown failed", "error", shutdownErr)
			}
		}()
	}

	<-ctx.Done()
	slog.Info("Daemon shutting down")
	return nil
}

// skipPath filters watcher events originating from build output.
func (d *Daemon) skipPath(path string) bool {
	return path == d.layout.BuildDir || withinDir(d.layout.BuildDir, path)
}

func (d *Daemon) runBuild(ctx context.Context, skipInstall bool) {
	if ctx.Err() != nil {
		return
	}
	opts := build.Options{
		Root:        d.layout.Root,
		SkipInstall: skipInstall,
		VerifyLinks: true,
		Store:       d.store,
	}
	// Assign only when connected; a nil *events.Publisher inside the
	// interface would look non-nil to the sequence.
	if d.publisher != nil {
		opts.Publisher = d.publisher
	}
	result, err := build.Run(ctx, d.cfg, opts)
	if err != nil {
		slog.Warn("Build failed; keeping last good output", "error", err)
	}
	// A result without a build ID means the sequence failed before the
	// build step; there is no report to account for.
	if result != nil && result.Report.BuildID != "" {
		d.setLastReport(result.Report)
		d.metrics.ObserveBuild(result.Report)
	}
}

func (d *Daemon) setLastReport(report sphinx.Report) {
	d.statusMu.Lock()
	defer d.statusMu.Unlock()
	d.lastReport = &report
}

// LastReport returns the most recent build report, if any.
func (d *Daemon) LastReport() *sphinx.Report {
	d.statusMu.RLock()
	defer d.statusMu.RUnlock()
	if d.lastReport == nil {
		return nil
	}
	report := *d.lastReport
	return &report
}
