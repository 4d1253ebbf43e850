// Package build runs the setup-and-build sequence: resolve the workspace,
// bootstrap the toolchain, invoke Sphinx, then record and publish the
// outcome. Each step aborts the sequence on first failure.
package build

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/docbuild/internal/config"
	"git.home.luguber.info/inful/docbuild/internal/events"
	"git.home.luguber.info/inful/docbuild/internal/history"
	"git.home.luguber.info/inful/docbuild/internal/linkverify"
	"git.home.luguber.info/inful/docbuild/internal/sphinx"
	"git.home.luguber.info/inful/docbuild/internal/toolchain"
	"git.home.luguber.info/inful/docbuild/internal/workspace"
)

// Options adjust one sequence run. The zero value is the plain
// setup-and-build behavior.
type Options struct {
	// Root overrides workspace root resolution.
	Root string
	// SkipInstall skips pip upgrade and requirement installation.
	SkipInstall bool
	// VerifyLinks checks the generated index page for broken local refs.
	VerifyLinks bool
	// Runner substitutes the command runner (tests, daemon reuse).
	Runner toolchain.CommandRunner
	// Store substitutes an already-open history store. When nil a store is
	// opened per run at the configured (or default) path.
	Store *history.Store
	// Publisher substitutes an already-connected event publisher.
	Publisher EventPublisher
}

// EventPublisher emits build lifecycle events. *events.Publisher is the
// production implementation.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, report sphinx.Report) error
}

// Result is the outcome of one sequence run. It is returned alongside the
// error whenever the workspace could be resolved, so callers can inspect
// the report of a failed build.
type Result struct {
	Layout workspace.Layout
	Report sphinx.Report
}

// Run executes the sequence and returns the build result. The returned
// error wraps the first failing step's error; the underlying tool's exit
// code is recoverable via toolchain.ExitCode.
func Run(ctx context.Context, cfg *config.Config, opts Options) (*Result, error) {
	root := opts.Root
	if root == "" {
		root = cfg.Docs.Root
	}
	layout, err := workspace.Resolve(root, cfg.Docs.Subdir)
	if err != nil {
		return nil, err
	}

	runner := opts.Runner
	if runner == nil {
		runner = toolchain.NewExecRunner()
	}

	interpreter, err := toolchain.ResolveInterpreter(cfg.Toolchain.Interpreter)
	if err != nil {
		return &Result{Layout: layout}, err
	}

	if !opts.SkipInstall && !cfg.Toolchain.SkipInstall {
		pip := toolchain.NewPip(runner, interpreter)
		if err := pip.UpgradePip(ctx); err != nil {
			return &Result{Layout: layout}, err
		}
		if err := pip.InstallRequirements(ctx, cfg.Toolchain.Requirements); err != nil {
			return &Result{Layout: layout}, err
		}
	}

	report := sphinx.Report{
		BuildID:       history.NewBuildID(),
		Started:       time.Now(),
		Status:        sphinx.StatusRunning,
		SphinxVersion: toolchain.DetectSphinxVersion(ctx),
		Commit:        workspace.HeadCommit(layout.Root),
	}

	publisher := opts.Publisher
	if publisher == nil && cfg.Events.NATSURL != "" {
		p, pubErr := events.NewPublisher(&cfg.Events)
		if pubErr != nil {
			slog.Warn("Event publishing unavailable", "error", pubErr)
		} else {
			publisher = p
			defer p.Close()
		}
	}
	publish := func(eventType string) {
		if publisher == nil {
			return
		}
		if pubErr := publisher.Publish(ctx, eventType, report); pubErr != nil {
			slog.Warn("Failed to publish build event", "type", eventType, "error", pubErr)
		}
	}

	publish(events.TypeBuildStarted)

	builder := sphinx.NewBuilder(runner, interpreter, layout)
	buildErr := builder.Build(ctx)

	report.Duration = time.Since(report.Started)
	if buildErr != nil {
		report.Status = sphinx.StatusFailed
		report.ExitCode = toolchain.ExitCode(buildErr)
		report.Error = buildErr.Error()
	} else {
		report.Status = sphinx.StatusSucceeded
		report.IndexFile = layout.IndexFile
	}

	recordHistory(ctx, cfg, layout, report, opts.Store)
	publish(events.TypeForReport(report))

	result := &Result{Layout: layout, Report: report}
	if buildErr != nil {
		return result, buildErr
	}

	if opts.VerifyLinks {
		findings, verifyErr := linkverify.VerifyPage(layout.IndexFile)
		if verifyErr != nil {
			slog.Warn("Link verification failed", "error", verifyErr)
		} else {
			linkverify.Log(findings)
		}
	}
	return result, nil
}

// recordHistory is best-effort: history must never fail a build.
func recordHistory(ctx context.Context, cfg *config.Config, layout workspace.Layout, report sphinx.Report, store *history.Store) {
	if cfg.History.Disabled {
		return
	}
	if store == nil {
		path := cfg.History.Path
		if path == "" {
			path = history.DefaultPath(layout.Root)
		}
		opened, err := history.Open(path)
		if err != nil {
			slog.Warn("Build history unavailable", "path", path, "error", err)
			return
		}
		defer func() { _ = opened.Close() }()
		store = opened
	}
	if err := store.Record(ctx, report); err != nil {
		slog.Warn("Failed to record build history", "error", err)
	}
}
