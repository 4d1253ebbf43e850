package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/docbuild/internal/build"
	"git.home.luguber.info/inful/docbuild/internal/config"
	"git.home.luguber.info/inful/docbuild/internal/daemon"
	"git.home.luguber.info/inful/docbuild/internal/history"
	"git.home.luguber.info/inful/docbuild/internal/workspace"
)

// runBuild executes the setup-and-build sequence and prints the index
// location. The trailing message shape is a compatibility contract.
func runBuild(ctx context.Context, cfg *config.Config) error {
	return executeBuild(ctx, cfg, build.Options{
		Root:        CLI.Build.Root,
		SkipInstall: CLI.Build.SkipInstall,
		VerifyLinks: CLI.Build.VerifyLinks,
	}, os.Stdout)
}

// executeBuild runs the sequence and, on success only, writes a blank line
// followed by the index-path message to out.
func executeBuild(ctx context.Context, cfg *config.Config, opts build.Options, out io.Writer) error {
	result, err := build.Run(ctx, cfg, opts)
	if err != nil {
		return err
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Documentation index file can be found at %s\n", result.Layout.IndexFileURL())
	return nil
}

func runDaemon(ctx context.Context, cfg *config.Config, root string, serve bool) error {
	d, err := daemon.New(cfg, root)
	if err != nil {
		return err
	}
	mode := daemon.ModeWatch
	if serve {
		mode = daemon.ModeServe
	}
	return d.Run(ctx, mode)
}

func runHistory(ctx context.Context, cfg *config.Config) error {
	layout, err := workspace.Resolve(firstNonEmpty(CLI.History.Root, cfg.Docs.Root), cfg.Docs.Subdir)
	if err != nil {
		return err
	}
	path := cfg.History.Path
	if path == "" {
		path = history.DefaultPath(layout.Root)
	}
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	reports, err := store.Recent(ctx, CLI.History.Limit)
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		fmt.Println("No builds recorded.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tSTATUS\tDURATION\tSPHINX\tCOMMIT\tBUILD ID")
	for _, r := range reports {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Started.Format("2006-01-02 15:04:05"),
			r.Status, r.Duration.Round(10*time.Millisecond),
			orDash(r.SphinxVersion), orDash(r.Commit), r.BuildID)
	}
	return w.Flush()
}

func runClean(cfg *config.Config) error {
	layout, err := workspace.Resolve(firstNonEmpty(CLI.Clean.Root, cfg.Docs.Root), cfg.Docs.Subdir)
	if err != nil {
		return err
	}
	fmt.Printf("Removing %s\n", layout.BuildDir)
	return os.RemoveAll(layout.BuildDir)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
