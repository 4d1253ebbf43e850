package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docbuild/internal/config"
	"git.home.luguber.info/inful/docbuild/internal/toolchain"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"docbuild.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Build struct {
		Root        string `help:"Repository root (default: parent of the executable's directory)"`
		SkipInstall bool   `help:"Skip pip upgrade and requirement installation"`
		VerifyLinks bool   `help:"Check the generated index page for broken local references"`
	} `cmd:"" default:"withargs" help:"Install the documentation toolchain and build the HTML docs"`

	Doctor struct {
		Root string `help:"Repository root"`
	} `cmd:"" help:"Check that the documentation toolchain and docs directory are usable"`

	Watch struct {
		Root string `help:"Repository root"`
	} `cmd:"" help:"Rebuild the documentation whenever the source changes"`

	Daemon struct {
		Root string `help:"Repository root"`
	} `cmd:"" help:"Watch, rebuild on a schedule and serve the generated site"`

	History struct {
		Root  string `help:"Repository root"`
		Limit int    `default:"20" help:"Maximum number of builds to show"`
	} `cmd:"" help:"Show recent builds"`

	Clean struct {
		Root string `help:"Repository root"`
	} `cmd:"" help:"Remove generated build output"`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("docbuild"),
		kong.Description("Sphinx documentation toolchain bootstrapper and builder"))

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	// Logs go to stderr; stdout carries only the index-path contract.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch kctx.Command() {
	case "build":
		if err := runBuild(ctx, cfg); err != nil {
			slog.Error("Build failed", "error", err)
			os.Exit(toolchain.ExitCode(err))
		}
	case "doctor":
		if err := runDoctor(ctx, cfg); err != nil {
			os.Exit(1)
		}
	case "watch":
		if err := runDaemon(ctx, cfg, CLI.Watch.Root, false); err != nil {
			slog.Error("Watch failed", "error", err)
			os.Exit(1)
		}
	case "daemon":
		if err := runDaemon(ctx, cfg, CLI.Daemon.Root, true); err != nil {
			slog.Error("Daemon failed", "error", err)
			os.Exit(1)
		}
	case "history":
		if err := runHistory(ctx, cfg); err != nil {
			slog.Error("History failed", "error", err)
			os.Exit(1)
		}
	case "clean":
		if err := runClean(cfg); err != nil {
			slog.Error("Clean failed", "error", err)
			os.Exit(1)
		}
	default:
		slog.Error("Unknown command", "command", kctx.Command())
		os.Exit(1)
	}
}
