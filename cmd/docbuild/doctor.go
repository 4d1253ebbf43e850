package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/docbuild/internal/config"
	"git.home.luguber.info/inful/docbuild/internal/toolchain"
	"git.home.luguber.info/inful/docbuild/internal/workspace"
)

type check struct {
	name string
	run  func(ctx context.Context) (string, error)
}

// runDoctor verifies the execution environment without mutating it.
func runDoctor(ctx context.Context, cfg *config.Config) error {
	layout, layoutErr := workspace.Resolve(firstNonEmpty(CLI.Doctor.Root, cfg.Docs.Root), cfg.Docs.Subdir)

	var interpreter string
	checks := []check{
		{"python interpreter", func(ctx context.Context) (string, error) {
			path, err := toolchain.ResolveInterpreter(cfg.Toolchain.Interpreter)
			if err != nil {
				return "", err
			}
			interpreter = path
			return path, nil
		}},
		{"pip module", func(ctx context.Context) (string, error) {
			if interpreter == "" {
				return "", fmt.Errorf("no interpreter to check with")
			}
			runner := toolchain.NewExecRunner()
			out, err := runner.Output(ctx, interpreter, "-m", "pip", "--version")
			if err != nil {
				return "", fmt.Errorf("pip not importable: %w", err)
			}
			return firstLine(out), nil
		}},
		{"sphinx-build", func(ctx context.Context) (string, error) {
			version := toolchain.DetectSphinxVersion(ctx)
			if version == "" {
				return "", fmt.Errorf("sphinx-build not on PATH (run `docbuild build` to install it)")
			}
			return "version " + version, nil
		}},
		{"docs directory", func(ctx context.Context) (string, error) {
			if layoutErr != nil {
				return "", layoutErr
			}
			if err := layout.Validate(); err != nil {
				return "", err
			}
			return layout.DocsDir, nil
		}},
		{"sphinx conf.py", func(ctx context.Context) (string, error) {
			if layoutErr != nil {
				return "", layoutErr
			}
			conf := filepath.Join(layout.DocsDir, "conf.py")
			if _, err := os.Stat(conf); err != nil {
				return "", fmt.Errorf("missing %s", conf)
			}
			return conf, nil
		}},
	}

	failed := 0
	for _, c := range checks {
		detail, err := c.run(ctx)
		if err != nil {
			failed++
			fmt.Printf("FAIL  %-20s %v\n", c.name, err)
			continue
		}
		fmt.Printf("ok    %-20s %s\n", c.name, detail)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(checks))
	}
	return nil
}

func firstLine(out []byte) string {
	for i, b := range out {
		if b == '\n' {
			return string(out[:i])
		}
	}
	return string(out)
}
