// Package sphinx invokes the Sphinx documentation generator against a
// workspace layout and reports on the outcome.
package sphinx

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/docbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/docbuild/internal/toolchain"
	"git.home.luguber.info/inful/docbuild/internal/workspace"
)

// Builder runs HTML builds for one layout.
type Builder struct {
	runner      toolchain.CommandRunner
	interpreter string
	layout      workspace.Layout
}

// NewBuilder creates a Builder. The interpreter is the resolved Python
// binary; the build runs sphinx through it (`python -m sphinx`) so the
// freshly installed toolchain is the one that executes.
func NewBuilder(runner toolchain.CommandRunner, interpreter string, layout workspace.Layout) *Builder {
	return &Builder{runner: runner, interpreter: interpreter, layout: layout}
}

// Build produces the HTML site under layout.BuildDir. The docs directory is
// both the source and the working directory of the generator.
func (b *Builder) Build(ctx context.Context) error {
	if err := b.layout.Validate(); err != nil {
		return err
	}
	if _, err := os.Stat(filepath.Join(b.layout.DocsDir, "conf.py")); err != nil {
		return errors.WrapError(err, errors.CategoryValidation, "docs directory has no Sphinx conf.py").
			WithContext("docs_dir", b.layout.DocsDir).Build()
	}

	slog.Info("Running Sphinx HTML build", "docs_dir", b.layout.DocsDir, "build_dir", b.layout.BuildDir)
	err := b.runner.Run(ctx, b.layout.DocsDir,
		b.interpreter, "-m", "sphinx", "-M", "html", b.layout.DocsDir, b.layout.BuildDir)
	if err != nil {
		return errors.WrapError(err, errors.CategoryBuild, "sphinx build failed").
			WithContext("exit_code", toolchain.ExitCode(err)).
			WithContext("docs_dir", b.layout.DocsDir).Build()
	}

	// The index page is the build's implicit postcondition; a build that
	// "succeeds" without one is treated as failed.
	if _, err := os.Stat(b.layout.IndexFile); err != nil {
		return errors.WrapError(err, errors.CategoryBuild, "build produced no index page").
			WithContext("index_file", b.layout.IndexFile).Build()
	}
	return nil
}
