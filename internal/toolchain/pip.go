// Package toolchain bootstraps the Python documentation toolchain: it
// resolves the interpreter, keeps pip current and installs the Sphinx
// packages a build needs. All commands run through the module's pip entry
// point (`python -m pip`) so the interpreter and its site-packages stay
// consistent.
package toolchain

import (
	"context"
	"log/slog"
	"os/exec"

	"git.home.luguber.info/inful/docbuild/internal/foundation/errors"
)

// interpreterCandidates are tried in order when none is configured.
var interpreterCandidates = []string{"python3", "python"}

// ResolveInterpreter returns the Python interpreter to use. A configured
// name is required to resolve; otherwise the first candidate found on PATH
// wins.
func ResolveInterpreter(configured string) (string, error) {
	if configured != "" {
		path, err := exec.LookPath(configured)
		if err != nil {
			return "", errors.WrapError(err, errors.CategoryToolchain, "configured interpreter not found").
				WithContext("interpreter", configured).Build()
		}
		return path, nil
	}
	for _, candidate := range interpreterCandidates {
		if path, err := exec.LookPath(candidate); err == nil {
			return path, nil
		}
	}
	return "", errors.NewError(errors.CategoryToolchain, "no python interpreter on PATH").
		WithContext("tried", interpreterCandidates).Build()
}

// Pip drives package installation through a Python interpreter.
type Pip struct {
	runner      CommandRunner
	interpreter string
}

// NewPip creates a Pip bound to an interpreter path.
func NewPip(runner CommandRunner, interpreter string) *Pip {
	return &Pip{runner: runner, interpreter: interpreter}
}

// UpgradePip brings pip itself to the latest version.
func (p *Pip) UpgradePip(ctx context.Context) error {
	slog.Info("Upgrading pip", "interpreter", p.interpreter)
	err := p.runner.Run(ctx, "", p.interpreter, "-m", "pip", "install", "--upgrade", "pip")
	if err != nil {
		return errors.WrapError(err, errors.CategoryToolchain, "pip upgrade failed").
			WithContext("interpreter", p.interpreter).Build()
	}
	return nil
}

// InstallRequirements installs or upgrades the given packages.
func (p *Pip) InstallRequirements(ctx context.Context, packages []string) error {
	if len(packages) == 0 {
		return nil
	}
	slog.Info("Installing documentation toolchain", "packages", packages)
	args := append([]string{"-m", "pip", "install", "--upgrade"}, packages...)
	err := p.runner.Run(ctx, "", p.interpreter, args...)
	if err != nil {
		return errors.WrapError(err, errors.CategoryToolchain, "requirement install failed").
			WithContext("packages", packages).Build()
	}
	return nil
}
