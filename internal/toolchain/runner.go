package toolchain

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
)

// CommandRunner executes external commands. The production implementation
// shells out; tests substitute a recording fake.
type CommandRunner interface {
	// Run executes name with args in dir (empty dir means inherit the
	// working directory), streaming output to the configured writers.
	Run(ctx context.Context, dir, name string, args ...string) error
	// Output executes name with args and returns its standard output.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands via os/exec.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecRunner returns a runner wired to the process's stdout/stderr.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Stdout: os.Stdout, Stderr: os.Stderr}
}

// Run implements CommandRunner.
func (r *ExecRunner) Run(ctx context.Context, dir, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	return cmd.Run()
}

// Output implements CommandRunner.
func (r *ExecRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.Output()
}

// ExitCode extracts the process exit code from an error returned by a
// CommandRunner. Returns 1 for non-exec failures (e.g. binary not found) and
// 0 for nil.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return 1
}
