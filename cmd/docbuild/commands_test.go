package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docbuild/internal/build"
	"git.home.luguber.info/inful/docbuild/internal/config"
	"git.home.luguber.info/inful/docbuild/internal/workspace"
)

// scriptedRunner fakes the interpreter: the sphinx invocation materializes
// the index page unless the runner is scripted to fail.
type scriptedRunner struct {
	layout workspace.Layout
	fail   bool
}

func (r *scriptedRunner) Run(_ context.Context, dir, name string, args ...string) error {
	if strings.Contains(strings.Join(args, " "), "-m sphinx") {
		if r.fail {
			return assert.AnError
		}
		if err := os.MkdirAll(r.layout.HTMLDir, 0o755); err != nil {
			return err
		}
		return os.WriteFile(r.layout.IndexFile, []byte("<html></html>"), 0o644)
	}
	return nil
}

func (r *scriptedRunner) Output(_ context.Context, name string, args ...string) ([]byte, error) {
	return nil, nil
}

func newDocsRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "docs", "conf.py"), []byte("project = 'x'\n"), 0o644))
	return root
}

func fakeInterpreter(t *testing.T) {
	t.Helper()
	binDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(binDir, "python3"), []byte("#!/bin/sh\nexit 0\n"), 0o755))
	t.Setenv("PATH", binDir)
}

func TestExecuteBuildPrintsIndexMessage(t *testing.T) {
	fakeInterpreter(t)
	root := newDocsRoot(t)
	layout := workspace.New(root, "")
	cfg := config.Default()
	cfg.History.Disabled = true

	var out bytes.Buffer
	err := executeBuild(testContext(t), cfg, build.Options{
		Root:   root,
		Runner: &scriptedRunner{layout: layout},
	}, &out)
	require.NoError(t, err)

	want := "\nDocumentation index file can be found at file://" +
		filepath.ToSlash(filepath.Join(root, "docs", "build", "html", "index.html")) + "\n"
	assert.Equal(t, want, out.String())
}

func TestExecuteBuildMessageIndependentOfCwd(t *testing.T) {
	fakeInterpreter(t)
	root := newDocsRoot(t)
	layout := workspace.New(root, "")
	cfg := config.Default()
	cfg.History.Disabled = true
	testChdir(t, t.TempDir())

	var out bytes.Buffer
	err := executeBuild(testContext(t), cfg, build.Options{
		Root:   root,
		Runner: &scriptedRunner{layout: layout},
	}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "file://"+filepath.ToSlash(layout.IndexFile))
}

func TestExecuteBuildFailurePrintsNothing(t *testing.T) {
	fakeInterpreter(t)
	root := newDocsRoot(t)
	layout := workspace.New(root, "")
	cfg := config.Default()
	cfg.History.Disabled = true

	var out bytes.Buffer
	err := executeBuild(testContext(t), cfg, build.Options{
		Root:   root,
		Runner: &scriptedRunner{layout: layout, fail: true},
	}, &out)
	require.Error(t, err)
	assert.Empty(t, out.String(), "failing builds must not print the success message")
}
