// Package workspace resolves the directory layout a build operates on: the
// repository root, the documentation source directory beneath it, and the
// generated HTML output paths.
//
// By default the root is the parent of the directory containing the running
// executable, mirroring a script that lives in a bin/ directory of a
// checkout. An explicit root always wins, and when the executable lives
// outside any checkout (e.g. installed to GOBIN) the enclosing git worktree
// of the working directory is used instead.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"

	"git.home.luguber.info/inful/docbuild/internal/foundation/errors"
)

// DefaultDocsSubdir is the documentation directory name under the root.
const DefaultDocsSubdir = "docs"

// Layout describes the fixed paths of one documentation build.
type Layout struct {
	Root      string // repository root, absolute
	DocsDir   string // Root/<subdir>, the Sphinx source tree
	BuildDir  string // DocsDir/build
	HTMLDir   string // BuildDir/html
	IndexFile string // HTMLDir/index.html
}

// New derives a Layout from an absolute root and a docs subdirectory name.
func New(root, docsSubdir string) Layout {
	if docsSubdir == "" {
		docsSubdir = DefaultDocsSubdir
	}
	docs := filepath.Join(root, docsSubdir)
	build := filepath.Join(docs, "build")
	html := filepath.Join(build, "html")
	return Layout{
		Root:      root,
		DocsDir:   docs,
		BuildDir:  build,
		HTMLDir:   html,
		IndexFile: filepath.Join(html, "index.html"),
	}
}

// Resolve determines the layout for this invocation. explicitRoot, when
// non-empty, is used as-is (made absolute). Otherwise the parent of the
// executable's directory is used; if that candidate has no docs
// subdirectory, git worktree discovery from the working directory is tried
// before giving up on the candidate.
func Resolve(explicitRoot, docsSubdir string) (Layout, error) {
	if explicitRoot != "" {
		abs, err := filepath.Abs(explicitRoot)
		if err != nil {
			return Layout{}, fmt.Errorf("resolve root: %w", err)
		}
		return New(abs, docsSubdir), nil
	}

	candidate, exeErr := executableParent()
	if candidate != "" && hasDocsDir(candidate, docsSubdir) {
		return New(candidate, docsSubdir), nil
	}

	if gitRoot, err := DiscoverGitRoot("."); err == nil && hasDocsDir(gitRoot, docsSubdir) {
		return New(gitRoot, docsSubdir), nil
	}

	if candidate != "" {
		// Keep the script-relative rule even when the docs dir is absent;
		// the caller surfaces the missing directory with a better message.
		return New(candidate, docsSubdir), nil
	}
	return Layout{}, errors.WrapError(exeErr, errors.CategoryFileSystem, "cannot determine repository root").
		WithContext("hint", "pass --root").Build()
}

// IndexFileURL returns the file:// URL of the generated index page.
func (l Layout) IndexFileURL() string {
	return "file://" + filepath.ToSlash(l.IndexFile)
}

// Validate checks that the docs directory exists and is a directory.
func (l Layout) Validate() error {
	st, err := os.Stat(l.DocsDir)
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "docs directory not found").
			WithContext("docs_dir", l.DocsDir).Build()
	}
	if !st.IsDir() {
		return errors.NewError(errors.CategoryFileSystem, "docs path is not a directory").
			WithContext("docs_dir", l.DocsDir).Build()
	}
	return nil
}

// DiscoverGitRoot walks upward from the given directory to the enclosing git
// worktree root.
func DiscoverGitRoot(from string) (string, error) {
	abs, err := filepath.Abs(from)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	repo, err := gogit.PlainOpenWithOptions(abs, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("discover git worktree: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("open worktree: %w", err)
	}
	return wt.Filesystem.Root(), nil
}

// HeadCommit returns the abbreviated HEAD commit hash of the repository at
// root, or empty string if root is not a git worktree. Best-effort; used only
// to annotate build history records.
func HeadCommit(root string) string {
	repo, err := gogit.PlainOpenWithOptions(root, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return ""
	}
	head, err := repo.Head()
	if err != nil {
		return ""
	}
	hash := head.Hash().String()
	if len(hash) > 12 {
		hash = hash[:12]
	}
	return hash
}

func executableParent() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(exe)
	if err != nil {
		resolved = exe
	}
	return filepath.Dir(filepath.Dir(resolved)), nil
}

func hasDocsDir(root, docsSubdir string) bool {
	if docsSubdir == "" {
		docsSubdir = DefaultDocsSubdir
	}
	st, err := os.Stat(filepath.Join(root, docsSubdir))
	return err == nil && st.IsDir()
}
