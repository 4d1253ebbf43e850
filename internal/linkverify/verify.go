package linkverify

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Finding is one broken local reference.
type Finding struct {
	Page   string // HTML file the reference came from
	URL    string // raw reference
	Target string // resolved filesystem path that was missing
}

// VerifyPage checks every local reference in one generated page against the
// filesystem and returns the broken ones. Fragments and query strings are
// stripped before resolution; directory references resolve to their
// index.html.
func VerifyPage(htmlPath string) ([]Finding, error) {
	links, err := ExtractLinks(htmlPath)
	if err != nil {
		return nil, err
	}

	baseDir := filepath.Dir(htmlPath)
	var findings []Finding
	for _, link := range links {
		if !link.IsLocal {
			continue
		}
		target := resolveLocal(baseDir, link.URL)
		if target == "" {
			continue
		}
		if _, statErr := os.Stat(target); statErr != nil {
			findings = append(findings, Finding{Page: htmlPath, URL: link.URL, Target: target})
		}
	}
	return findings, nil
}

// Log reports findings at warning level.
func Log(findings []Finding) {
	for _, f := range findings {
		slog.Warn("Broken local reference in generated HTML",
			"page", f.Page, "ref", f.URL, "missing", f.Target)
	}
}

func resolveLocal(baseDir, ref string) string {
	if i := strings.IndexAny(ref, "#?"); i >= 0 {
		ref = ref[:i]
	}
	if ref == "" {
		return ""
	}
	target := filepath.Join(baseDir, filepath.FromSlash(ref))
	if strings.HasSuffix(ref, "/") {
		target = filepath.Join(target, "index.html")
	}
	return target
}
