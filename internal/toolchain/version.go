package toolchain

import (
	"context"
	"os/exec"
	"regexp"
	"strings"
)

// DetectSphinxVersion attempts to detect the version of sphinx-build on
// PATH. Returns the version string (e.g., "7.2.6") or empty string if
// detection fails. Best-effort; never errors when sphinx is unavailable.
func DetectSphinxVersion(ctx context.Context) string {
	path, err := exec.LookPath("sphinx-build")
	if err != nil {
		return ""
	}

	// #nosec G204 -- path is from exec.LookPath, not user-controlled
	cmd := exec.CommandContext(ctx, path, "--version")
	output, err := cmd.Output()
	if err != nil {
		return ""
	}

	return parseSphinxVersion(string(output))
}

// parseSphinxVersion extracts the semantic version from sphinx-build
// --version output. Observed formats:
//
//	sphinx-build 7.2.6
//	Sphinx (sphinx-build) 1.8.5
//	Sphinx v1.7.9
func parseSphinxVersion(output string) string {
	versionRegex := regexp.MustCompile(`v?(\d+\.\d+\.\d+)`)
	if matches := versionRegex.FindStringSubmatch(output); len(matches) >= 2 {
		return matches[1]
	}

	// Two-component fallback (e.g. "sphinx-build 8.0").
	shortRegex := regexp.MustCompile(`(\d+\.\d+)`)
	if matches := shortRegex.FindStringSubmatch(output); len(matches) >= 2 {
		return matches[1]
	}

	return strings.TrimSpace(output)
}
