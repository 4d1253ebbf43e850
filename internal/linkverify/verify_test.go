package linkverify

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixturePage = `<!DOCTYPE html>
<html>
<head>
  <link rel="stylesheet" href="_static/theme.css">
  <script src="_static/doctools.js"></script>
</head>
<body>
  <a href="genindex.html">Index</a>
  <a href="api/">API</a>
  <a href="#section">Fragment</a>
  <a href="https://example.com/external">External</a>
  <a href="mailto:docs@example.com">Mail</a>
  <img src="_images/arch.png">
</body>
</html>`

func TestExtractLinksFromReader(t *testing.T) {
	links, err := ExtractLinksFromReader(strings.NewReader(fixturePage))
	require.NoError(t, err)

	byURL := map[string]Link{}
	for _, l := range links {
		byURL[l.URL] = l
	}

	require.Len(t, links, 8)
	assert.True(t, byURL["genindex.html"].IsLocal)
	assert.True(t, byURL["_static/theme.css"].IsLocal)
	assert.True(t, byURL["_images/arch.png"].IsLocal)
	assert.False(t, byURL["#section"].IsLocal)
	assert.False(t, byURL["https://example.com/external"].IsLocal)
	assert.False(t, byURL["mailto:docs@example.com"].IsLocal)
	assert.Equal(t, "src", byURL["_images/arch.png"].Attribute)
	assert.Equal(t, "href", byURL["genindex.html"].Attribute)
}

func TestVerifyPageReportsMissingTargets(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "index.html")
	require.NoError(t, os.WriteFile(page, []byte(fixturePage), 0o644))

	// Satisfy some references, leave others broken.
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "_static"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "_static", "theme.css"), []byte(""), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "genindex.html"), []byte(""), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "api"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "api", "index.html"), []byte(""), 0o644))

	findings, err := VerifyPage(page)
	require.NoError(t, err)

	missing := map[string]bool{}
	for _, f := range findings {
		missing[f.URL] = true
	}
	assert.Len(t, findings, 2)
	assert.True(t, missing["_static/doctools.js"])
	assert.True(t, missing["_images/arch.png"])
}

func TestVerifyPageCleanSite(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "index.html")
	require.NoError(t, os.WriteFile(page, []byte(`<html><body><a href="other.html">x</a></body></html>`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.html"), []byte(""), 0o644))

	findings, err := VerifyPage(page)
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestVerifyPageMissingFile(t *testing.T) {
	_, err := VerifyPage(filepath.Join(t.TempDir(), "absent.html"))
	assert.Error(t, err)
}
