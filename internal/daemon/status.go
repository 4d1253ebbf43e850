package daemon

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/yuin/goldmark"

	"git.home.luguber.info/inful/docbuild/internal/sphinx"
)

var statusTemplate = template.Must(template.New("status").Parse(`<!DOCTYPE html>
<html>
<head><title>docbuild status</title></head>
<body>
<h1>docbuild</h1>
<p>Uptime: {{.Uptime}}</p>
<p>Docs: <code>{{.DocsDir}}</code></p>
{{if .Last}}
<h2>Last build</h2>
<table border="1" cellpadding="4">
<tr><th>ID</th><th>Status</th><th>Started</th><th>Duration</th><th>Sphinx</th><th>Commit</th></tr>
<tr>
  <td>{{.Last.BuildID}}</td>
  <td>{{.Last.Status}}</td>
  <td>{{.Last.Started.Format "2006-01-02 15:04:05"}}</td>
  <td>{{.Last.Duration}}</td>
  <td>{{.Last.SphinxVersion}}</td>
  <td>{{.Last.Commit}}</td>
</tr>
</table>
{{if .Last.Error}}<pre>{{.Last.Error}}</pre>{{end}}
{{else}}
<p>No build has completed yet.</p>
{{end}}
{{if .Readme}}
<h2>Project readme</h2>
{{.Readme}}
{{end}}
</body>
</html>
`))

type statusData struct {
	Uptime  string
	DocsDir string
	Last    *sphinx.Report
	Readme  template.HTML
}

func (s *HTTPServer) handleStatus(w http.ResponseWriter, _ *http.Request) {
	data := statusData{
		Uptime:  time.Since(s.daemon.startTime).Round(time.Second).String(),
		DocsDir: s.daemon.layout.DocsDir,
		Last:    s.daemon.LastReport(),
		Readme:  renderReadme(s.daemon.layout.Root),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := statusTemplate.Execute(w, data); err != nil {
		slog.Warn("Status page render failed", "error", err)
	}
}

// renderReadme converts the repository README.md to HTML for the status
// page. Missing or unreadable files render as nothing.
func renderReadme(root string) template.HTML {
	for _, name := range []string{"README.md", "readme.md"} {
		source, err := os.ReadFile(filepath.Clean(filepath.Join(root, name)))
		if err != nil {
			continue
		}
		var buf bytes.Buffer
		if err := goldmark.Convert(source, &buf); err != nil {
			slog.Warn("README render failed", "file", name, "error", err)
			return ""
		}
		// #nosec G203 -- repository README rendered for a local operator page
		return template.HTML(buf.String())
	}
	return ""
}
