// Package linkverify checks the generated HTML for broken local references.
// It is advisory: findings are logged, never fatal to a build.
package linkverify

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/docbuild/internal/foundation/errors"
)

// Link is a reference extracted from a generated HTML page.
type Link struct {
	URL       string // raw href/src value
	Tag       string // a, img, script, link
	Attribute string // href or src
	IsLocal   bool   // relative reference into the built site
}

// ExtractLinks extracts all links from an HTML file.
func ExtractLinks(htmlPath string) ([]Link, error) {
	file, err := os.Open(filepath.Clean(htmlPath))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "open HTML file").
			WithContext("html_path", htmlPath).Build()
	}
	defer func() {
		_ = file.Close() // read-only
	}()

	return ExtractLinksFromReader(file)
}

// ExtractLinksFromReader extracts all links from an HTML document.
func ExtractLinksFromReader(r io.Reader) ([]Link, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "parse HTML").Build()
	}

	var links []Link
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			collectElementLinks(n, &links)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links, nil
}

func collectElementLinks(n *html.Node, links *[]Link) {
	var attr string
	switch n.Data {
	case "a", "link":
		attr = "href"
	case "img", "script":
		attr = "src"
	default:
		return
	}
	value := getAttr(n, attr)
	if value == "" {
		return
	}
	*links = append(*links, Link{
		URL:       value,
		Tag:       n.Data,
		Attribute: attr,
		IsLocal:   isLocalRef(value),
	})
}

func getAttr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// isLocalRef reports whether a reference points into the built site rather
// than at an external resource.
func isLocalRef(ref string) bool {
	switch {
	case ref == "", strings.HasPrefix(ref, "#"):
		return false
	case strings.Contains(ref, "://"), strings.HasPrefix(ref, "//"):
		return false
	case strings.HasPrefix(ref, "mailto:"), strings.HasPrefix(ref, "tel:"), strings.HasPrefix(ref, "data:"):
		return false
	}
	return true
}
