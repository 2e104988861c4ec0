// internal/docs/help.go

// Package docs renders the embedded operator help pages.
package docs

import (
	"bytes"
	"embed"
	"html/template"
	"path"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
)

//go:embed pages/*.md
var pagesFS embed.FS

// Page holds a single rendered help page.
type Page struct {
	Slug  string
	Title string
	HTML  template.HTML
}

// Site holds all help pages, rendered once.
type Site struct {
	Pages  []Page
	BySlug map[string]*Page
}

// NewSite renders every embedded page, ordered by file name.
func NewSite() (*Site, error) {
	md := goldmark.New(goldmark.WithExtensions(
		extension.Table,
		highlighting.NewHighlighting(highlighting.WithStyle("github")),
	))

	entries, err := pagesFS.ReadDir("pages")
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	site := &Site{BySlug: map[string]*Page{}}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		data, err := pagesFS.ReadFile(path.Join("pages", e.Name()))
		if err != nil {
			return nil, err
		}

		var buf bytes.Buffer
		if err := md.Convert(data, &buf); err != nil {
			return nil, err
		}
		site.Pages = append(site.Pages, Page{
			Slug:  slugOf(e.Name()),
			Title: titleOf(data),
			HTML:  template.HTML(buf.String()),
		})
	}
	for i := range site.Pages {
		site.BySlug[site.Pages[i].Slug] = &site.Pages[i]
	}
	return site, nil
}

// "01-editor.md" -> "editor"
func slugOf(name string) string {
	name = strings.TrimSuffix(name, ".md")
	if i := strings.IndexByte(name, '-'); i > 0 && strings.Trim(name[:i], "0123456789") == "" {
		name = name[i+1:]
	}
	return name
}

func titleOf(md []byte) string {
	for _, line := range strings.Split(string(md), "\n") {
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return ""
}
