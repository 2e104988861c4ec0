// internal/ui/render/templates.go

package render

import (
	"fmt"
	"html"
	"html/template"
	"net/http"
	"strings"
	"sync"

	"github.com/petervdpas/jsondesk/internal/docs"
	"github.com/petervdpas/jsondesk/internal/ui"
)

var (
	tmpl    *template.Template
	once    sync.Once
	initErr error
)

type BaseVM struct {
	Title       string
	Active      string
	ContentTmpl string
}

type EditorVM struct {
	BaseVM
	Catalog []string
}

type HelpVM struct {
	BaseVM
	Pages []docs.Page
	Page  *docs.Page
	Slug  string
}

func InitTemplates() error {
	once.Do(func() {
		funcs := template.FuncMap{
			"isActive": func(active, key string) bool { return active == key },
			"trim":     strings.TrimSpace,

			"include": func(name string, data any) template.HTML {
				if tmpl == nil {
					return template.HTML(`<pre class="err">templates not initialized</pre>`)
				}
				var b strings.Builder
				if err := tmpl.ExecuteTemplate(&b, name, data); err != nil {
					return template.HTML(`<pre class="err">` + html.EscapeString(err.Error()) + `</pre>`)
				}
				return template.HTML(b.String())
			},
		}

		var err error
		tmpl, err = template.New("root").Funcs(funcs).ParseFS(ui.TemplatesFS, "templates/*.html")
		if err != nil {
			initErr = err
			return
		}
	})
	return initErr
}

// Render executes the shared layout. The layout picks the page body via .ContentTmpl.
func Render(w http.ResponseWriter, data any) {
	if err := InitTemplates(); err != nil {
		http.Error(w, fmt.Sprintf("template init error: %v", err), http.StatusInternalServerError)
		return
	}
	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, "layout", data); err != nil {
		http.Error(w, fmt.Sprintf("template error: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(b.String()))
}
