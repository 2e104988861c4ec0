package routes

import (
	"net/http"
	"strings"

	"github.com/petervdpas/jsondesk/internal/ui/render"
)

func registerHelpRoutes(mux *http.ServeMux, d Deps) {
	if d.Docs == nil || len(d.Docs.Pages) == 0 {
		return
	}

	serve := func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodGet) {
			return
		}
		slug := strings.Trim(strings.TrimPrefix(r.URL.Path, "/help"), "/")
		if slug == "" {
			slug = d.Docs.Pages[0].Slug
		}
		page, ok := d.Docs.BySlug[slug]
		if !ok {
			http.NotFound(w, r)
			return
		}
		render.Render(w, render.HelpVM{
			BaseVM: render.BaseVM{Title: page.Title, Active: "help", ContentTmpl: "page.help"},
			Pages:  d.Docs.Pages,
			Page:   page,
			Slug:   slug,
		})
	}
	mux.HandleFunc("/help", serve)
	mux.HandleFunc("/help/", serve)
}
