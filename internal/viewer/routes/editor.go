// internal/viewer/routes/editor.go

package routes

import (
	"net/http"

	"github.com/petervdpas/jsondesk/internal/ui/render"
)

func registerEditorRoutes(mux *http.ServeMux, d Deps) {
	// GET /: the editor page. Anything else under / that no other route
	// claims is a 404.
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		if !requireMethod(w, r, http.MethodGet, http.MethodHead) {
			return
		}
		noStore(w)
		render.Render(w, render.EditorVM{
			BaseVM:  render.BaseVM{Title: "Editor", Active: "editor", ContentTmpl: "page.editor"},
			Catalog: d.Catalog.Files(),
		})
	})
}
