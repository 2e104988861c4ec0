// internal/viewer/routes/data.go

package routes

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/petervdpas/jsondesk/internal/client"
	"github.com/petervdpas/jsondesk/internal/content"
	"github.com/petervdpas/jsondesk/internal/util"
)

// GET /data/{file}: raw bytes, untouched.
func registerDataRoutes(mux *http.ServeMux, d Deps) {
	mux.HandleFunc(client.ReadPrefix, func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodGet, http.MethodHead) {
			return
		}

		name, err := util.CleanFileName(strings.TrimPrefix(r.URL.Path, client.ReadPrefix))
		if err != nil {
			plainError(w, "bad file name", http.StatusBadRequest)
			return
		}

		b, etag, err := d.Content.Read(r.Context(), name)
		switch {
		case errors.Is(err, content.ErrNotFound), errors.Is(err, content.ErrIsDir):
			plainError(w, "not found: "+name, http.StatusNotFound)
			return
		case errors.Is(err, content.ErrOutsideRoot):
			plainError(w, "bad file name", http.StatusBadRequest)
			return
		case err != nil:
			log.Printf("DATA: read %s: %v", name, err)
			plainError(w, "read failed", http.StatusInternalServerError)
			return
		}

		noStore(w)
		w.Header().Set("Content-Type", contentTypeForPath(name, b))
		w.Header().Set("ETag", `"`+etag+`"`)
		if r.Method == http.MethodHead {
			return
		}
		_, _ = w.Write(b)
	})
}
