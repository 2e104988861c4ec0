// internal/viewer/routes/save.go

package routes

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/petervdpas/jsondesk/internal/client"
	"github.com/petervdpas/jsondesk/internal/content"
	"github.com/petervdpas/jsondesk/internal/realtime"
	"github.com/petervdpas/jsondesk/internal/storage"
	"github.com/petervdpas/jsondesk/internal/util"
)

type saveResponse struct {
	File string `json:"file"`
	ETag string `json:"etag"`
	Size int    `json:"size"`
}

// POST /admin/save/{file}: the body replaces the file as-is. It is not
// parsed; a file that is not valid JSON is stored anyway.
func registerSaveRoutes(mux *http.ServeMux, d Deps) {
	mux.HandleFunc(client.SavePrefix, func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodPost) {
			return
		}

		name, err := util.CleanFileName(strings.TrimPrefix(r.URL.Path, client.SavePrefix))
		if err != nil {
			plainError(w, "bad file name", http.StatusBadRequest)
			return
		}
		if !d.Catalog.Contains(name) {
			msg := "not an editable file: " + name
			if hint := d.Catalog.Suggest(name); len(hint) > 0 {
				msg += " (did you mean " + strings.Join(hint, ", ") + "?)"
			}
			plainError(w, msg, http.StatusNotFound)
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, d.MaxBodyBytes))
		if err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				plainError(w, fmt.Sprintf("file too large (limit %d bytes)", tooBig.Limit), http.StatusRequestEntityTooLarge)
				return
			}
			plainError(w, "could not read request body", http.StatusBadRequest)
			return
		}

		ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`)
		etag, err := d.Content.Write(r.Context(), name, body, ifMatch)
		switch {
		case errors.Is(err, content.ErrConflict):
			plainError(w, "conflict: file changed on the server, reload and try again", http.StatusConflict)
			return
		case errors.Is(err, content.ErrIsDir):
			plainError(w, name+" is a directory", http.StatusConflict)
			return
		case errors.Is(err, content.ErrOutsideRoot):
			plainError(w, "bad file name", http.StatusBadRequest)
			return
		case err != nil:
			log.Printf("SAVE: write %s: %v", name, err)
			plainError(w, "write failed: "+err.Error(), http.StatusInternalServerError)
			return
		}

		log.Printf("SAVE: %s (%d bytes) from %s", name, len(body), r.RemoteAddr)

		if d.DB != nil {
			_, err := d.DB.RecordSave(r.Context(), storage.SaveRecord{
				File:   name,
				Size:   int64(len(body)),
				ETag:   etag,
				Remote: r.RemoteAddr,
			})
			if err != nil {
				log.Printf("SAVE: save log: %v", err)
			}
		}
		if d.Changes != nil {
			d.Changes.Publish(realtime.Event{
				File:   name,
				Op:     "write",
				ETag:   etag,
				Source: realtime.SourceSave,
			})
		}

		w.Header().Set("ETag", `"`+etag+`"`)
		writeJSON(w, http.StatusOK, saveResponse{File: name, ETag: etag, Size: len(body)})
	})
}
