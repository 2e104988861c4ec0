// internal/viewer/routes/api.go

package routes

import (
	"errors"
	"log"
	"net/http"

	"github.com/petervdpas/jsondesk/internal/content"
	"github.com/petervdpas/jsondesk/internal/storage"
	"github.com/petervdpas/jsondesk/internal/util"
)

type catalogEntry struct {
	File   string `json:"file"`
	Exists bool   `json:"exists"`
	Size   int64  `json:"size,omitempty"`
	ETag   string `json:"etag,omitempty"`
	Mod    int64  `json:"mod,omitempty"`
}

type dataFile struct {
	File      string `json:"file"`
	Size      int64  `json:"size"`
	ETag      string `json:"etag"`
	Mod       int64  `json:"mod"`
	InCatalog bool   `json:"in_catalog"`
}

func registerAPIRoutes(mux *http.ServeMux, d Deps) {
	// GET /api/catalog: the editable files, in catalog order.
	mux.HandleFunc("/api/catalog", func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodGet) {
			return
		}
		files := d.Catalog.Files()
		out := make([]catalogEntry, 0, len(files))
		for _, f := range files {
			e := catalogEntry{File: f}
			fi, err := d.Content.Stat(r.Context(), f)
			if err == nil && !fi.IsDir {
				e.Exists = true
				e.Size = fi.Size
				e.ETag = fi.ETag
				e.Mod = fi.Mod
			} else if err != nil && !errors.Is(err, content.ErrNotFound) {
				log.Printf("API: stat %s: %v", f, err)
			}
			out = append(out, e)
		}
		noStore(w)
		writeJSON(w, http.StatusOK, out)
	})

	// GET /api/files: every file in the data dir, flagged when the editor
	// cannot reach it because it is not in the catalog.
	mux.HandleFunc("/api/files", func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodGet) {
			return
		}
		list, err := d.Content.List(r.Context(), "")
		if err != nil && !errors.Is(err, content.ErrNotFound) {
			log.Printf("API: list data dir: %v", err)
			plainError(w, "data dir unavailable", http.StatusInternalServerError)
			return
		}
		out := make([]dataFile, 0, len(list))
		for _, fi := range list {
			if fi.IsDir {
				continue
			}
			out = append(out, dataFile{
				File:      fi.Path,
				Size:      fi.Size,
				ETag:      fi.ETag,
				Mod:       fi.Mod,
				InCatalog: d.Catalog.Contains(fi.Path),
			})
		}
		noStore(w)
		writeJSON(w, http.StatusOK, out)
	})

	// GET /api/saves?file=&limit=
	mux.HandleFunc("/api/saves", func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodGet) {
			return
		}
		if d.DB == nil {
			writeJSON(w, http.StatusOK, []storage.SaveRecord{})
			return
		}

		file := r.URL.Query().Get("file")
		if file != "" {
			clean, err := util.CleanFileName(file)
			if err != nil {
				plainError(w, "bad file name", http.StatusBadRequest)
				return
			}
			file = clean
		}
		limit := atoiOr(r.URL.Query().Get("limit"), d.HistoryLimit)

		recs, err := d.DB.ListSaves(r.Context(), file, limit)
		if err != nil {
			log.Printf("API: list saves: %v", err)
			plainError(w, "save log unavailable", http.StatusInternalServerError)
			return
		}
		noStore(w)
		writeJSON(w, http.StatusOK, recs)
	})
}
