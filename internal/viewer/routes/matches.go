package routes

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/petervdpas/jsondesk/internal/matches"
)

type detailError struct {
	Detail string `json:"detail"`
}

func registerMatchRoutes(mux *http.ServeMux, d Deps) {
	if d.Matches == nil {
		return
	}

	// GET /matches
	mux.HandleFunc("/matches", func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodGet) {
			return
		}
		list, err := d.Matches.List(r.Context())
		if err != nil {
			log.Printf("MATCHES: %v", err)
			writeJSON(w, http.StatusInternalServerError, detailError{Detail: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, list)
	})

	// GET /matches/{id}
	mux.HandleFunc("/matches/", func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodGet) {
			return
		}
		id := strings.TrimPrefix(r.URL.Path, "/matches/")
		m, err := d.Matches.Find(r.Context(), id)
		if errors.Is(err, matches.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, detailError{Detail: "Match not found"})
			return
		}
		if err != nil {
			log.Printf("MATCHES: %v", err)
			writeJSON(w, http.StatusInternalServerError, detailError{Detail: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, m)
	})
}
