// internal/viewer/routes/register.go

package routes

import (
	"net/http"

	"github.com/petervdpas/jsondesk/internal/catalog"
	"github.com/petervdpas/jsondesk/internal/content"
	"github.com/petervdpas/jsondesk/internal/docs"
	"github.com/petervdpas/jsondesk/internal/matches"
	"github.com/petervdpas/jsondesk/internal/realtime"
	"github.com/petervdpas/jsondesk/internal/storage"
)

type Logs interface {
	ServeLogsJSON(w http.ResponseWriter, r *http.Request)
	ServeLogsSSE(w http.ResponseWriter, r *http.Request)
}

// Publisher receives change notices for saved files.
type Publisher interface {
	Publish(ev realtime.Event)
}

type Deps struct {
	Content *content.Store
	Catalog catalog.Catalog
	DB      *storage.DB // nil when the save log is disabled
	Matches *matches.Builder
	Docs    *docs.Site
	Logs    Logs
	Changes Publisher

	MaxBodyBytes int64
	HistoryLimit int
}

func Register(mux *http.ServeMux, d Deps) {
	registerAPILogRoutes(mux, d)

	registerEditorRoutes(mux, d)
	registerDataRoutes(mux, d)
	registerSaveRoutes(mux, d)
	registerAPIRoutes(mux, d)
	registerMatchRoutes(mux, d)
	registerHelpRoutes(mux, d)
}

func registerAPILogRoutes(mux *http.ServeMux, d Deps) {
	if d.Logs == nil {
		return
	}
	mux.HandleFunc("/api/logs", d.Logs.ServeLogsJSON)
	mux.HandleFunc("/api/logs/stream", d.Logs.ServeLogsSSE)
}
