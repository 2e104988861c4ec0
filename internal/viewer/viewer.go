// internal/viewer/viewer.go

package viewer

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/petervdpas/jsondesk/internal/catalog"
	"github.com/petervdpas/jsondesk/internal/content"
	"github.com/petervdpas/jsondesk/internal/docs"
	"github.com/petervdpas/jsondesk/internal/matches"
	"github.com/petervdpas/jsondesk/internal/realtime"
	"github.com/petervdpas/jsondesk/internal/storage"
	viewerassets "github.com/petervdpas/jsondesk/internal/ui/assets"
	"github.com/petervdpas/jsondesk/internal/ui/render"
	"github.com/petervdpas/jsondesk/internal/util"
	"github.com/petervdpas/jsondesk/internal/viewer/routes"
)

type Viewer struct {
	Content *content.Store
	Catalog catalog.Catalog
	DB      *storage.DB // optional save log
	Docs    *docs.Site
	Logs    *LogBuffer
	Hub     *realtime.Hub

	CORSOrigins  []string
	MaxBodyBytes int64
	HistoryLimit int
}

// Handler builds the full route table.
func (v Viewer) Handler() (http.Handler, error) {
	if err := render.InitTemplates(); err != nil {
		return nil, err
	}

	mux := http.NewServeMux()

	mux.Handle("/assets/", http.StripPrefix("/assets/",
		noCache(viewerassets.Handler()),
	))

	deps := routes.Deps{
		Content:      v.Content,
		Catalog:      v.Catalog,
		DB:           v.DB,
		Matches:      matches.NewBuilder(v.Content),
		Docs:         v.Docs,
		MaxBodyBytes: v.MaxBodyBytes,
		HistoryLimit: v.HistoryLimit,
	}
	// Typed nils would defeat the nil checks in routes.
	if v.Logs != nil {
		deps.Logs = v.Logs
	}
	if v.Hub != nil {
		deps.Changes = v.Hub
		mux.HandleFunc("/ws", v.Hub.ServeWS)
	}
	if deps.MaxBodyBytes <= 0 {
		deps.MaxBodyBytes = 8 << 20
	}
	routes.Register(mux, deps)

	return cors(v.CORSOrigins, mux), nil
}

// Server is a running viewer.
type Server struct {
	srv  *http.Server
	ln   net.Listener
	done chan struct{}
}

// Start listens on addr and serves until ctx is done.
func Start(ctx context.Context, addr string, v Viewer) (*Server, error) {
	h, err := v.Handler()
	if err != nil {
		return nil, err
	}

	s := &Server{
		done: make(chan struct{}),
		srv: &http.Server{
			Addr:              addr,
			Handler:           h,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	s.ln = ln

	// Stop server when ctx ends
	go func() {
		defer close(s.done)
		<-ctx.Done()
		shctx, cancel := context.WithTimeout(context.Background(), util.ShutdownTimeout)
		defer cancel()
		if v.Hub != nil {
			v.Hub.Close()
		}
		_ = s.srv.Shutdown(shctx)
	}()

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("viewer server error: %v", err)
		}
	}()

	return s, nil
}

// Done is closed once the server has shut down after ctx ended.
func (s *Server) Done() <-chan struct{} { return s.done }

// URL is the base URL clients should use, with the resolved port.
func (s *Server) URL() string {
	return "http://" + s.ln.Addr().String()
}
