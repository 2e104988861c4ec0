// internal/app/run.go

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path"

	"github.com/petervdpas/jsondesk/internal/catalog"
	"github.com/petervdpas/jsondesk/internal/config"
	"github.com/petervdpas/jsondesk/internal/content"
	"github.com/petervdpas/jsondesk/internal/docs"
	"github.com/petervdpas/jsondesk/internal/realtime"
	"github.com/petervdpas/jsondesk/internal/storage"
	"github.com/petervdpas/jsondesk/internal/util"
	"github.com/petervdpas/jsondesk/internal/viewer"
	"github.com/petervdpas/jsondesk/internal/watch"
)

type Options struct {
	Dir     string // served directory; relative config paths resolve against it
	CfgPath string
	Cfg     config.Config

	// Ready, when set, receives the server's base URL once it is listening.
	Ready func(url string)
}

// Run serves the data directory until ctx is cancelled.
func Run(ctx context.Context, opt Options) error {
	cfg := opt.Cfg

	logBuf := viewer.NewLogBuffer(cfg.Viewer.LogLines)
	log.SetOutput(teeLog(logBuf))

	logBanner(opt.Dir, opt.CfgPath)

	cat, err := catalog.New(cfg.Catalog.Files)
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}

	store, err := content.NewStore(opt.Dir, cfg.Paths.DataDir)
	if err != nil {
		return err
	}
	if err := store.EnsureRoot(); err != nil {
		return fmt.Errorf("data dir: %w", err)
	}
	log.Printf("data dir: %s (%d editable files)", store.RootAbs(), cat.Len())

	var db *storage.DB
	if cfg.History.Enabled {
		db, err = storage.Open(util.ResolvePath(opt.Dir, cfg.Paths.StateDir))
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()
		log.Printf("save log: %s", db.Path())
	}

	site, err := docs.NewSite()
	if err != nil {
		return fmt.Errorf("help pages: %w", err)
	}

	hub := realtime.NewHub(cfg.Viewer.CORSOrigins)

	if cfg.Viewer.WatchFiles {
		w, err := watch.New(store.RootAbs(), util.DebounceWindow, content.IsTemp)
		if err != nil {
			// Live reload is a convenience; serve without it.
			log.Printf("WARNING: file watching disabled: %v", err)
		} else {
			defer w.Close()
			go forwardChanges(ctx, w.Events(), store, hub)
		}
	}

	addr, _ := NormalizeListenAddr(cfg.Viewer.HTTPAddr)
	srv, err := viewer.Start(ctx, addr, viewer.Viewer{
		Content:      store,
		Catalog:      cat,
		DB:           db,
		Docs:         site,
		Logs:         logBuf,
		Hub:          hub,
		CORSOrigins:  cfg.Viewer.CORSOrigins,
		MaxBodyBytes: cfg.Viewer.MaxBodyBytes,
		HistoryLimit: cfg.History.DefaultLimit,
	})
	if err != nil {
		return fmt.Errorf("start viewer: %w", err)
	}

	log.Println("────────────────────────────────────────────────────────")
	log.Printf("File editor: %s", srv.URL())
	log.Printf("Match API:   %s/matches", srv.URL())
	log.Println("────────────────────────────────────────────────────────")

	if opt.Ready != nil {
		opt.Ready(srv.URL())
	}

	<-ctx.Done()
	log.Println("SERVE: context cancelled, shutting down")
	<-srv.Done()
	return nil
}

// forwardChanges turns watcher events into hub events. Writes that came in
// through /admin/save are published by the save handler as well; clients
// tell the two apart by etag.
func forwardChanges(ctx context.Context, events <-chan watch.Event, store *content.Store, hub *realtime.Hub) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if content.IsTemp(path.Base(ev.File)) {
				continue
			}
			out := realtime.Event{
				File:   ev.File,
				Op:     string(ev.Op),
				Source: realtime.SourceDisk,
			}
			if ev.Op == watch.OpWrite {
				fi, err := store.Stat(ctx, ev.File)
				if errors.Is(err, content.ErrNotFound) {
					out.Op = string(watch.OpRemove)
				} else if err == nil {
					if fi.IsDir {
						continue
					}
					out.ETag = fi.ETag
				}
			}
			log.Printf("WATCH: %s %s", out.Op, out.File)
			hub.Publish(out)
		}
	}
}
