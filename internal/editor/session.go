// Package editor implements the File Editor Client: a catalog-backed
// selection, a text buffer, and asynchronous load/save against the server.
package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/petervdpas/jsondesk/internal/catalog"
)

var (
	ErrNoSelection  = errors.New("no file selected")
	ErrNotInCatalog = errors.New("file not in catalog")
)

// FileClient is the transport the session drives. *client.Client satisfies it.
type FileClient interface {
	ReadFile(ctx context.Context, name string) (string, error)
	SaveFile(ctx context.Context, name, body string) error
}

// LoadResult reports how one Load ended. Stale loads were superseded by a
// later Load and did not touch the buffer.
type LoadResult struct {
	Seq    uint64
	File   string
	Text   string
	Err    error
	Stale  bool
	Notice *Notice
}

type SaveResult struct {
	File   string
	Err    error
	Notice Notice
}

// Session is the state of one editing session. All methods are safe for
// concurrent use; Load and Save return immediately and report on a channel.
type Session struct {
	files   FileClient
	notify  Notifier
	catalog catalog.Catalog

	mu         sync.Mutex
	selection  string
	buffer     string
	seq        uint64
	cancelLoad context.CancelFunc
}

// New creates a session. notify may be nil when the caller reads notices
// from the result channels instead.
func New(cat catalog.Catalog, files FileClient, notify Notifier) *Session {
	return &Session{
		files:   files,
		notify:  notify,
		catalog: cat,
	}
}

// Options lists every catalog entry, in catalog order, for the selector.
func (s *Session) Options() []string {
	return s.catalog.Files()
}

func (s *Session) Selection() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection
}

func (s *Session) Buffer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buffer
}

// SetBuffer replaces the buffer with operator-edited text.
func (s *Session) SetBuffer(text string) {
	s.mu.Lock()
	s.buffer = text
	s.mu.Unlock()
}

// Start performs the initial load: select the first catalog entry and load it.
func (s *Session) Start(ctx context.Context) <-chan LoadResult {
	first := s.catalog.First()
	if first == "" {
		return doneLoad(LoadResult{Err: catalog.ErrEmpty})
	}
	ch, _ := s.Select(ctx, first)
	return ch
}

// Select makes name the current selection and loads it.
func (s *Session) Select(ctx context.Context, name string) (<-chan LoadResult, error) {
	if !s.catalog.Contains(name) {
		return nil, fmt.Errorf("%w: %s", ErrNotInCatalog, name)
	}
	s.mu.Lock()
	s.selection = name
	s.mu.Unlock()
	return s.Load(ctx, name), nil
}

// Load fetches name and, if no newer Load has started meanwhile, replaces
// the buffer with the body verbatim. A newer Load cancels this one.
func (s *Session) Load(ctx context.Context, name string) <-chan LoadResult {
	if ctx == nil {
		ctx = context.Background()
	}
	lctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	if s.cancelLoad != nil {
		s.cancelLoad()
	}
	s.seq++
	seq := s.seq
	s.cancelLoad = cancel
	s.mu.Unlock()

	out := make(chan LoadResult, 1)
	go func() {
		defer close(out)
		defer cancel()

		text, err := s.files.ReadFile(lctx, name)

		res := LoadResult{Seq: seq, File: name, Err: err}
		s.mu.Lock()
		if seq != s.seq {
			res.Stale = true
		} else {
			s.cancelLoad = nil
			if err == nil {
				s.buffer = text
				res.Text = text
			}
		}
		s.mu.Unlock()

		if !res.Stale && err != nil {
			n := LoadNotice(err)
			res.Notice = &n
			s.emit(n)
		}
		out <- res
	}()
	return out
}

// Save posts the current buffer for the current selection. No retry.
func (s *Session) Save(ctx context.Context) <-chan SaveResult {
	if ctx == nil {
		ctx = context.Background()
	}
	s.mu.Lock()
	name := s.selection
	body := s.buffer
	s.mu.Unlock()

	if name == "" {
		res := SaveResult{Err: ErrNoSelection, Notice: SaveNotice(ErrNoSelection)}
		s.emit(res.Notice)
		out := make(chan SaveResult, 1)
		out <- res
		close(out)
		return out
	}

	out := make(chan SaveResult, 1)
	go func() {
		defer close(out)
		err := s.files.SaveFile(ctx, name, body)
		res := SaveResult{File: name, Err: err, Notice: SaveNotice(err)}
		s.emit(res.Notice)
		out <- res
	}()
	return out
}

func (s *Session) emit(n Notice) {
	if s.notify != nil {
		s.notify.Notify(n)
	}
}

func doneLoad(r LoadResult) <-chan LoadResult {
	out := make(chan LoadResult, 1)
	out <- r
	close(out)
	return out
}
