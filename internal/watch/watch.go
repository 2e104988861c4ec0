// Package watch reports changes to files in the data directory.
package watch

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

type Op string

const (
	OpWrite  Op = "write"
	OpRemove Op = "remove"
)

// Event is one debounced change. File is root-relative with forward slashes.
type Event struct {
	File string `json:"file"`
	Op   Op     `json:"op"`
}

// Watcher watches a directory tree and delivers one Event per file per
// debounce window.
type Watcher struct {
	root     string
	debounce time.Duration
	skip     func(name string) bool

	fw     *fsnotify.Watcher
	events chan Event
	closed chan struct{}
	once   sync.Once

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// New starts watching root and all directories below it. skip may be nil;
// otherwise names for which it returns true are ignored.
func New(root string, debounce time.Duration, skip func(name string) bool) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	w := &Watcher{
		root:     filepath.Clean(root),
		debounce: debounce,
		skip:     skip,
		fw:       fw,
		events:   make(chan Event, 64),
		closed:   make(chan struct{}),
		pending:  make(map[string]*time.Timer),
	}

	err = filepath.WalkDir(w.root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return fw.Add(p)
		}
		return nil
	})
	if err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", w.root, err)
	}

	go w.loop()
	return w, nil
}

// Events delivers changes until Close. Slow readers lose events.
func (w *Watcher) Events() <-chan Event { return w.events }

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closed)
		err = w.fw.Close()
		w.mu.Lock()
		for _, t := range w.pending {
			t.Stop()
		}
		w.pending = map[string]*time.Timer{}
		w.mu.Unlock()
	})
	return err
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.closed:
			return
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			log.Printf("WATCH: error: %v", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if w.skip != nil && w.skip(filepath.Base(ev.Name)) {
		return
	}

	if ev.Op&fsnotify.Create != 0 {
		if st, err := os.Stat(ev.Name); err == nil && st.IsDir() {
			if err := w.fw.Add(ev.Name); err != nil {
				log.Printf("WATCH: add %s: %v", ev.Name, err)
			}
			return
		}
	}

	var op Op
	switch {
	case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
		op = OpWrite
	case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		op = OpRemove
	default:
		return
	}

	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil || rel == "." {
		return
	}
	w.schedule(filepath.ToSlash(rel), op)
}

// schedule coalesces bursts (temp write + rename) into a single event.
func (w *Watcher) schedule(file string, op Op) {
	w.mu.Lock()
	defer w.mu.Unlock()

	select {
	case <-w.closed:
		return
	default:
	}

	if t, ok := w.pending[file]; ok {
		t.Stop()
	}
	w.pending[file] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, file)
		w.mu.Unlock()

		// A remove followed by a recreate within the window reads as a write.
		if op == OpRemove {
			if _, err := os.Stat(filepath.Join(w.root, filepath.FromSlash(file))); err == nil {
				op = OpWrite
			} else if !errors.Is(err, os.ErrNotExist) {
				return
			}
		}

		select {
		case <-w.closed:
		case w.events <- Event{File: file, Op: op}:
		default:
			log.Printf("WATCH: dropped event for %s", file)
		}
	})
}
