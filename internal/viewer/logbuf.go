// internal/viewer/logbuf.go

package viewer

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/petervdpas/jsondesk/internal/util"
)

// LogEntry is one log line. Source is the lowercased subsystem tag
// ("save", "watch", "api", ...) and File the data file the line is about,
// when either can be read off the line.
type LogEntry struct {
	TS     time.Time `json:"ts"`
	Source string    `json:"source,omitempty"`
	File   string    `json:"file,omitempty"`
	Msg    string    `json:"msg"`
}

// LogBuffer keeps the recent server log for the operator page. It is fed
// by log.SetOutput and fans new lines out to stream listeners.
type LogBuffer struct {
	lines *util.RingBuffer[LogEntry]

	mu      sync.Mutex
	pending bytes.Buffer
	subs    map[chan LogEntry]struct{}
}

func NewLogBuffer(max int) *LogBuffer {
	if max <= 0 {
		max = 500
	}
	return &LogBuffer{
		lines: util.NewRingBuffer[LogEntry](max),
		subs:  make(map[chan LogEntry]struct{}),
	}
}

// Write splits p into lines; a trailing partial line waits for the next call.
func (b *LogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.pending.Write(p)
	for {
		line, err := b.pending.ReadString('\n')
		if err != nil {
			// No newline yet: put the fragment back.
			b.pending.WriteString(line)
			break
		}
		line = strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		e := parseLogLine(time.Now(), line)
		b.lines.Push(e)
		for ch := range b.subs {
			select {
			case ch <- e:
			default:
			}
		}
	}
	return len(p), nil
}

// parseLogLine tags a line such as
// "2026/01/02 15:04:05 SAVE: teams.json (12 bytes) from 127.0.0.1:5000".
func parseLogLine(ts time.Time, line string) LogEntry {
	e := LogEntry{TS: ts, Msg: line}
	fields := strings.Fields(line)
	for i, f := range fields {
		if i > 2 {
			break
		}
		if tag, ok := subsystemTag(f); ok {
			e.Source = tag
			e.File = firstDataFile(fields[i+1:])
			break
		}
	}
	return e
}

func subsystemTag(f string) (string, bool) {
	if len(f) < 2 || !strings.HasSuffix(f, ":") {
		return "", false
	}
	name := f[:len(f)-1]
	for _, r := range name {
		if r < 'A' || r > 'Z' {
			return "", false
		}
	}
	return strings.ToLower(name), true
}

func firstDataFile(fields []string) string {
	for _, f := range fields {
		f = strings.Trim(f, "\"'():,")
		if strings.HasSuffix(f, ".json") {
			return f
		}
	}
	return ""
}

func (b *LogBuffer) Snapshot() []LogEntry { return b.lines.Snapshot() }

// Tail returns at most the last n entries.
func (b *LogBuffer) Tail(n int) []LogEntry { return b.lines.Tail(n) }

func (b *LogBuffer) Subscribe() (ch chan LogEntry, cancel func()) {
	ch = make(chan LogEntry, 64)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel = func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			close(ch)
			b.mu.Unlock()
		})
	}
	return ch, cancel
}

// logFilter narrows entries by ?source= and ?file=.
type logFilter struct {
	source string
	file   string
}

func filterFrom(r *http.Request) logFilter {
	q := r.URL.Query()
	return logFilter{
		source: strings.ToLower(strings.TrimSpace(q.Get("source"))),
		file:   strings.TrimSpace(q.Get("file")),
	}
}

func (f logFilter) match(e LogEntry) bool {
	if f.source != "" && e.Source != f.source {
		return false
	}
	return f.file == "" || e.File == f.file
}

// ServeLogsJSON answers GET /api/logs[?limit=N&source=save&file=teams.json].
// The limit applies after filtering.
func (b *LogBuffer) ServeLogsJSON(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	f := filterFrom(r)
	out := []LogEntry{}
	for _, e := range b.Snapshot() {
		if f.match(e) {
			out = append(out, e)
		}
	}
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n >= 0 && n < len(out) {
		out = out[len(out)-n:]
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_ = json.NewEncoder(w).Encode(out)
}

// ServeLogsSSE streams new entries from GET /api/logs/stream. The SSE event
// name is the entry's source, or "log" for untagged lines.
func (b *LogBuffer) ServeLogsSSE(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream; charset=utf-8")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")

	f := filterFrom(r)
	ch, cancel := b.Subscribe()
	defer cancel()

	flusher.Flush()
	for {
		select {
		case <-r.Context().Done():
			return
		case e, ok := <-ch:
			if !ok {
				return
			}
			if !f.match(e) {
				continue
			}
			event := e.Source
			if event == "" {
				event = "log"
			}
			data, _ := json.Marshal(e)
			_, _ = w.Write([]byte("event: " + event + "\ndata: " + string(data) + "\n\n"))
			flusher.Flush()
		}
	}
}
