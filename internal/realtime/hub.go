// internal/realtime/hub.go

// Package realtime fans file-change events out to websocket clients.
package realtime

import (
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	TypeChanged = "changed"

	SourceSave = "save" // written through /admin/save
	SourceDisk = "disk" // changed on disk by something else

	writeWait = 5 * time.Second
)

// Event is one change notice as sent to clients.
type Event struct {
	Type   string `json:"type"`
	File   string `json:"file"`
	Op     string `json:"op"`
	ETag   string `json:"etag,omitempty"`
	Source string `json:"source"`
}

type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// Hub keeps the set of connected clients and in-process subscribers.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*wsClient]struct{}
	subs    map[chan Event]struct{}
}

// NewHub builds a hub. origins lists allowed Origin values; "*" allows any.
func NewHub(origins []string) *Hub {
	h := &Hub{
		clients: make(map[*wsClient]struct{}),
		subs:    make(map[chan Event]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return originAllowed(r, origins) },
	}
	return h
}

// Publish delivers ev to every websocket client and subscriber.
func (h *Hub) Publish(ev Event) {
	if ev.Type == "" {
		ev.Type = TypeChanged
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}

	h.mu.Lock()
	clients := make([]*wsClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
			// drop on slow subscriber
		}
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.mu.Lock()
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		err := c.conn.WriteMessage(websocket.TextMessage, data)
		c.mu.Unlock()
		if err != nil {
			h.drop(c)
		}
	}
}

// Subscribe registers an in-process listener.
func (h *Hub) Subscribe() (ch chan Event, cancel func()) {
	ch = make(chan Event, 32)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel = func() {
		h.mu.Lock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Clients returns the number of connected websocket clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeWS upgrades the request and keeps the connection registered until
// the client goes away. Incoming messages are ignored.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WS: upgrade: %v", err)
		return
	}
	c := &wsClient{conn: conn}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	defer h.drop(c)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*wsClient]struct{})
	h.mu.Unlock()
	for c := range clients {
		_ = c.conn.Close()
	}
}

func (h *Hub) drop(c *wsClient) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		_ = c.conn.Close()
	}
}

func originAllowed(r *http.Request, origins []string) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, o := range origins {
		if o == "*" || o == origin {
			return true
		}
	}
	// Same-origin pages are always allowed.
	u, err := url.Parse(origin)
	return err == nil && u.Host == r.Host
}
