// Package hub pushes live channel state to status clients over websockets.
package hub

import (
	"log"
	"net/http"
	"sync"

	"github.com/lxzan/gws"
)

// Hub tracks connected websocket clients and broadcasts status messages.
type Hub struct {
	upgrader *gws.Upgrader

	mu    sync.RWMutex
	conns map[*gws.Conn]struct{}
	last  []byte // most recent payload, replayed to new clients
}

func New() *Hub {
	h := &Hub{conns: make(map[*gws.Conn]struct{})}
	h.upgrader = gws.NewUpgrader(h, &gws.ServerOption{})
	return h
}

// ServeHTTP upgrades a status client connection.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	socket, err := h.upgrader.Upgrade(w, r)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}
	go socket.ReadLoop()
}

// Broadcast sends payload to every connected client and keeps it for
// replay to clients that connect later.
func (h *Hub) Broadcast(payload []byte) {
	h.mu.Lock()
	h.last = payload
	conns := make([]*gws.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	if len(conns) == 0 {
		return
	}

	b := gws.NewBroadcaster(gws.OpcodeText, payload)
	defer b.Close()
	for _, c := range conns {
		_ = b.Broadcast(c)
	}
}

// ClientCount returns the number of connected status clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// ---- gws.Event ----

func (h *Hub) OnOpen(c *gws.Conn) {
	h.mu.Lock()
	h.conns[c] = struct{}{}
	last := h.last
	n := len(h.conns)
	h.mu.Unlock()

	log.Printf("status client connected (total: %d)", n)

	if last != nil {
		_ = c.WriteMessage(gws.OpcodeText, last)
	}
}

func (h *Hub) OnClose(c *gws.Conn, err error) {
	h.mu.Lock()
	delete(h.conns, c)
	n := len(h.conns)
	h.mu.Unlock()

	log.Printf("status client disconnected (total: %d)", n)
}

func (h *Hub) OnPing(c *gws.Conn, payload []byte) {
	_ = c.WritePong(payload)
}

func (h *Hub) OnPong(c *gws.Conn, payload []byte) {}

// OnMessage ignores client messages; the status stream is one-way.
func (h *Hub) OnMessage(c *gws.Conn, m *gws.Message) {
	m.Close()
}
