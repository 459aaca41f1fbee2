package server

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// progressEvent is the outgoing WebSocket message format for rebuild
// progress.
type progressEvent struct {
	Done  int    `json:"done"`
	Total int    `json:"total"`
	Path  string `json:"path"`
}

// progressHub fans indexing progress out to connected WebSocket clients.
// Slow or broken clients are dropped rather than blocking the rebuild.
type progressHub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]bool
}

func newProgressHub() *progressHub {
	return &progressHub{conns: make(map[*websocket.Conn]bool)}
}

func (h *progressHub) add(conn *websocket.Conn) {
	h.mu.Lock()
	h.conns[conn] = true
	h.mu.Unlock()
}

func (h *progressHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
	conn.Close()
}

// broadcast implements indexer.ProgressFunc.
func (h *progressHub) broadcast(done, total int, path string) {
	ev := progressEvent{Done: done, Total: total, Path: path}

	h.mu.Lock()
	var dead []*websocket.Conn
	for conn := range h.conns {
		if err := conn.WriteJSON(ev); err != nil {
			dead = append(dead, conn)
		}
	}
	for _, conn := range dead {
		delete(h.conns, conn)
		conn.Close()
	}
	h.mu.Unlock()
}

// handleIndexProgress upgrades the connection and streams progress events
// until the client goes away.
func (s *Server) handleIndexProgress(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("server: websocket upgrade: %v", err)
		return
	}
	s.progress.add(conn)
	defer s.progress.remove(conn)

	// Drain control frames; exit when the client disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("server: websocket read: %v", err)
			}
			return
		}
	}
}
