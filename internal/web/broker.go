package web

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsBroker fans block-appended events out to connected websocket clients.
// Slow or dead clients are dropped rather than blocking the append path.
type wsBroker struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func newWSBroker() *wsBroker {
	return &wsBroker{clients: make(map[*websocket.Conn]struct{})}
}

func (b *wsBroker) register(conn *websocket.Conn) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clients[conn] = struct{}{}
}

func (b *wsBroker) unregister(conn *websocket.Conn) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.clients[conn]; ok {
		delete(b.clients, conn)
		conn.Close()
	}
}

func (b *wsBroker) broadcast(data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for conn := range b.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			delete(b.clients, conn)
			conn.Close()
		}
	}
}

func (b *wsBroker) closeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for conn := range b.clients {
		conn.Close()
		delete(b.clients, conn)
	}
}
