// Package events pushes store changes to connected browsers over websockets
// so open dashboards and lists reload when another user saves.
package events

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"jobcard-backend/internal/metrics"
	"jobcard-backend/internal/store"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

const writeTimeout = 5 * time.Second

type Hub struct {
	clients    map[*websocket.Conn]bool
	clientsMux sync.Mutex
	broadcast  chan store.Change
}

func NewHub() *Hub {
	return &Hub{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan store.Change, 64),
	}
}

// Publish queues a change for every client. A full queue drops the change;
// clients re-read on the next one anyway.
func (h *Hub) Publish(c store.Change) {
	select {
	case h.broadcast <- c:
	default:
		log.Printf("[Events] broadcast queue full, dropping %s change on %s", c.Action, c.Slot)
	}
}

// Run delivers queued changes until ctx is done, then closes all clients.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case c := <-h.broadcast:
			h.send(c)
		}
	}
}

func (h *Hub) send(c store.Change) {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()
	for client := range h.clients {
		client.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := client.WriteJSON(c); err != nil {
			client.Close()
			delete(h.clients, client)
		}
	}
	metrics.WebsocketClients.Set(float64(len(h.clients)))
}

func (h *Hub) closeAll() {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()
	for client := range h.clients {
		client.Close()
		delete(h.clients, client)
	}
	metrics.WebsocketClients.Set(0)
}

// ClientCount reports the connected clients.
func (h *Hub) ClientCount() int {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()
	return len(h.clients)
}

// ServeWS upgrades the request and keeps the client registered until it
// disconnects. Incoming messages are ignored.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Events] websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	h.clientsMux.Lock()
	h.clients[conn] = true
	metrics.WebsocketClients.Set(float64(len(h.clients)))
	h.clientsMux.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.clientsMux.Lock()
			delete(h.clients, conn)
			metrics.WebsocketClients.Set(float64(len(h.clients)))
			h.clientsMux.Unlock()
			return
		}
	}
}
