// Package websocket pushes catalog events to connected browsers and scanners.
package websocket

import (
	"context"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/xelth-com/qrcatalog/internal/catalog"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	// Registered clients: ClientID -> Client
	clients map[string]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	// closed when Run returns
	done chan struct{}

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
		clients:    make(map[string]*Client),
	}
}

// Run is the hub's main loop. It returns when ctx is done, closing every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, c := range h.clients {
				close(c.send)
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ClientID] = client
			h.mu.Unlock()
			zap.S().Debugf("📱 Client connected: %s", client.ClientID)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ClientID]; ok {
				delete(h.clients, client.ClientID)
				close(client.send)
				zap.S().Debugf("📴 Client disconnected: %s", client.ClientID)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.Lock()
			for id, c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// slow consumer
					close(c.send)
					delete(h.clients, id)
					zap.S().Warnf("⚠️  Dropped slow websocket client %s", id)
				}
			}
			h.mu.Unlock()
		}
	}
}

// ClientCount returns the number of registered clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish queues a catalog event for every client. It drops the event
// instead of blocking when the queue is full.
func (h *Hub) Publish(e catalog.Event) {
	msg, err := json.Marshal(e)
	if err != nil {
		zap.L().Error("failed to encode catalog event", zap.String("type", e.Type), zap.Error(err))
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		zap.L().Warn("websocket broadcast queue full, event dropped", zap.String("type", e.Type))
	}
}

// SendToClient sends a message to one client. It never blocks; a full or
// dropped client reports false.
func (h *Hub) SendToClient(clientID string, message interface{}) bool {
	msg, err := json.Marshal(message)
	if err != nil {
		zap.S().Errorf("Error marshaling message: %v", err)
		return false
	}

	// Run closes send channels under the write lock
	h.mu.RLock()
	defer h.mu.RUnlock()
	client, ok := h.clients[clientID]
	if !ok {
		return false
	}
	select {
	case client.send <- msg:
		return true
	default:
		return false
	}
}
