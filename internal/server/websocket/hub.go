package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/jesseruder/electric-lullaby/internal/models"
)

// Hub tracks the connected devices of every user and fans notifications out
// to them.
type Hub struct {
	// Connected devices, keyed by username.
	clients map[string]map[*Client]bool

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	logger *log.Logger
	mu     sync.RWMutex
}

func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string]map[*Client]bool),
		logger:     logger,
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.Username] == nil {
				h.clients[client.Username] = make(map[*Client]bool)
			}
			h.clients[client.Username][client] = true
			h.mu.Unlock()
			h.logger.Printf("Device connected for %s", client.Username)

		case client := <-h.unregister:
			h.mu.Lock()
			if devices, ok := h.clients[client.Username]; ok && devices[client] {
				delete(devices, client)
				if len(devices) == 0 {
					delete(h.clients, client.Username)
				}
				close(client.send)
				h.logger.Printf("Device disconnected for %s", client.Username)
			}
			h.mu.Unlock()
		}
	}
}

// Notify tells every connected device of username that from sent an image.
// Devices whose buffers are full miss the signal; they pick the image up on
// their next fetch.
func (h *Hub) Notify(username, from string) {
	data, err := json.Marshal(models.Packet{
		Type:      models.TypeNotification,
		From:      from,
		Timestamp: time.Now(),
	})
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[username] {
		select {
		case client.send <- data:
		default:
			h.logger.Printf("Dropping notification for %s: send buffer full", username)
		}
	}
}

// Online returns the number of connected devices of username.
func (h *Hub) Online(username string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[username])
}

// Connections returns the total number of connected devices.
func (h *Hub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, devices := range h.clients {
		n += len(devices)
	}
	return n
}
