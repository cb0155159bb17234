package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jesseruder/electric-lullaby/internal/models"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Devices only receive; anything they send is discarded.
	maxMessageSize = 4 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// DeviceLookup resolves a device push token to the username that registered it.
type DeviceLookup func(ctx context.Context, pushToken string) (string, error)

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	Hub *Hub

	// The websocket connection.
	Conn *websocket.Conn

	// Buffered channel of outbound messages.
	send chan []byte

	// Owner of the device
	Username string
}

func (c *Client) ReadPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) sendSystem(msg string) {
	data, _ := json.Marshal(models.Packet{
		Type:      models.TypeSystem,
		Message:   msg,
		Timestamp: time.Now(),
	})
	c.send <- data
}

// ServeWs upgrades a device connection. The device identifies itself with
// the pushToken query parameter; unknown devices are rejected before the
// upgrade.
func ServeWs(hub *Hub, lookup DeviceLookup, w http.ResponseWriter, r *http.Request) {
	pushToken := r.URL.Query().Get("pushToken")
	if pushToken == "" {
		http.Error(w, "missing pushToken", http.StatusUnauthorized)
		return
	}
	username, err := lookup(r.Context(), pushToken)
	if err != nil {
		http.Error(w, "unknown device", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.logger.Printf("websocket upgrade: %v", err)
		return
	}

	client := &Client{
		Hub:      hub,
		Conn:     conn,
		send:     make(chan []byte, 16),
		Username: username,
	}
	client.Hub.register <- client
	client.sendSystem("Connected")

	go client.WritePump()
	go client.ReadPump()
}
