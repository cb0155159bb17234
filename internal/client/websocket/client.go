package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/jesseruder/electric-lullaby/internal/models"

	"github.com/gorilla/websocket"
)

// RedialDelay is how long the receiver waits before reconnecting.
const RedialDelay = 5 * time.Second

type Connection struct {
	Conn *websocket.Conn
}

// Connect dials the notification endpoint for the given device push token.
func Connect(ctx context.Context, endpoint, pushToken string) (*Connection, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %v", endpoint, err)
	}
	q := u.Query()
	q.Set("pushToken", pushToken)
	u.RawQuery = q.Encode()

	c, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial: %v", err)
	}
	return &Connection{Conn: c}, nil
}

// ReadPump forwards one wake signal per notification packet until the
// connection fails. Signals are dropped when one is already pending.
func (c *Connection) ReadPump(signals chan<- struct{}) error {
	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			return err
		}

		var packet models.Packet
		if err := json.Unmarshal(data, &packet); err != nil {
			continue
		}
		if packet.Type != models.TypeNotification {
			continue
		}

		select {
		case signals <- struct{}{}:
		default:
		}
	}
}

func (c *Connection) Close() {
	c.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.Conn.Close()
}

// Receiver keeps a notification connection open for the life of ctx.
type Receiver struct {
	Endpoint  string
	PushToken string
	Logger    *log.Logger
	Delay     time.Duration
}

// Run dials, pumps, and redials until ctx is done, then closes signals.
func (r *Receiver) Run(ctx context.Context, signals chan<- struct{}) {
	defer close(signals)

	delay := r.Delay
	if delay <= 0 {
		delay = RedialDelay
	}

	for {
		conn, err := Connect(ctx, r.Endpoint, r.PushToken)
		if err != nil {
			r.Logger.Printf("notifications: %v", err)
		} else {
			r.Logger.Printf("notifications: connected to %s", r.Endpoint)
			stop := context.AfterFunc(ctx, conn.Close)
			err = conn.ReadPump(signals)
			stop()
			conn.Conn.Close()
			r.Logger.Printf("notifications: connection closed: %v", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}
