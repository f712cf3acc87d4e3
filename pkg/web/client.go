package web

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Client is a websocket connection to the hub.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	preview bool

	// Send carries the binary messages to write to the client. It is
	// closed by the hub when the client is removed.
	Send chan []byte

	ID          uuid.UUID
	RemoteAddr  string
	UserAgent   string
	connectedAt time.Time

	// smoothed round trip time in milliseconds
	latency atomic.Uint32
}

func newClient(h *Hub, conn *websocket.Conn, r *http.Request, preview bool) *Client {
	return &Client{
		hub:         h,
		conn:        conn,
		preview:     preview,
		Send:        make(chan []byte, 256),
		ID:          uuid.New(),
		RemoteAddr:  r.RemoteAddr,
		UserAgent:   r.Header.Get("User-Agent"),
		connectedAt: time.Now(),
	}
}

// ReadPump reads control batches from the client until the connection
// closes. Text messages are dispatched; a failing batch is reported back
// to the client alone.
func (c *Client) ReadPump() {
	// deferred function to handle unregistering client
	// and closing connection
	defer func() {
		c.hub.leave(c)
		c.conn.Close()
	}()

	for {
		kind, message, err := c.conn.ReadMessage()
		if err != nil {
			return // connection closed
		}
		if kind != websocket.TextMessage {
			continue
		}

		batch := string(message)
		c.hub.log.Debugf("web: %s: %s", c.ID, batch)
		if err := c.hub.controller.Dispatch(batch); err != nil {
			c.hub.reply(c, append([]byte{ControlError}, err.Error()...))
		}
	}
}

// WritePump writes queued messages to the client, keeping track of the
// round trip time of the connection.
func (c *Client) WritePump() {
	defer c.conn.Close()

	for message := range c.Send {
		if err := c.conn.WriteMessage(websocket.BinaryMessage, message); err != nil {
			c.hub.leave(c)
			return
		}

		// update average latency
		if d, err := rtt(c.conn.UnderlyingConn()); err == nil {
			ms := uint32(d / time.Millisecond)
			c.latency.Store((c.latency.Load()*9 + ms) / 10)
		}
	}

	// hub closed the connection
	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
