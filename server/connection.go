// connection.go - websocket connection management
package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"provinces/game"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	maxMessageSize = 16 << 10
	sendBuffer     = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Connection is one websocket client. It implements game.PlayerChannel, so a
// seated connection is handed straight to the controller as that player's
// event channel.
type Connection struct {
	hub     *Hub
	metrics *Metrics
	ws      *websocket.Conn
	send    chan game.Event
	log     zerolog.Logger

	mu     sync.Mutex
	closed bool

	Name string
	Seat int
	room *room
}

// clientMessage is the inbound envelope, mirroring the outbound Event shape.
type clientMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ServeWs upgrades the request and starts the connection's pumps.
func (h *Hub) ServeWs(metrics *Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("websocket upgrade failed")
			return
		}
		c := &Connection{
			hub:     h,
			metrics: metrics,
			ws:      ws,
			send:    make(chan game.Event, sendBuffer),
			log:     h.log.With().Str("remote", r.RemoteAddr).Logger(),
			Seat:    game.NoOwner,
		}
		metrics.connOpened()
		go c.writeLoop()
		go c.readLoop()
	}
}

// Emit queues an event for the client. A client too slow to drain its buffer
// loses events rather than blocking the match; a reconnect with "ready"
// resynchronizes it from the full snapshot.
func (c *Connection) Emit(event string, data map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- game.Event{Type: event, Data: data}:
	default:
		c.log.Warn().Str("event", event).Msg("send buffer full, dropping event")
	}
}

// shutdown marks the connection dead and closes the send channel. An Emit
// racing the disconnect (the hub's nudge loop holds a connection pointer
// outside the hub lock) sees the flag instead of a closed channel.
func (c *Connection) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *Connection) readLoop() {
	defer func() {
		c.hub.Drop(c)
		c.metrics.connClosed()
		c.ws.Close()
		c.shutdown()
	}()
	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn().Err(err).Msg("websocket read error")
			}
			return
		}
		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.fail("malformed message")
			continue
		}
		c.handle(msg)
	}
}

func (c *Connection) writeLoop() {
	ticker := time.NewTicker(c.hub.ping)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()
	for {
		select {
		case ev, ok := <-c.send:
			if !ok {
				c.ws.WriteControl(websocket.CloseMessage, nil, time.Now().Add(writeWait))
				return
			}
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// fail reports a rejected request back to the client.
func (c *Connection) fail(msg string) {
	c.Emit("error", map[string]any{"message": msg})
}
