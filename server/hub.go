package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"kaboo-server/remote"
	"kaboo-server/wsutil"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Subscribers only send control frames.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins for development; restrict in production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans change events out to the websocket subscribers of each game.
type Hub struct {
	clients    map[*Subscriber]bool
	Register   chan *Subscriber
	Unregister chan *Subscriber
	broadcast  chan remote.ChangeEvent
	done       chan struct{}
	log        *slog.Logger
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Subscriber]bool),
		Register:   make(chan *Subscriber),
		Unregister: make(chan *Subscriber),
		broadcast:  make(chan remote.ChangeEvent, 256),
		done:       make(chan struct{}),
		log:        slog.With("tag", "server"),
	}
}

// Run starts the hub's main loop. When ctx is cancelled Run closes every
// subscriber and returns.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				delete(h.clients, c)
				close(c.Send)
			}
			h.log.Info("hub stopped")
			return
		case c := <-h.Register:
			h.clients[c] = true
			h.log.Debug("subscriber connected", "game", c.GameID, "player", c.PlayerID, "total", len(h.clients))
		case c := <-h.Unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.Send)
				h.log.Debug("subscriber disconnected", "game", c.GameID, "total", len(h.clients))
			}
		case ev := <-h.broadcast:
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			for c := range h.clients {
				if c.GameID == ev.GameID && !wsutil.SafeSend(c.Send, data) {
					h.log.Warn("subscriber lagging, event dropped", "game", ev.GameID, "player", c.PlayerID)
				}
			}
		}
	}
}

// Broadcast queues ev for the subscribers of its game.
func (h *Hub) Broadcast(ev remote.ChangeEvent) {
	select {
	case h.broadcast <- ev:
	case <-h.done:
	default:
		h.log.Warn("broadcast queue full, event dropped", "game", ev.GameID, "entity", ev.Entity)
	}
}

// ServeWS upgrades the request and subscribes it to gameID.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, gameID, playerID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "err", err)
		return
	}
	c := &Subscriber{
		hub:      h,
		conn:     conn,
		Send:     make(chan []byte, 64),
		GameID:   gameID,
		PlayerID: playerID,
	}
	select {
	case h.Register <- c:
	case <-h.done:
		conn.Close()
		return
	}
	go c.WritePump()
	go c.ReadPump()
}

// Subscriber is one websocket connection listening to a game.
type Subscriber struct {
	hub      *Hub
	conn     *websocket.Conn
	Send     chan []byte
	GameID   string
	PlayerID string
}

// ReadPump drains the connection so control frames are handled, and
// unregisters the subscriber when the peer goes away.
func (c *Subscriber) ReadPump() {
	defer func() {
		select {
		case c.hub.Unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Debug("websocket read error", "err", err)
			}
			return
		}
	}
}

// WritePump pumps events from the send channel to the websocket connection.
func (c *Subscriber) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
