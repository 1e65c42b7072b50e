// Package hub streams game snapshots to websocket watchers.
//
// Every game session has its own set of watchers. The hub runs a single event
// loop (Run) that owns the watcher sets; ServeWS, Broadcast and Clients only
// talk to it through channels.
package hub

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/go-engine/internal/store"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Watchers never send payloads, only control frames.
	maxMessageSize = 512

	sendBuffer = 16
)

// EventStateUpdate is the event name of snapshot broadcasts.
const EventStateUpdate = "state_update"

// Message is the envelope written to watchers.
type Message struct {
	GameID string `json:"gameId"`
	Event  string `json:"event"`
	Data   any    `json:"data,omitempty"`
}

type client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	gameID string
}

type countRequest struct {
	gameID string
	reply  chan int
}

// Hub fans messages out to the watchers of a game.
type Hub struct {
	upgrader websocket.Upgrader

	sessions map[string]map[*client]struct{}

	broadcast  chan *Message
	register   chan *client
	unregister chan *client
	count      chan countRequest
	done       chan struct{}
}

// New creates a hub. allowedOrigin restricts the websocket Origin header;
// "" or "*" accepts any origin.
func New(allowedOrigin string) *Hub {
	h := &Hub{
		sessions:   make(map[string]map[*client]struct{}),
		broadcast:  make(chan *Message, 64),
		register:   make(chan *client),
		unregister: make(chan *client),
		count:      make(chan countRequest),
		done:       make(chan struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" || allowedOrigin == "*" {
				return true
			}
			origin := r.Header.Get("Origin")
			return origin == "" || origin == allowedOrigin
		},
	}
	return h
}

// Run is the event loop. It returns when ctx is cancelled, after closing
// every watcher.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, clients := range h.sessions {
				for c := range clients {
					close(c.send)
				}
			}
			h.sessions = map[string]map[*client]struct{}{}
			return

		case c := <-h.register:
			if h.sessions[c.gameID] == nil {
				h.sessions[c.gameID] = make(map[*client]struct{})
			}
			h.sessions[c.gameID][c] = struct{}{}
			log.Debug().Str("gameId", c.gameID).Int("watchers", len(h.sessions[c.gameID])).Msg("watcher joined")

		case c := <-h.unregister:
			h.drop(c)

		case m := <-h.broadcast:
			h.fanOut(m)

		case req := <-h.count:
			req.reply <- len(h.sessions[req.gameID])
		}
	}
}

// ServeWS upgrades the request and registers the connection as a watcher of
// gameID.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, gameID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("gameId", gameID).Msg("websocket upgrade failed")
		return
	}

	c := &client{hub: h, conn: conn, send: make(chan []byte, sendBuffer), gameID: gameID}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// Broadcast queues data for every watcher of gameID. It never blocks on slow
// watchers and is a no-op once Run has returned.
func (h *Hub) Broadcast(gameID, event string, data any) {
	select {
	case h.broadcast <- &Message{GameID: gameID, Event: event, Data: data}:
	case <-h.done:
	}
}

// CommitHook returns a store hook that sends every committed session to its
// watchers as EventStateUpdate. The store calls it under its lock, so
// watchers see the sessions in write order.
func (h *Hub) CommitHook() store.CommitHook {
	return func(s store.Session) {
		h.Broadcast(s.ID, EventStateUpdate, s.View())
	}
}

// Clients returns the number of watchers of gameID.
func (h *Hub) Clients(gameID string) int {
	req := countRequest{gameID: gameID, reply: make(chan int, 1)}
	select {
	case h.count <- req:
		return <-req.reply
	case <-h.done:
		return 0
	}
}

func (h *Hub) drop(c *client) {
	clients, ok := h.sessions[c.gameID]
	if !ok {
		return
	}
	if _, ok := clients[c]; !ok {
		return
	}
	delete(clients, c)
	close(c.send)
	if len(clients) == 0 {
		delete(h.sessions, c.gameID)
	}
	log.Debug().Str("gameId", c.gameID).Int("watchers", len(clients)).Msg("watcher left")
}

func (h *Hub) fanOut(m *Message) {
	data, err := json.Marshal(m)
	if err != nil {
		log.Error().Err(err).Str("gameId", m.GameID).Msg("marshal broadcast")
		return
	}
	for c := range h.sessions[m.GameID] {
		select {
		case c.send <- data:
		default:
			// Watcher is not keeping up.
			h.drop(c)
		}
	}
}

func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
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
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("gameId", c.gameID).Msg("websocket read")
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
