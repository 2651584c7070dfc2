// Package web exposes a running simulation over HTTP: a websocket hub that
// broadcasts frames to browsers and routes their commands back to the host.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/thejezzi/conway/command"
	"github.com/thejezzi/conway/logging"
	"github.com/thejezzi/conway/session"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// controlMessage is the JSON shape browsers send to drive the simulation.
type controlMessage struct {
	Command string `json:"command"`
}

// envelope wraps everything the hub pushes to browsers.
type envelope struct {
	Type  string         `json:"type"`
	Frame *session.Frame `json:"frame,omitempty"`
	State string         `json:"state,omitempty"`
}

// client is a middleman between one websocket connection and the hub.
type client struct {
	hub  *Hub
	conn *websocket.Conn

	// Buffered channel of outbound messages.
	send chan []byte
}

// readPump pumps control messages from the websocket connection to the hub.
// A broken connection is detected by a write failure in the writePump, so
// reads carry no deadline.
func (c *client) readPump() {
	defer func() {
		c.hub.Unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("websocket read failed", "error", err)
			}
			break
		}

		var msg controlMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.hub.logger.Warn("dropping malformed control message", "error", err)
			continue
		}

		kind, err := command.Parse(msg.Command)
		if err != nil {
			c.hub.logger.Warn("dropping unknown command", "command", msg.Command)
			continue
		}

		select {
		case c.hub.Commands <- kind:
		default:
			c.hub.logger.Warn("command channel full, dropping", "command", kind)
		}
	}
}

// writePump pumps hub messages to the websocket connection. One goroutine
// per connection runs this loop; it is the only writer to the connection.
func (c *client) writePump() {
	defer c.conn.Close()
	for message := range c.send {
		// If the write blocks past the deadline the connection is dead.
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			c.hub.logger.Debug("websocket write failed, closing", "error", err)
			return
		}
	}
	// The hub closed the channel.
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// Hub maintains the set of active clients, fans frames out to them and
// funnels their commands into a single channel for the host to drain.
type Hub struct {
	clients map[*client]bool

	Broadcast  chan []byte
	Register   chan *client
	Unregister chan *client

	// Commands carries parsed browser commands to the serve loop.
	Commands chan command.Kind

	logger *slog.Logger
}

// NewHub creates a hub with no connected clients.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Hub{
		clients:    make(map[*client]bool),
		Broadcast:  make(chan []byte, 256),
		Register:   make(chan *client),
		Unregister: make(chan *client),
		Commands:   make(chan command.Kind, 8),
		logger:     logger,
	}
}

// Run handles registration and broadcast until ctx is done, then closes
// every client's send channel so their write pumps finish.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			return
		case c := <-h.Register:
			h.clients[c] = true
		case c := <-h.Unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
		case message := <-h.Broadcast:
			for c := range h.clients {
				select {
				case c.send <- message:
				default:
					// The client's buffer is full. Drop the frame
					// rather than disconnect; a truly dead connection
					// is caught by the write deadline.
				}
			}
		}
	}
}

// PublishFrame implements session.Sink by fanning the frame out to every
// connected browser. The send never blocks, which keeps the session's
// publish contract.
func (h *Hub) PublishFrame(f session.Frame) {
	h.enqueue(envelope{Type: "frame", Frame: &f})
}

// PublishState implements session.StateSink so browsers can reflect
// pause/resume/stop transitions.
func (h *Hub) PublishState(s session.State) {
	h.enqueue(envelope{Type: "state", State: s.String()})
}

func (h *Hub) enqueue(env envelope) {
	payload, err := json.Marshal(env)
	if err != nil {
		h.logger.Error("marshal broadcast payload", "error", err)
		return
	}
	select {
	case h.Broadcast <- payload:
	default:
		h.logger.Debug("broadcast buffer full, dropping", "type", env.Type)
	}
}
