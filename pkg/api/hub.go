package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/james-see/midiunion/pkg/logging"
	"github.com/james-see/midiunion/pkg/notify"
)

const (
	// clientBufferSize is the per-client outbound message buffer
	clientBufferSize = 256

	writeWait    = 5 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		// origin is handled by the CORS middleware
		return true
	},
}

// Event is the JSON frame sent to websocket clients
type Event struct {
	Kind      notify.Kind `json:"kind"`
	Text      string      `json:"text,omitempty"`
	Note      *uint8      `json:"note,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// Hub fans notifications out to connected websocket clients. It implements
// notify.Sink. Slow clients lose frames instead of stalling the pump.
type Hub struct {
	logger  *logging.Logger
	clients map[*client]struct{}
	mu      sync.RWMutex
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates an empty hub
func NewHub(logger *logging.Logger) *Hub {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Hub{
		logger:  logger.With("component", "websocket"),
		clients: make(map[*client]struct{}),
	}
}

// Handle broadcasts n to every client
func (h *Hub) Handle(n notify.Notification) {
	ev := Event{
		Kind:      n.Kind,
		Text:      n.Text,
		Timestamp: n.Time.UTC().Format(time.RFC3339Nano),
	}
	if n.Kind != notify.KindLog {
		note := n.Note
		ev.Note = &note
	}
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("failed to marshal event", "error", err)
		return
	}

	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.trySend(data)
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// CloseAll disconnects every client
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("websocket client connected", "clients", n)
}

// unregister closes the send channel only if this call removed the client
func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	_, existed := h.clients[c]
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()

	if existed {
		close(c.send)
	}
	h.logger.Debug("websocket client disconnected", "clients", n)
}

func (c *client) trySend(data []byte) {
	defer func() {
		// send may have been closed by a concurrent unregister
		_ = recover()
	}()
	select {
	case c.send <- data:
	default:
		c.hub.logger.Debug("websocket client too slow, dropping event")
	}
}

// streamEvents godoc
// @Summary Notification stream
// @Description Upgrades to a websocket that receives every log line and note on/off as JSON
// @Tags events
// @Success 101
// @Router /api/v1/events [get]
func (s *Server) streamEvents(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	cl := &client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, clientBufferSize),
	}
	s.hub.register(cl)

	go cl.writePump()
	go cl.readPump()
}

// readPump discards client frames and detects disconnects
func (c *client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("websocket read error", "error", err)
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
