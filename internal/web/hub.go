package web

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"openplay-app/internal/host"
	"openplay-app/internal/model"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 64
)

const (
	MessageSnapshot     = "SNAPSHOT"
	MessageAnnouncement = "ANNOUNCEMENT"
)

type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Hub fans out snapshots and announcements to every connected live-feed client.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*client]struct{}
	log      *zap.Logger
	upgrader websocket.Upgrader
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		clients: make(map[*client]struct{}),
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h *Hub) SnapshotChanged(snapshot model.Snapshot) {
	h.broadcast(Message{Type: MessageSnapshot, Payload: snapshotView(snapshot)})
}

func (h *Hub) Announce(_ context.Context, a host.Announcement) {
	h.broadcast(Message{Type: MessageAnnouncement, Payload: a})
}

func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("encode live message", zap.String("type", msg.Type), zap.Error(err))
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.log.Warn("live client too slow, message dropped", zap.String("type", msg.Type))
		}
	}
}

// serve upgrades the request and greets the client with the current snapshot.
func (h *Hub) serve(w http.ResponseWriter, r *http.Request, current model.Snapshot) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	c := &client{hub: h, conn: conn, send: make(chan []byte, sendBuffer)}
	if data, err := json.Marshal(Message{Type: MessageSnapshot, Payload: snapshotView(current)}); err == nil {
		c.send <- data
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go c.writePump()
	go c.readPump()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// readPump only drains control frames; clients never send commands here.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { return c.conn.SetReadDeadline(time.Now().Add(pongWait)) })
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("live client closed", zap.Error(err))
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
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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

func (s *Server) handleLiveFeed(w http.ResponseWriter, r *http.Request) {
	s.hub.serve(w, r, s.host.Snapshot())
}
