package handlers

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/edinar-labs/flexible-staking/internal/session"
	"github.com/edinar-labs/flexible-staking/internal/telemetry"
	"github.com/edinar-labs/flexible-staking/pkg/logger"
)

const (
	MessageTypeUserInfo = "user_info"
	MessageTypeAlert    = "alert"

	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	clientSendSize = 16
)

type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type Alert struct {
	Level   string `json:"level"`
	Action  string `json:"action"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

type wsClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub fans user info snapshots and action alerts out to connected dashboards.
// It also serves as a session.Notifier.
type Hub struct {
	mu      sync.Mutex
	clients map[*wsClient]struct{}
	closed  bool
	log     zerolog.Logger
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*wsClient]struct{}),
		log:     logger.WithComponent("websocket"),
	}
}

func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast queues msg for every client. Clients that cannot keep up are dropped.
func (h *Hub) Broadcast(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error().Err(err).Str("type", msg.Type).Msg("Message encode failed")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.log.Warn().Str("client_id", c.id).Msg("Client too slow, dropping")
			h.removeLocked(c)
		}
	}
}

func (h *Hub) Success(action session.Action, message string) {
	h.Broadcast(WSMessage{
		Type: MessageTypeAlert,
		Payload: Alert{
			Level:   "success",
			Action:  string(action),
			Message: message,
		},
	})
}

func (h *Hub) Failure(action session.Action, err error) {
	alert := Alert{
		Level:   "error",
		Action:  string(action),
		Message: string(action) + " failed",
	}
	if err != nil {
		alert.Error = err.Error()
	}
	h.Broadcast(WSMessage{Type: MessageTypeAlert, Payload: alert})
}

// Serve registers conn, writes initial and then blocks until the connection closes.
func (h *Hub) Serve(conn *websocket.Conn, initial WSMessage) {
	c := &wsClient{
		id:   uuid.New().String(),
		conn: conn,
		send: make(chan []byte, clientSendSize),
	}

	// queued before registering so broadcasts cannot close send first
	if data, err := json.Marshal(initial); err == nil {
		c.send <- data
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	telemetry.RecordStream(1)
	defer telemetry.RecordStream(-1)

	log := h.log.With().Str("client_id", c.id).Logger()
	log.Debug().Str("remote_addr", conn.RemoteAddr().String()).Msg("Client connected")

	done := make(chan struct{})
	go h.writePump(c, done)

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Msg("Connection closed")
			}
			break
		}
	}

	h.remove(c)
	<-done
	log.Debug().Msg("Client disconnected")
}

func (h *Hub) writePump(c *wsClient, done chan<- struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		close(done)
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.log.Debug().Err(err).Str("client_id", c.id).Msg("Send failed")
				h.remove(c)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(c)
				return
			}
		}
	}
}

func (h *Hub) remove(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *wsClient) {
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for c := range h.clients {
		h.removeLocked(c)
	}
}

var _ session.Notifier = (*Hub)(nil)
