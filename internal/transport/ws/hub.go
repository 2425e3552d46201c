package ws

import (
	"encoding/json"
	"sync"

	"vocabbattle/internal/logger"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub tracks live battle connections and delivers events to them.
// Register and Unregister take effect immediately; outgoing messages are queued and
// written by a single loop, which keeps per-connection ordering.
type Hub struct {
	conns map[string]*Connection // connectionId -> conn

	mu sync.RWMutex

	broadcast chan *BroadcastMessage
	done      chan struct{}
	closeOnce sync.Once
}

// Connection represents a WebSocket connection
type Connection struct {
	ID     string
	UserID string
	Send   chan []byte
	Hub    *Hub
}

// BroadcastMessage is a message addressed to one connection
type BroadcastMessage struct {
	ConnectionID string
	Message      *Message
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		conns:     make(map[string]*Connection),
		broadcast: make(chan *BroadcastMessage, 256),
		done:      make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case msg := <-h.broadcast:
			data, err := json.Marshal(msg.Message)
			if err != nil {
				logger.Criticalf("[WS] encode %s: %v", msg.Message.Type, err)
				continue
			}

			h.mu.RLock()
			if conn, ok := h.conns[msg.ConnectionID]; ok {
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
					logger.Warningf("[WS] send buffer full, dropping %s for conn %s", msg.Message.Type, conn.ID)
				}
			}
			h.mu.RUnlock()

		case <-h.done:
			return
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.mu.Lock()
	h.conns[conn.ID] = conn
	h.mu.Unlock()
	logger.Infof("[WS] user %s connected (conn %s)", conn.UserID, conn.ID)
}

// Unregister removes a connection and closes its send channel
func (h *Hub) Unregister(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if existing, ok := h.conns[conn.ID]; ok && existing == conn {
		delete(h.conns, conn.ID)
		close(conn.Send)
		logger.Infof("[WS] user %s disconnected (conn %s)", conn.UserID, conn.ID)
	}
}

// IsConnected reports whether the connection is still registered (implements service.Broadcaster)
func (h *Hub) IsConnected(connectionID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.conns[connectionID]
	return ok
}

// SendToConnection queues an event for one connection (implements service.Broadcaster)
func (h *Hub) SendToConnection(connectionID string, msgType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Criticalf("[WS] encode %s payload: %v", msgType, err)
		return
	}
	msg := &BroadcastMessage{
		ConnectionID: connectionID,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
	select {
	case h.broadcast <- msg:
	case <-h.done:
	}
}

// Count returns the number of registered connections
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Close stops the delivery loop
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}
