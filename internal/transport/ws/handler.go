package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"vocabbattle/internal/cache"
	"vocabbattle/internal/logger"
	"vocabbattle/internal/model"
	"vocabbattle/internal/service"
	"vocabbattle/internal/transport/rest/middleware"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

// Authenticator verifies access tokens
type Authenticator interface {
	ValidateAccessToken(token string) (*model.Identity, error)
}

// BattleEngine is the battle service as seen by a connection
type BattleEngine interface {
	Connect(sess *model.Session)
	JoinQueue(ctx context.Context, sess *model.Session)
	LeaveQueue(sess *model.Session)
	SubmitAnswer(ctx context.Context, sess *model.Session, req model.AnswerRequest)
	Disconnect(ctx context.Context, sess *model.Session)
}

// Handler handles WebSocket connections
type Handler struct {
	hub      *Hub
	auth     Authenticator
	battles  BattleEngine
	sessions cache.SessionCache // optional
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, auth Authenticator, battles BattleEngine) *Handler {
	return &Handler{
		hub:     hub,
		auth:    auth,
		battles: battles,
	}
}

// SetSessionCache enables publishing live sessions to Redis
func (h *Handler) SetSessionCache(sessions cache.SessionCache) {
	h.sessions = sessions
}

// BattleWS handles GET /v1/ws/battle
func (h *Handler) BattleWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = middleware.ExtractBearerToken(r)
	}

	identity, err := h.auth.ValidateAccessToken(token)
	if err != nil {
		http.Error(w, service.ErrUnauthorized.Error(), http.StatusUnauthorized)
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warningf("[WS] upgrade error: %v", err)
		return
	}

	sess := model.NewSession(uuid.NewString(), identity)
	conn := &Connection{
		ID:     sess.ConnectionID,
		UserID: sess.UserID,
		Send:   make(chan []byte, 256),
		Hub:    h.hub,
	}

	h.hub.Register(conn)
	h.trackSession(sess, true)
	h.battles.Connect(sess)

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn, sess)
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection, sess *model.Session) {
	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		// Unregister first so the battle engine sees this connection as gone.
		h.hub.Unregister(conn)
		h.battles.Disconnect(context.Background(), sess)
		h.trackSession(sess, false)
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warningf("[WS] read error on conn %s: %v", conn.ID, err)
			}
			break
		}
		h.dispatch(ctx, sess, data)
	}
}

func (h *Handler) dispatch(ctx context.Context, sess *model.Session, data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		h.replyError(sess, service.ErrInvalidPayload)
		return
	}

	switch string(msg.Type) {
	case model.EventQueueJoin:
		h.battles.JoinQueue(ctx, sess)

	case model.EventQueueLeave:
		h.battles.LeaveQueue(sess)

	case model.EventAnswer:
		var req model.AnswerRequest
		if len(msg.Payload) == 0 || json.Unmarshal(msg.Payload, &req) != nil {
			h.replyError(sess, service.ErrInvalidPayload)
			return
		}
		h.battles.SubmitAnswer(ctx, sess, req)

	default:
		h.replyError(sess, service.ErrUnknownEvent)
	}
}

func (h *Handler) trackSession(sess *model.Session, online bool) {
	if h.sessions == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var err error
	if online {
		err = h.sessions.Set(ctx, sess)
	} else {
		err = h.sessions.Delete(ctx, sess)
	}
	if err != nil {
		logger.Warningf("[WS] session cache for user %s: %v", sess.UserID, err)
	}
}

func (h *Handler) replyError(sess *model.Session, err error) {
	h.hub.SendToConnection(sess.ConnectionID, model.EventError, model.ErrorEvent{Message: err.Error()})
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
