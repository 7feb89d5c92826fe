// Package ws provides the WebSocket server for chat clients.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/GarvitAggarwal178/real-time-chat-api/internal/chat"
	"github.com/GarvitAggarwal178/real-time-chat-api/internal/config"
	"github.com/GarvitAggarwal178/real-time-chat-api/internal/domain"
	"github.com/GarvitAggarwal178/real-time-chat-api/internal/hub"
	"github.com/GarvitAggarwal178/real-time-chat-api/internal/protocol"
)

// Server handles WebSocket connections.
type Server struct {
	cfg      *config.Config
	hub      *hub.Hub
	svc      *chat.Service
	upgrader websocket.Upgrader
}

// NewServer creates a new WebSocket server.
func NewServer(cfg *config.Config, h *hub.Hub, svc *chat.Service) *Server {
	return &Server{
		cfg: cfg,
		hub: h,
		svc: svc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleWebSocket upgrades the connection and runs its session until the
// client goes away.
func (s *Server) HandleWebSocket(c echo.Context) error {
	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return err
	}

	conn := s.hub.NewConnection(ws)
	s.hub.Register(conn)
	sess := s.svc.NewSession(conn)

	ws.SetReadLimit(s.cfg.MaxMessageSize)

	go s.writePump(conn)
	go s.readPump(conn, sess)

	return nil
}

// readPump reads frames from the connection and dispatches them to the
// session. It owns teardown: on exit the session is closed and the
// connection unregistered.
func (s *Server) readPump(conn *hub.Connection, sess *chat.Session) {
	defer func() {
		sess.Disconnect()
		s.hub.Unregister(conn)
		conn.Close()
	}()

	conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	conn.Conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		return nil
	})

	for {
		_, message, err := conn.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("conn_id", conn.ID).Msg("websocket read error")
			}
			return
		}
		s.handleMessage(conn, sess, message)
	}
}

// writePump drains the connection's send buffer and keeps the peer alive
// with pings.
func (s *Server) writePump(conn *hub.Connection) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage dispatches an incoming frame by its type field.
func (s *Server) handleMessage(conn *hub.Connection, sess *chat.Session, data []byte) {
	var base protocol.BaseMessage
	if err := json.Unmarshal(data, &base); err != nil {
		s.sendError(conn, protocol.ErrorCodeInvalidMessage, "invalid JSON message")
		return
	}

	switch base.Type {
	case protocol.TypeJoin:
		s.handleJoin(conn, sess, data)
	case protocol.TypeSend:
		s.handleSend(conn, sess, data)
	default:
		s.sendError(conn, protocol.ErrorCodeInvalidMessage, "unknown message type: "+base.Type)
	}
}

// handleJoin binds a username to the session and replies with the welcome.
// The presence-changed broadcast goes out via the registry listener.
func (s *Server) handleJoin(conn *hub.Connection, sess *chat.Session, data []byte) {
	var msg protocol.JoinMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.sendError(conn, protocol.ErrorCodeInvalidMessage, "invalid join message")
		return
	}

	online, err := sess.Join(context.Background(), msg.Username)
	if err != nil {
		s.sendDomainError(conn, err)
		return
	}

	welcome := protocol.WelcomeMessage{
		BaseMessage: protocol.BaseMessage{Type: protocol.TypeWelcome, Ts: time.Now().UnixMilli()},
		OnlineUsers: online,
	}
	if err := conn.PushJSON(welcome); err != nil {
		log.Warn().Err(err).Str("conn_id", conn.ID).Msg("welcome push failed")
	}
	log.Info().Str("username", msg.Username).Str("conn_id", conn.ID).Msg("user joined")
}

// handleSend routes a message and always acks the sender on success,
// regardless of the recipient's presence.
func (s *Server) handleSend(conn *hub.Connection, sess *chat.Session, data []byte) {
	var msg protocol.SendMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.sendError(conn, protocol.ErrorCodeInvalidMessage, "invalid send message")
		return
	}

	stored, err := sess.Send(context.Background(), msg.To, msg.Content)
	if err != nil {
		s.sendDomainError(conn, err)
		return
	}

	ack := protocol.SentMessage{
		BaseMessage: protocol.BaseMessage{Type: protocol.TypeSent, Ts: time.Now().UnixMilli()},
		Message:     *stored,
	}
	if err := conn.PushJSON(ack); err != nil {
		log.Warn().Err(err).Str("conn_id", conn.ID).Msg("sent ack push failed")
	}
}

// sendDomainError maps a chat-core error onto a wire error frame.
func (s *Server) sendDomainError(conn *hub.Connection, err error) {
	code := protocol.ErrorCodeInternalError
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		code = protocol.ErrorCodeInvalidArgument
	case errors.Is(err, domain.ErrUnknownUser):
		code = protocol.ErrorCodeUnknownUser
	case errors.Is(err, domain.ErrNotJoined):
		code = protocol.ErrorCodeNotJoined
	case errors.Is(err, domain.ErrSessionClosed):
		code = protocol.ErrorCodeSessionClosed
	}
	s.sendError(conn, code, err.Error())
}

func (s *Server) sendError(conn *hub.Connection, code, message string) {
	errMsg := protocol.ErrorMessage{
		BaseMessage: protocol.BaseMessage{Type: protocol.TypeError, Ts: time.Now().UnixMilli()},
		Code:        code,
		Message:     message,
	}
	if err := conn.PushJSON(errMsg); err != nil {
		log.Warn().Err(err).Str("conn_id", conn.ID).Msg("error push failed")
	}
}
