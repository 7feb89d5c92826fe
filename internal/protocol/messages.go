// Package protocol defines the WebSocket message protocol between clients
// and the chat server.
package protocol

import "github.com/GarvitAggarwal178/real-time-chat-api/internal/domain"

// Message types from client to server
const (
	TypeJoin = "join"
	TypeSend = "send"
)

// Message types from server to client
const (
	TypeWelcome         = "welcome"
	TypePresenceChanged = "presenceChanged"
	TypeNewMessage      = "newMessage"
	TypeSent            = "sent"
	TypeError           = "error"
)

// BaseMessage contains common fields for all messages.
type BaseMessage struct {
	Type string `json:"type"`
	Ts   int64  `json:"ts,omitempty"`
}

// JoinMessage is sent by a client to claim a username on this connection.
type JoinMessage struct {
	BaseMessage
	Username string `json:"username"`
}

// SendMessage is sent by a joined client to message another user.
type SendMessage struct {
	BaseMessage
	To      string `json:"to"`
	Content string `json:"content"`
}

// WelcomeMessage is the private reply to a successful join.
type WelcomeMessage struct {
	BaseMessage
	OnlineUsers []string `json:"onlineUsers"`
}

// PresenceChangedMessage is broadcast to every connection when the online
// set changes.
type PresenceChangedMessage struct {
	BaseMessage
	OnlineUsers []string `json:"onlineUsers"`
}

// NewMessageEvent is pushed to the recipient's connection when it is online
// at send time.
type NewMessageEvent struct {
	BaseMessage
	Message domain.Message `json:"message"`
}

// SentMessage is the unconditional acknowledgment to the sender.
type SentMessage struct {
	BaseMessage
	Message domain.Message `json:"message"`
}

// ErrorMessage is sent when an operation fails.
type ErrorMessage struct {
	BaseMessage
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes
const (
	ErrorCodeInvalidMessage  = "invalid_message"
	ErrorCodeInvalidArgument = "invalid_argument"
	ErrorCodeUnknownUser     = "unknown_user"
	ErrorCodeNotJoined       = "not_joined"
	ErrorCodeSessionClosed   = "session_closed"
	ErrorCodeInternalError   = "internal_error"
)
