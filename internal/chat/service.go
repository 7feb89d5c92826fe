// Package chat implements the presence-aware message delivery core: the
// router, the session state machine, and conversation history.
package chat

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GarvitAggarwal178/real-time-chat-api/internal/domain"
	"github.com/GarvitAggarwal178/real-time-chat-api/internal/metrics"
	"github.com/GarvitAggarwal178/real-time-chat-api/internal/presence"
	"github.com/GarvitAggarwal178/real-time-chat-api/internal/protocol"
	"github.com/GarvitAggarwal178/real-time-chat-api/internal/store"
)

// Service owns the shared chat state: the user directory, the message store
// and the presence registry. Request-scoped sessions and the HTTP handlers
// all go through it.
type Service struct {
	store    store.Store
	presence *presence.Registry

	// sendMu serialises id and timestamp assignment so that the store's
	// append order is a consistent linear order: id_a < id_b implies
	// ts_a <= ts_b. The store itself is the single source of ordering truth.
	sendMu sync.Mutex
	lastTs time.Time
}

// NewService creates a chat service on top of the given store and registry.
func NewService(st store.Store, reg *presence.Registry) *Service {
	return &Service{store: st, presence: reg}
}

// CreateUser explicitly registers a username. Fails with ErrConflict if the
// name is already taken.
func (s *Service) CreateUser(ctx context.Context, username string) (*domain.User, error) {
	if username == "" {
		return nil, fmt.Errorf("%w: empty username", domain.ErrInvalidArgument)
	}
	existing, err := s.store.FindUser(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: username %q taken", domain.ErrConflict, username)
	}
	return s.store.GetOrCreateUser(ctx, username)
}

// FindUser looks a user up in the directory.
func (s *Service) FindUser(ctx context.Context, username string) (*domain.User, error) {
	if username == "" {
		return nil, fmt.Errorf("%w: empty username", domain.ErrInvalidArgument)
	}
	user, err := s.store.FindUser(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownUser, username)
	}
	return user, nil
}

// ListUsers lists every directory entry.
func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.store.ListUsers(ctx)
}

// OnlineUsers returns the usernames with an active presence entry.
func (s *Service) OnlineUsers() []string {
	return s.presence.ListOnline()
}

// Send routes one message: it validates the participants, appends the message
// to the store under the send lock, and pushes it to the recipient's
// connection if one is registered. The push is fire-and-forget; its outcome is
// recorded only as "was the recipient online at send time".
func (s *Service) Send(ctx context.Context, from, to, content string) (*domain.Message, error) {
	if from == "" || to == "" || content == "" {
		return nil, fmt.Errorf("%w: from, to and content must be non-empty", domain.ErrInvalidArgument)
	}
	sender, err := s.store.FindUser(ctx, from)
	if err != nil {
		return nil, err
	}
	if sender == nil {
		return nil, fmt.Errorf("%w: sender %s", domain.ErrUnknownUser, from)
	}
	// Recipients are created lazily, same as on first join.
	if _, err := s.store.GetOrCreateUser(ctx, to); err != nil {
		return nil, err
	}

	conn := s.presence.Lookup(to)

	s.sendMu.Lock()
	ts := time.Now().UTC()
	if ts.Before(s.lastTs) {
		ts = s.lastTs
	}
	s.lastTs = ts
	msg := &domain.Message{
		From:      from,
		To:        to,
		Content:   content,
		Timestamp: ts,
		Delivered: conn != nil,
	}
	err = s.store.AppendMessage(ctx, msg)
	s.sendMu.Unlock()
	if err != nil {
		return nil, err
	}
	metrics.MessagesTotal.Inc()

	if conn != nil {
		metrics.MessagesDelivered.Inc()
		event := protocol.NewMessageEvent{
			BaseMessage: protocol.BaseMessage{Type: protocol.TypeNewMessage, Ts: time.Now().UnixMilli()},
			Message:     *msg,
		}
		if err := conn.PushJSON(event); err != nil {
			// Best-effort delivery: a slow or vanished recipient is logged
			// and ignored, never surfaced to the sender.
			log.Warn().Err(err).Str("to", to).Int64("message_id", msg.ID).Msg("message push failed")
		}
	}
	return msg, nil
}

// History returns every message between the unordered pair {userA, userB} in
// (timestamp, id) order. An empty slice, not an error, when there are none.
func (s *Service) History(ctx context.Context, userA, userB string) ([]domain.Message, error) {
	if userA == "" || userB == "" {
		return nil, fmt.Errorf("%w: both usernames are required", domain.ErrInvalidArgument)
	}
	return s.store.History(ctx, userA, userB)
}

// Inbox returns every message the user has sent or received.
func (s *Service) Inbox(ctx context.Context, username string) ([]domain.Message, error) {
	if username == "" {
		return nil, fmt.Errorf("%w: empty username", domain.ErrInvalidArgument)
	}
	return s.store.Inbox(ctx, username)
}

// MarkRead flips the delivered flag on a stored message and returns the
// updated record.
func (s *Service) MarkRead(ctx context.Context, id int64) (*domain.Message, error) {
	updated, err := s.store.MarkDelivered(ctx, id)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, fmt.Errorf("%w: message %d", domain.ErrNotFound, id)
	}
	return s.store.GetMessage(ctx, id)
}
