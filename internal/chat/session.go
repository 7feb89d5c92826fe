package chat

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/GarvitAggarwal178/real-time-chat-api/internal/domain"
	"github.com/GarvitAggarwal178/real-time-chat-api/internal/presence"
)

// SessionState is the lifecycle state of a connection's session.
type SessionState string

const (
	StateUnjoined SessionState = "UNJOINED"
	StateJoined   SessionState = "JOINED"
	StateClosed   SessionState = "CLOSED"
)

// Session is the per-connection state machine gating message operations on a
// prior join. It holds the username binding explicitly, decoupled from the
// transport handle, so it can be exercised without a live connection.
type Session struct {
	svc  *Service
	conn presence.Conn

	mu       sync.Mutex
	state    SessionState
	username string
}

// NewSession creates an UNJOINED session for conn.
func (s *Service) NewSession(conn presence.Conn) *Session {
	return &Session{svc: s, conn: conn, state: StateUnjoined}
}

// State returns the current session state.
func (sess *Session) State() SessionState {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.state
}

// Username returns the username bound to this session, if joined.
func (sess *Session) Username() string {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.username
}

// Join binds a username to this session, creating the directory entry if
// needed and registering presence. A join on an already-joined session is
// treated as a new join: the binding is overwritten and presence
// re-registered (last-join-wins). Returns the online-user list for the
// private welcome reply.
func (sess *Session) Join(ctx context.Context, username string) ([]string, error) {
	if username == "" {
		return nil, fmt.Errorf("%w: empty username", domain.ErrInvalidArgument)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.state == StateClosed {
		return nil, domain.ErrSessionClosed
	}

	if _, err := sess.svc.store.GetOrCreateUser(ctx, username); err != nil {
		return nil, err
	}

	if sess.state == StateJoined && sess.username != username {
		sess.svc.presence.SetOfflineIf(sess.username, sess.conn)
	}
	if evicted := sess.svc.presence.SetOnline(username, sess.conn); evicted {
		// The earlier connection keeps running but is no longer reachable;
		// senders consulting the registry will route to this one.
		log.Warn().Str("username", username).Msg("presence entry overwritten by newer join")
	}
	sess.state = StateJoined
	sess.username = username
	return sess.svc.presence.ListOnline(), nil
}

// Send routes a message from this session's bound username. Fails with
// ErrNotJoined before a join and ErrSessionClosed after a disconnect; the
// store and registry are untouched in either case.
func (sess *Session) Send(ctx context.Context, to, content string) (*domain.Message, error) {
	sess.mu.Lock()
	switch sess.state {
	case StateClosed:
		sess.mu.Unlock()
		return nil, domain.ErrSessionClosed
	case StateUnjoined:
		sess.mu.Unlock()
		return nil, domain.ErrNotJoined
	}
	from := sess.username
	sess.mu.Unlock()

	if to == "" || content == "" {
		return nil, fmt.Errorf("%w: to and content must be non-empty", domain.ErrInvalidArgument)
	}
	return sess.svc.Send(ctx, from, to, content)
}

// Disconnect moves the session to its terminal state, removing the presence
// entry if this session still owns it. Idempotent.
func (sess *Session) Disconnect() {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.state == StateClosed {
		return
	}
	if sess.state == StateJoined {
		sess.svc.presence.SetOfflineIf(sess.username, sess.conn)
	}
	sess.state = StateClosed
}
