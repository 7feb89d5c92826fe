// Package presence tracks which users currently hold a live connection.
package presence

import (
	"sort"
	"sync"

	"github.com/GarvitAggarwal178/real-time-chat-api/internal/metrics"
)

// Conn is the connection handle registered for an online user. The registry
// never calls into it; it only hands it back to the router, which pushes
// events through it fire-and-forget.
type Conn interface {
	// PushJSON enqueues an event for delivery without blocking. It may drop
	// the event and return an error if the connection cannot keep up.
	PushJSON(v any) error
}

// ChangeListener receives the full online-user list after every mutation.
type ChangeListener func(online []string)

// Registry maps usernames to their active connection handle. At most one
// entry per username exists at any time; a second registration for the same
// name replaces the first (last-join-wins).
type Registry struct {
	mu       sync.RWMutex
	entries  map[string]Conn
	listener ChangeListener
}

// NewRegistry creates an empty registry. The listener may be nil; it is
// invoked synchronously under the registry lock, so it must not call back
// into the registry.
func NewRegistry(listener ChangeListener) *Registry {
	return &Registry{
		entries:  make(map[string]Conn),
		listener: listener,
	}
}

// SetOnline registers conn as the handle for username, replacing any prior
// entry. Reports whether an existing entry was evicted.
func (r *Registry) SetOnline(username string, conn Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, evicted := r.entries[username]
	r.entries[username] = conn
	metrics.OnlineUsers.Set(float64(len(r.entries)))
	r.notifyLocked()
	return evicted
}

// SetOffline removes the entry for username if present. Idempotent: removing
// an absent user is a no-op and emits no change event.
func (r *Registry) SetOffline(username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[username]; !ok {
		return
	}
	delete(r.entries, username)
	metrics.OnlineUsers.Set(float64(len(r.entries)))
	r.notifyLocked()
}

// SetOfflineIf removes the entry for username only if it still points at
// conn. A session that was evicted by a later join must not tear down the
// winner's registration when it disconnects.
func (r *Registry) SetOfflineIf(username string, conn Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.entries[username]
	if !ok || cur != conn {
		return false
	}
	delete(r.entries, username)
	metrics.OnlineUsers.Set(float64(len(r.entries)))
	r.notifyLocked()
	return true
}

// Lookup returns the connection handle for username, or nil if offline.
// A point-in-time read; it never blocks on in-flight mutations elsewhere.
func (r *Registry) Lookup(username string) Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries[username]
}

// ListOnline returns the sorted set of currently online usernames.
func (r *Registry) ListOnline() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.onlineLocked()
}

func (r *Registry) onlineLocked() []string {
	online := make([]string, 0, len(r.entries))
	for username := range r.entries {
		online = append(online, username)
	}
	sort.Strings(online)
	return online
}

func (r *Registry) notifyLocked() {
	if r.listener != nil {
		r.listener(r.onlineLocked())
	}
}
