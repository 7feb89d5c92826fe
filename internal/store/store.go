// Package store implements the user directory and the append-only message
// store on top of SQLite.
package store

import (
	"context"

	"github.com/GarvitAggarwal178/real-time-chat-api/internal/domain"
)

// Store is the persistence interface consumed by the chat service and the
// HTTP handlers. Lookups return (nil, nil) when the record does not exist.
type Store interface {
	// User directory
	GetOrCreateUser(ctx context.Context, username string) (*domain.User, error)
	FindUser(ctx context.Context, username string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)

	// Message store. AppendMessage is the sole mutation path for message
	// content; MarkDelivered flips the read flag and nothing else.
	AppendMessage(ctx context.Context, msg *domain.Message) error
	GetMessage(ctx context.Context, id int64) (*domain.Message, error)
	History(ctx context.Context, userA, userB string) ([]domain.Message, error)
	Inbox(ctx context.Context, username string) ([]domain.Message, error)
	MarkDelivered(ctx context.Context, id int64) (bool, error)

	Close() error
}
