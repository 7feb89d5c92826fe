package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/GarvitAggarwal178/real-time-chat-api/internal/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			username TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			from_user TEXT NOT NULL,
			to_user TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			delivered INTEGER NOT NULL DEFAULT 0,
			FOREIGN KEY (from_user) REFERENCES users(username),
			FOREIGN KEY (to_user) REFERENCES users(username)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_pair ON messages(from_user, to_user, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_recipient ON messages(to_user, created_at)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GetOrCreateUser returns the directory entry for username, creating it on
// first use. The INSERT OR IGNORE keeps concurrent joins of the same name from
// producing two distinct records.
func (s *SQLiteStore) GetOrCreateUser(ctx context.Context, username string) (*domain.User, error) {
	if username == "" {
		return nil, fmt.Errorf("%w: empty username", domain.ErrInvalidArgument)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO users (username, created_at) VALUES (?, CURRENT_TIMESTAMP)`,
		username); err != nil {
		return nil, err
	}
	return s.FindUser(ctx, username)
}

// FindUser retrieves a user by username. Returns (nil, nil) if absent.
func (s *SQLiteStore) FindUser(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := s.db.QueryRowContext(ctx,
		`SELECT username, created_at FROM users WHERE username = ?`,
		username).Scan(&user.Username, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers lists all users in creation order.
func (s *SQLiteStore) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT username, created_at FROM users ORDER BY created_at, username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.Username, &user.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// AppendMessage appends a message and assigns its id from the row id. Callers
// serialise appends so that id order matches timestamp order.
func (s *SQLiteStore) AppendMessage(ctx context.Context, msg *domain.Message) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (from_user, to_user, content, created_at, delivered) VALUES (?, ?, ?, ?, ?)`,
		msg.From, msg.To, msg.Content, msg.Timestamp, msg.Delivered)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	msg.ID = id
	return nil
}

// GetMessage retrieves a message by id. Returns (nil, nil) if absent.
func (s *SQLiteStore) GetMessage(ctx context.Context, id int64) (*domain.Message, error) {
	var msg domain.Message
	err := s.db.QueryRowContext(ctx,
		`SELECT id, from_user, to_user, content, created_at, delivered FROM messages WHERE id = ?`,
		id).Scan(&msg.ID, &msg.From, &msg.To, &msg.Content, &msg.Timestamp, &msg.Delivered)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// History retrieves all messages between the unordered pair {userA, userB},
// sorted ascending by (timestamp, id).
func (s *SQLiteStore) History(ctx context.Context, userA, userB string) ([]domain.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, from_user, to_user, content, created_at, delivered FROM messages
		 WHERE (from_user = ? AND to_user = ?) OR (from_user = ? AND to_user = ?)
		 ORDER BY created_at ASC, id ASC`,
		userA, userB, userB, userA)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMessages(rows)
}

// Inbox retrieves all messages a user has sent or received, ascending.
func (s *SQLiteStore) Inbox(ctx context.Context, username string) ([]domain.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, from_user, to_user, content, created_at, delivered FROM messages
		 WHERE from_user = ? OR to_user = ?
		 ORDER BY created_at ASC, id ASC`,
		username, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMessages(rows)
}

// MarkDelivered sets the delivered flag on a message. Reports whether a row
// was updated.
func (s *SQLiteStore) MarkDelivered(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE messages SET delivered = 1 WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func scanMessages(rows *sql.Rows) ([]domain.Message, error) {
	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(&msg.ID, &msg.From, &msg.To, &msg.Content, &msg.Timestamp, &msg.Delivered); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
