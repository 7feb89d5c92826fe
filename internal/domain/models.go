// Package domain defines the core domain models for the chat service.
package domain

import "time"

// User is a registered chat identity. Users are identified solely by their
// display name; there are no credentials in this system.
type User struct {
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// Message is a single direct message between two users. All fields except
// Delivered are immutable once the message has been appended to the store.
type Message struct {
	ID        int64     `json:"id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	// Delivered records whether the recipient was online at send time, or
	// has since marked the message as read. It is the only mutable field.
	Delivered bool `json:"delivered"`
}
