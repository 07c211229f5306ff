package domain

import "time"

// Message is a dashboard post.
type Message struct {
	ID        int64
	AuthorID  int64
	Title     string
	Content   string
	CreatedAt time.Time
}

// MessageWithAuthor is a message joined with its author's full name.
// Author is nil when the author row no longer exists; the message still
// appears on the dashboard.
type MessageWithAuthor struct {
	ID        int64
	Title     string
	Content   string
	CreatedAt time.Time
	Author    *string
}
