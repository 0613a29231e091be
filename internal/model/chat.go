package model

import "time"

// ChatRole identifies the sender of a chat transcript entry.
type ChatRole string

const (
	ChatRoleUser ChatRole = "user"
	ChatRoleBot  ChatRole = "bot"
)

// ChatMessage is a single entry in the assistant chat transcript.
type ChatMessage struct {
	ID        string    `db:"id"`
	Role      ChatRole  `db:"role"`
	Text      string    `db:"text"`
	CreatedAt time.Time `db:"created_at"`
}
