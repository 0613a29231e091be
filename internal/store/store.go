package store

import (
	"context"

	"github.com/nhle/mailassist/internal/model"
)

// Store defines the local persistence used by the client: session
// values for the sqlite session backend and the assistant chat transcript.
type Store interface {
	// === Session values ===

	GetValue(ctx context.Context, key string) (string, error)
	SetValue(ctx context.Context, key, value string) error
	DeleteValue(ctx context.Context, key string) error

	// === Chat transcript ===

	AppendChatMessage(ctx context.Context, msg model.ChatMessage) (model.ChatMessage, error)
	RecentChatMessages(ctx context.Context, limit int) ([]model.ChatMessage, error)
	ClearChat(ctx context.Context) error
}

var _ Store = (*SQLiteStore)(nil)
