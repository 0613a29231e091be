package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/mailassist/internal/model"
)

// AppendChatMessage persists one transcript entry, assigning an ID and
// timestamp when they are unset. It returns the stored message.
func (s *SQLiteStore) AppendChatMessage(
	ctx context.Context,
	msg model.ChatMessage,
) (model.ChatMessage, error) {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	msg.CreatedAt = msg.CreatedAt.UTC()

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO chat_messages (id, role, text, created_at)
		VALUES (:id, :role, :text, :created_at)`,
		msg,
	)
	if err != nil {
		return msg, fmt.Errorf("appending chat message: %w", err)
	}
	return msg, nil
}

// RecentChatMessages returns up to limit of the newest entries, oldest first.
func (s *SQLiteStore) RecentChatMessages(
	ctx context.Context,
	limit int,
) ([]model.ChatMessage, error) {
	if limit <= 0 {
		limit = 50
	}

	var msgs []model.ChatMessage
	err := s.db.SelectContext(ctx, &msgs, `
		SELECT id, role, text, created_at
		FROM chat_messages
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("loading chat messages: %w", err)
	}

	// Newest were selected first; flip to transcript order.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// ClearChat deletes the whole transcript.
func (s *SQLiteStore) ClearChat(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM chat_messages"); err != nil {
		return fmt.Errorf("clearing chat: %w", err)
	}
	return nil
}
