// Package ai runs the chat assistant conversation on top of the remote
// chat endpoint and keeps its transcript.
package ai

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/mailassist/internal/model"
)

// FailureReply is shown in place of an answer when the chat call fails.
const FailureReply = "Sorry, something went wrong. Please try again."

// Welcome is the greeting shown above every transcript.
const Welcome = "Hi! I can read, summarize, reply to, and delete your emails."

// ChatService sends a single chat message.
type ChatService interface {
	Chat(ctx context.Context, message, token string) (string, error)
}

// TranscriptStore persists chat messages.
type TranscriptStore interface {
	AppendChatMessage(ctx context.Context, msg model.ChatMessage) (model.ChatMessage, error)
	RecentChatMessages(ctx context.Context, limit int) ([]model.ChatMessage, error)
	ClearChat(ctx context.Context) error
}

// TokenSource supplies the OAuth access token sent with chat messages.
type TokenSource interface {
	Token() string
}

// Assistant sends chat messages and records the exchange. A nil store
// keeps the transcript in memory only.
type Assistant struct {
	svc     ChatService
	store   TranscriptStore
	tokens  TokenSource
	context *ConversationContext
}

// New creates an assistant whose transcript holds at most historyLimit
// messages.
func New(svc ChatService, store TranscriptStore, tokens TokenSource, historyLimit int) *Assistant {
	return &Assistant{
		svc:     svc,
		store:   store,
		tokens:  tokens,
		context: NewConversationContext(historyLimit),
	}
}

// Load replaces the in-memory transcript with the persisted one.
func (a *Assistant) Load(ctx context.Context) error {
	if a.store == nil {
		return nil
	}
	msgs, err := a.store.RecentChatMessages(ctx, a.context.Max())
	if err != nil {
		return fmt.Errorf("loading transcript: %w", err)
	}
	a.context.Replace(msgs)
	return nil
}

// Messages returns the transcript, oldest first.
func (a *Assistant) Messages() []model.ChatMessage {
	return a.context.GetMessages()
}

// SendMessage records text, asks the service, and records the answer. A
// failed call is answered with FailureReply and the error is returned
// alongside it.
func (a *Assistant) SendMessage(ctx context.Context, text string) (model.ChatMessage, error) {
	text = strings.TrimSpace(text)
	a.record(ctx, model.ChatMessage{Role: model.ChatRoleUser, Text: text})

	token := ""
	if a.tokens != nil {
		token = a.tokens.Token()
	}

	answer, err := a.svc.Chat(ctx, text, token)
	if err != nil {
		log.Printf("ai: chat request failed: %v", err)
		reply := a.record(ctx, model.ChatMessage{Role: model.ChatRoleBot, Text: FailureReply})
		return reply, fmt.Errorf("sending chat message: %w", err)
	}
	return a.record(ctx, model.ChatMessage{Role: model.ChatRoleBot, Text: answer}), nil
}

// Reset clears the transcript, persisted copy included.
func (a *Assistant) Reset(ctx context.Context) error {
	a.context.Reset()
	if a.store == nil {
		return nil
	}
	if err := a.store.ClearChat(ctx); err != nil {
		return fmt.Errorf("clearing transcript: %w", err)
	}
	return nil
}

func (a *Assistant) record(ctx context.Context, msg model.ChatMessage) model.ChatMessage {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	if a.store != nil {
		stored, err := a.store.AppendChatMessage(ctx, msg)
		if err != nil {
			log.Printf("ai: %v", err)
		} else {
			msg = stored
		}
	}
	a.context.AddMessage(msg)
	return msg
}
